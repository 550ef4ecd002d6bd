package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

const userColumns = `id, email, first_name, last_name, phone, tg_chat_id, role, is_active, password_hash,
	created_at, updated_at, last_login`

var userOrderColumns = map[string]string{
	"id":         "id",
	"email":      "email",
	"first_name": "first_name",
	"last_name":  "last_name",
	"role":       "role",
	"created_at": "created_at",
	"last_login": "last_login",
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapUniqueErr maps unique constraint violations to user errors.
func (repo userRepository) trapUniqueErr(err error, msg string) error {
	if code, constraint := pqError(err); code == uniqueViolation {
		switch constraint {
		case "user_email_key":
			return user.ErrEmailExists
		case "user_single_admin_idx":
			return user.ErrAdminExists
		}
	}
	return errors.Wrap(err, msg)
}

func excludedIDs(w *where, excludedUsers []user.User) error {
	if len(excludedUsers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	cond, args, err := sqlx.In("id NOT IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "excluding users")
	}
	w.add(cond, args...)
	return nil
}

func (repo userRepository) exists(ctx context.Context, w *where) (bool, error) {
	var exists bool
	q := repo.db.Rebind(`SELECT EXISTS (SELECT 1 FROM "user"` + w.String() + `)`)
	if err := repo.db.GetContext(ctx, &exists, q, w.args...); err != nil {
		return false, err
	}
	return exists, nil
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	w := new(where)
	w.add("LOWER(email) = LOWER(?)", email)
	if err := excludedIDs(w, excludedUsers); err != nil {
		return err
	}
	exists, err := repo.exists(ctx, w)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) AdminExists(ctx context.Context, excludedUsers ...user.User) (bool, error) {
	w := new(where)
	w.add("role = ?", user.RoleAdmin)
	if err := excludedIDs(w, excludedUsers); err != nil {
		return false, err
	}
	exists, err := repo.exists(ctx, w)
	return exists, errors.Wrap(err, "checking admin existence")
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO "user" (email, first_name, last_name, phone, tg_chat_id, role, is_active, password_hash,
			created_at, updated_at, last_login)
		VALUES (:email, :first_name, :last_name, :phone, :tg_chat_id, :role, :is_active, :password_hash,
			:created_at, :updated_at, :last_login)
		RETURNING id`
	id, err := insert(ctx, repo.db, q, usr)
	if err != nil {
		return user.User{}, repo.trapUniqueErr(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, opts core.ListOptions) ([]user.User, int, error) {
	w := new(where)
	if filter != nil {
		// users with FirstName, LastName or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?)", val, val, val)
		}
		if len(filter.Roles) > 0 {
			roles := make([]string, 0, len(filter.Roles))
			for _, r := range filter.Roles {
				roles = append(roles, string(r))
			}
			cond, args, err := sqlx.In("role IN (?)", roles)
			if err != nil {
				return nil, 0, errors.Wrap(err, "filtering roles")
			}
			w.add(cond, args...)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
	}

	users := make([]user.User, 0)
	count, err := list(ctx, repo.db, &users, userColumns, `"user"`, w, opts, userOrderColumns)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	return users, count, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	w := new(where)
	if filter.ID != 0 {
		w.add("id = ?", filter.ID)
	}
	if filter.Email != "" {
		w.add("LOWER(email) = LOWER(?)", filter.Email)
	}
	if len(w.conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM "user"` + w.String())
	if err := repo.db.GetContext(ctx, &usr, q, w.args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE "user" SET email = :email, first_name = :first_name, last_name = :last_name, phone = :phone,
			tg_chat_id = :tg_chat_id, role = :role, is_active = :is_active, password_hash = :password_hash,
			updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, usr)
	if err != nil {
		return user.User{}, repo.trapUniqueErr(err, "updating user")
	}
	if err = checkAffected(res, nil, user.ErrNotFound, "updating user"); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
