package inmemdb

import (
	"context"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func isExcluded(usr *user.User, excludedUsers []user.User) bool {
	for _, u := range excludedUsers {
		if u.ID == usr.ID {
			return true
		}
	}
	return false
}

// checkUnique must be called with the lock held.
func (repo *userRepository) checkUnique(usr user.User) error {
	for _, u := range repo.db.users {
		if u.ID == usr.ID {
			continue
		}
		if strings.EqualFold(u.Email, usr.Email) {
			return user.ErrEmailExists
		}
		if usr.IsAdmin() && u.IsAdmin() {
			return user.ErrAdminExists
		}
	}
	return nil
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, u := range repo.db.users {
		if strings.EqualFold(u.Email, email) && !isExcluded(u, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) AdminExists(ctx context.Context, excludedUsers ...user.User) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, u := range repo.db.users {
		if u.IsAdmin() && !isExcluded(u, excludedUsers) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = 0
	if err := repo.checkUnique(usr); err != nil {
		return user.User{}, err
	}
	usr.ID = repo.db.nextID("user")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func userComparators(users []user.User) comparators {
	return comparators{
		"id":         func(i, j int) int { return cmpInt(users[i].ID, users[j].ID) },
		"email":      func(i, j int) int { return cmpStr(users[i].Email, users[j].Email) },
		"first_name": func(i, j int) int { return cmpStr(users[i].FirstName, users[j].FirstName) },
		"last_name":  func(i, j int) int { return cmpStr(users[i].LastName, users[j].LastName) },
		"role":       func(i, j int) int { return cmpStr(string(users[i].Role), string(users[j].Role)) },
		"created_at": func(i, j int) int {
			switch {
			case users[i].CreatedAt.Before(users[j].CreatedAt):
				return -1
			case users[i].CreatedAt.After(users[j].CreatedAt):
				return 1
			}
			return 0
		},
	}
}

func matchesUser(u *user.User, filter *user.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(u.FirstName), search) &&
			!strings.Contains(strings.ToLower(u.LastName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			return false
		}
	}
	if len(filter.Roles) > 0 {
		var found bool
		for _, r := range filter.Roles {
			if u.Role == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.IsActive != nil && u.IsActive != *filter.IsActive {
		return false
	}
	return true
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, opts core.ListOptions) ([]user.User, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		if matchesUser(u, filter) {
			users = append(users, *u)
		}
	}
	start, end := sortAndPage(users, len(users), userComparators(users), opts)
	return users[start:end], len(users), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if u, ok := repo.db.users[filter.ID]; ok && (filter.Email == "" || strings.EqualFold(u.Email, filter.Email)) {
			return *u, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Email != "" {
		for _, u := range repo.db.users {
			if strings.EqualFold(u.Email, filter.Email) {
				return *u, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if err := repo.checkUnique(usr); err != nil {
		return user.User{}, err
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

// DeleteUsersByID removes the users with their enrollments, answers and results; content they own is kept ownerless.
func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		if _, ok := repo.db.users[id]; !ok {
			continue
		}
		delete(repo.db.users, id)
		repo.db.orphanOwnedBy(id)

		for eid, e := range repo.db.enrollments {
			if e.StudentID == id {
				delete(repo.db.enrollments, eid)
			}
		}
		for said, sa := range repo.db.studentAnswers {
			if sa.StudentID == id {
				delete(repo.db.studentAnswers, said)
			}
		}
		for rid, r := range repo.db.testResults {
			if r.StudentID == id {
				delete(repo.db.testResults, rid)
			}
		}
	}
	return nil
}

// orphanOwnedBy must be called with the write lock held.
func (db *DB) orphanOwnedBy(ownerID int) {
	owned := func(n null.Int) bool { return n.Valid && n.Int == ownerID }
	for _, c := range db.courses {
		if owned(c.OwnerID) {
			c.OwnerID = null.Int{}
		}
	}
	for _, m := range db.modules {
		if owned(m.OwnerID) {
			m.OwnerID = null.Int{}
		}
	}
	for _, l := range db.lessons {
		if owned(l.OwnerID) {
			l.OwnerID = null.Int{}
		}
	}
	for _, t := range db.tests {
		if owned(t.OwnerID) {
			t.OwnerID = null.Int{}
		}
	}
	for _, q := range db.questions {
		if owned(q.OwnerID) {
			q.OwnerID = null.Int{}
		}
	}
	for _, a := range db.answers {
		if owned(a.OwnerID) {
			a.OwnerID = null.Int{}
		}
	}
}
