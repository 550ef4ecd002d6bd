package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
)

type Role string

// Roles
const (
	RoleNone    Role = "" // authenticated, but no access to any resource
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

	Roles = []RoleChoice{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func (r Role) IsValid() bool {
	if r == RoleNone {
		return true
	}
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type RoleChoice struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	TgChatID     string    `json:"tg_chat_id" db:"tg_chat_id"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// FullName falls back to the email when the user has no name.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Phone           string `json:"phone" validate:"max=35"`
	TgChatID        string `json:"tg_chat_id" validate:"max=50"`
	Role            Role   `json:"role" validate:"role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Phone = core.CleanString(nu.Phone)
	nu.TgChatID = core.CleanString(nu.TgChatID)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if err := svc.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		return err
	}
	if nu.Role == RoleAdmin {
		return svc.CheckAdminUniqueness(ctx)
	}
	return nil
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil fields are left untouched.
type UpdateUser struct {
	Email           *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string `json:"last_name" validate:"omitempty,max=150"`
	Phone           *string `json:"phone" validate:"omitempty,max=35"`
	TgChatID        *string `json:"tg_chat_id" validate:"omitempty,max=50"`
	Role            *Role   `json:"role" validate:"omitempty,role"`
	IsActive        *bool   `json:"is_active"`
	Password        string  `json:"password" validate:"omitempty"`
	PasswordConfirm string  `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	// user attributes for password similarity checks; not bound
	attrs []string
}

// HasAdminFields reports whether fields only an administrator may set are present.
func (uu *UpdateUser) HasAdminFields() bool {
	return uu.Email != nil || uu.Role != nil || uu.IsActive != nil
}

func cleanPtr(s *string, lower ...bool) {
	if s != nil {
		*s = core.CleanString(*s, lower...)
	}
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	cleanPtr(uu.Email, true /* lower */)
	cleanPtr(uu.FirstName)
	cleanPtr(uu.LastName)
	cleanPtr(uu.Phone)
	cleanPtr(uu.TgChatID)

	uu.attrs = []string{origUsr.FirstName, origUsr.LastName, origUsr.Email}
	if uu.FirstName != nil {
		uu.attrs[0] = *uu.FirstName
	}
	if uu.LastName != nil {
		uu.attrs[1] = *uu.LastName
	}
	if uu.Email != nil {
		uu.attrs[2] = *uu.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != nil && *uu.Email != origUsr.Email {
		if err := svc.CheckEmailUniqueness(ctx, *uu.Email, origUsr); err != nil {
			return err
		}
	}
	if uu.Role != nil && *uu.Role == RoleAdmin && !origUsr.IsAdmin() {
		return svc.CheckAdminUniqueness(ctx, origUsr)
	}
	return nil
}

// Apply copies the provided fields onto `usr`.
func (uu UpdateUser) Apply(usr User) (User, error) {
	if uu.Email != nil {
		usr.Email = *uu.Email
	}
	if uu.FirstName != nil {
		usr.FirstName = *uu.FirstName
	}
	if uu.LastName != nil {
		usr.LastName = *uu.LastName
	}
	if uu.Phone != nil {
		usr.Phone = *uu.Phone
	}
	if uu.TgChatID != nil {
		usr.TgChatID = *uu.TgChatID
	}
	if uu.Role != nil {
		usr.Role = *uu.Role
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return usr, nil
}

// ResetUserPassword contains the information needed to reset a forgotten password.
type ResetUserPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.UID = core.CleanString(rp.UID)
	rp.Token = core.CleanString(rp.Token)
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search   string
	Roles    []Role
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type GetFilter struct {
	ID    int
	Email string
}
