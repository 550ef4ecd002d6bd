package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
	ErrAdminExists = errors.New("an administrator already exists, choose teacher or student")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		AdminExists(ctx context.Context, excludedUsers ...User) (bool, error)
		// CreateUser returns ErrEmailExists or ErrAdminExists when a uniqueness constraint is violated.
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.FirstName, User.LastName or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, opts core.ListOptions) ([]User, int, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CheckAdminUniqueness(ctx context.Context, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, opts core.ListOptions) ([]User, int, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...int) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  TokenGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens:  NewTokenGenerator(conf),
	}
}

// uniquenessError maps repository uniqueness errors to validation errors.
func uniquenessError(err error) error {
	switch errors.Cause(err) {
	case ErrEmailExists:
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	case ErrAdminExists:
		return core.NewValidationError(err, core.FieldError{Field: "role", Error: err.Error()})
	}
	return err
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		return uniquenessError(err)
	}
	return nil
}

func (svc *service) CheckAdminUniqueness(ctx context.Context, exclUsers ...User) error {
	exists, err := svc.repo.AdminExists(ctx, exclUsers...)
	if err != nil {
		return errors.Wrap(err, "checking admin uniqueness")
	}
	if exists {
		return uniquenessError(ErrAdminExists)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Phone:     nu.Phone,
		TgChatID:  nu.TgChatID,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, uniquenessError(err)
	}
	return usr, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, opts core.ListOptions) ([]User, int, error) {
	return svc.repo.QueryUsers(ctx, filter, opts)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr, err := uu.Apply(usr)
	if err != nil {
		return User{}, errors.Wrap(err, "applying update")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, uniquenessError(err)
	}
	return usr, nil
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset mails a password reset link to the active user registered with `email`.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	token, err := svc.tokens.MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  usr.FullName(),
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

// ResetPassword sets a new password for the user identified by `data.UID`, once `data.Token` is verified.
func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalid := func(field string) error { return core.NewFieldError(field, "invalid value") }

	id, err := decodeUID(data.UID)
	if err != nil {
		return invalid("uid")
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalid("uid")
		}
		return errors.Wrap(err, "getting user")
	}
	if !usr.IsActive {
		return invalid("uid")
	}
	if err := svc.tokens.verify(usr, data.Token); err != nil {
		return invalid("token")
	}

	if err := usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}
