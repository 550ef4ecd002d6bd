package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

var errCannotDeleteSelf = echo.NewHTTPError(http.StatusForbidden, "you cannot delete your own account")

const (
	msgPasswordResetSent = "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."
	msgPasswordReset = "Password has been reset with the new password."
)

type userApi struct {
	conf       *core.Config
	svc        user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:       deps.Conf,
		svc:        deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ug := g.Group("/users")
	// the authed group claims every method on its prefix; public routes are added after it
	ag := ug.Group("", authed...)

	// un-authed endpoints
	ug.POST("", api.create)
	ug.POST("/register", api.create)
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("", api.query, authorize(policy.ResourceUser, policy.ActionList))
	ag.GET("/roles", api.queryRoles, authorize(policy.ResourceUser, policy.ActionList))

	// detail endpoints
	ag.GET("/:id", api.retrieve, authorize(policy.ResourceUser, policy.ActionRetrieve))
	ag.PUT("/:id", api.update, authorize(policy.ResourceUser, policy.ActionUpdate))
	ag.PATCH("/:id", api.update, authorize(policy.ResourceUser, policy.ActionPartialUpdate))
	ag.DELETE("/:id", api.destroy, authorize(policy.ResourceUser, policy.ActionDelete))
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.conf, data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: msgPasswordResetSent})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: msgPasswordReset})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// bindQueryFilter reads `search`, `role` (repeated or comma separated) and `is_active`.
func bindQueryFilter(ctx echo.Context) *user.QueryFilter {
	filter := &user.QueryFilter{Search: ctx.QueryParam("search")}
	for _, val := range ctx.QueryParams()["role"] {
		for _, role := range strings.Split(val, ",") {
			if role = strings.TrimSpace(role); role != "" {
				filter.Roles = append(filter.Roles, user.Role(role))
			}
		}
	}
	if val := ctx.QueryParam("is_active"); val != "" {
		if isActive, err := strconv.ParseBool(val); err == nil {
			filter.IsActive = &isActive
		}
	}
	filter.Clean()
	return filter
}

func (api *userApi) query(ctx echo.Context) error {
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}

	users, count, err := api.svc.Query(ctx.Request().Context(), bindQueryFilter(ctx), opts)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return list(ctx, opts, count, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// getObject returns the user of the `:id` path param once the principal passes the object check.
func (api *userApi) getObject(ctx echo.Context, a policy.Action) (user.User, error) {
	id, err := paramID(ctx, "id")
	if err != nil {
		return user.User{}, err
	}
	facts := policy.Facts{OwnerID: id}
	if err = policy.EvaluateObject(getPrincipal(ctx), a, policy.ResourceUser, facts).Err(); err != nil {
		return user.User{}, err
	}

	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.getObject(ctx, policy.ActionRetrieve)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	action := policy.ActionPartialUpdate
	if ctx.Request().Method == http.MethodPut {
		action = policy.ActionUpdate
	}
	usr, err := api.getObject(ctx, action)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	// `Email`, `Role` and `IsActive` can only be changed by admin
	if data.HasAdminFields() && !getPrincipal(ctx).IsAdmin() {
		return errHttpForbidden
	}
	if err = data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := api.getObject(ctx, policy.ActionDelete)
	if err != nil {
		return err
	}

	// an admin cannot delete their own account
	if usr.ID == getPrincipal(ctx).ID {
		return errCannotDeleteSelf
	}

	if err = api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
