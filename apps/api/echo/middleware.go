package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

// principalMiddleware loads the token user and sets the request principal. It must run after the JWT middleware.
func principalMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			ctx.Set(contextPrincipalKey, policy.PrincipalOf(usr))
			return next(ctx)
		}
	}
}

// authorize denies the request early when the principal may never perform `a` on `r`.
func authorize(r policy.Resource, a policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := policy.Evaluate(getPrincipal(ctx), a, r).Err(); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}
