package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
)

type materialApi struct {
	conf     *core.Config
	svc      material.Service
	validate *validator.Validate
}

func registerMaterialAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := materialApi{
		conf:     deps.Conf,
		svc:      deps.MaterialSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", authed...)
	cg.POST("", api.createCourse, authorize(policy.ResourceCourse, policy.ActionCreate))
	cg.GET("", api.queryCourses, authorize(policy.ResourceCourse, policy.ActionList))
	cg.GET("/:id", api.retrieveCourse, authorize(policy.ResourceCourse, policy.ActionRetrieve))
	cg.PUT("/:id", api.updateCourse, authorize(policy.ResourceCourse, policy.ActionUpdate))
	cg.PATCH("/:id", api.updateCourse, authorize(policy.ResourceCourse, policy.ActionPartialUpdate))
	cg.DELETE("/:id", api.destroyCourse, authorize(policy.ResourceCourse, policy.ActionDelete))
	cg.POST("/:id/enroll", api.toggleEnrollment, authorize(policy.ResourceEnrollment, policy.ActionCreate))

	mg := g.Group("/modules", authed...)
	mg.POST("", api.createModule, authorize(policy.ResourceModule, policy.ActionCreate))
	mg.GET("", api.queryModules, authorize(policy.ResourceModule, policy.ActionList))
	mg.GET("/:id", api.retrieveModule, authorize(policy.ResourceModule, policy.ActionRetrieve))
	mg.PUT("/:id", api.updateModule, authorize(policy.ResourceModule, policy.ActionUpdate))
	mg.PATCH("/:id", api.updateModule, authorize(policy.ResourceModule, policy.ActionPartialUpdate))
	mg.DELETE("/:id", api.destroyModule, authorize(policy.ResourceModule, policy.ActionDelete))

	lg := g.Group("/lessons", authed...)
	lg.POST("", api.createLesson, authorize(policy.ResourceLesson, policy.ActionCreate))
	lg.GET("", api.queryLessons, authorize(policy.ResourceLesson, policy.ActionList))
	lg.GET("/:id", api.retrieveLesson, authorize(policy.ResourceLesson, policy.ActionRetrieve))
	lg.PUT("/:id", api.updateLesson, authorize(policy.ResourceLesson, policy.ActionUpdate))
	lg.PATCH("/:id", api.updateLesson, authorize(policy.ResourceLesson, policy.ActionPartialUpdate))
	lg.DELETE("/:id", api.destroyLesson, authorize(policy.ResourceLesson, policy.ActionDelete))

	eg := g.Group("/enrollments", authed...)
	eg.GET("", api.queryEnrollments, authorize(policy.ResourceEnrollment, policy.ActionList))
}

func isPut(ctx echo.Context) bool {
	return ctx.Request().Method == http.MethodPut
}

// Courses

func (api *materialApi) createCourse(ctx echo.Context) error {
	var data material.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.CreateCourse(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *materialApi) queryCourses(ctx echo.Context) error {
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	courses, count, err := api.svc.QueryCourses(ctx.Request().Context(), getPrincipal(ctx), opts)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return list(ctx, opts, count, courses)
}

func (api *materialApi) retrieveCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.GetCourse(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *materialApi) bindUpdateCourse(ctx echo.Context) (material.UpdateCourse, error) {
	if isPut(ctx) {
		var data material.NewCourse
		if err := ctx.Bind(&data); err != nil {
			return material.UpdateCourse{}, errors.Wrap(err, "binding to NewCourse")
		}
		if err := data.Validate(api.validate); err != nil {
			return material.UpdateCourse{}, err
		}
		return data.Update(), nil
	}

	var data material.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateCourse")
	}
	return data, data.Validate(api.validate)
}

func (api *materialApi) updateCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateCourse(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.UpdateCourse(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *materialApi) destroyCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCourse(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *materialApi) toggleEnrollment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := api.svc.ToggleEnrollment(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "toggling enrollment")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *materialApi) queryEnrollments(ctx echo.Context) error {
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	enrollments, count, err := api.svc.QueryEnrollments(ctx.Request().Context(), getPrincipal(ctx), opts)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return list(ctx, opts, count, enrollments)
}

// Modules

func (api *materialApi) createModule(ctx echo.Context) error {
	var data material.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.CreateModule(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *materialApi) queryModules(ctx echo.Context) error {
	courseID, err := queryID(ctx, "course")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	modules, count, err := api.svc.QueryModules(ctx.Request().Context(), getPrincipal(ctx), courseID, opts)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	return list(ctx, opts, count, modules)
}

func (api *materialApi) retrieveModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	m, err := api.svc.GetModule(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting module")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *materialApi) bindUpdateModule(ctx echo.Context) (material.UpdateModule, error) {
	if isPut(ctx) {
		var data material.NewModule
		if err := ctx.Bind(&data); err != nil {
			return material.UpdateModule{}, errors.Wrap(err, "binding to NewModule")
		}
		if err := data.Validate(api.validate); err != nil {
			return material.UpdateModule{}, err
		}
		return data.Update(), nil
	}

	var data material.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateModule")
	}
	return data, data.Validate(api.validate)
}

func (api *materialApi) updateModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateModule(ctx)
	if err != nil {
		return err
	}

	m, err := api.svc.UpdateModule(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *materialApi) destroyModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteModule(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lessons

func (api *materialApi) createLesson(ctx echo.Context) error {
	var data material.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, err := api.svc.CreateLesson(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *materialApi) queryLessons(ctx echo.Context) error {
	moduleID, err := queryID(ctx, "module")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	lessons, count, err := api.svc.QueryLessons(ctx.Request().Context(), getPrincipal(ctx), moduleID, opts)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return list(ctx, opts, count, lessons)
}

func (api *materialApi) retrieveLesson(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	l, err := api.svc.GetLesson(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *materialApi) bindUpdateLesson(ctx echo.Context) (material.UpdateLesson, error) {
	if isPut(ctx) {
		var data material.NewLesson
		if err := ctx.Bind(&data); err != nil {
			return material.UpdateLesson{}, errors.Wrap(err, "binding to NewLesson")
		}
		if err := data.Validate(api.validate); err != nil {
			return material.UpdateLesson{}, err
		}
		return data.Update(), nil
	}

	var data material.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateLesson")
	}
	return data, data.Validate(api.validate)
}

func (api *materialApi) updateLesson(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateLesson(ctx)
	if err != nil {
		return err
	}

	l, err := api.svc.UpdateLesson(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *materialApi) destroyLesson(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteLesson(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}
