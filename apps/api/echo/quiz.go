package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
)

type quizApi struct {
	conf     *core.Config
	svc      quiz.Service
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := quizApi{
		conf:     deps.Conf,
		svc:      deps.QuizSvc,
		validate: deps.Validate,
	}

	tg := g.Group("/tests", authed...)
	tg.POST("", api.createTest, authorize(policy.ResourceTest, policy.ActionCreate))
	tg.GET("", api.queryTests, authorize(policy.ResourceTest, policy.ActionList))
	tg.GET("/:id", api.retrieveTest, authorize(policy.ResourceTest, policy.ActionRetrieve))
	tg.PUT("/:id", api.updateTest, authorize(policy.ResourceTest, policy.ActionUpdate))
	tg.PATCH("/:id", api.updateTest, authorize(policy.ResourceTest, policy.ActionPartialUpdate))
	tg.DELETE("/:id", api.destroyTest, authorize(policy.ResourceTest, policy.ActionDelete))

	qg := g.Group("/questions", authed...)
	qg.POST("", api.createQuestion, authorize(policy.ResourceQuestion, policy.ActionCreate))
	qg.GET("", api.queryQuestions, authorize(policy.ResourceQuestion, policy.ActionList))
	qg.GET("/:id", api.retrieveQuestion, authorize(policy.ResourceQuestion, policy.ActionRetrieve))
	qg.PUT("/:id", api.updateQuestion, authorize(policy.ResourceQuestion, policy.ActionUpdate))
	qg.PATCH("/:id", api.updateQuestion, authorize(policy.ResourceQuestion, policy.ActionPartialUpdate))
	qg.DELETE("/:id", api.destroyQuestion, authorize(policy.ResourceQuestion, policy.ActionDelete))

	ag := g.Group("/answers", authed...)
	ag.POST("", api.createAnswer, authorize(policy.ResourceAnswer, policy.ActionCreate))
	ag.GET("", api.queryAnswers, authorize(policy.ResourceAnswer, policy.ActionList))
	ag.GET("/:id", api.retrieveAnswer, authorize(policy.ResourceAnswer, policy.ActionRetrieve))
	ag.PUT("/:id", api.updateAnswer, authorize(policy.ResourceAnswer, policy.ActionUpdate))
	ag.PATCH("/:id", api.updateAnswer, authorize(policy.ResourceAnswer, policy.ActionPartialUpdate))
	ag.DELETE("/:id", api.destroyAnswer, authorize(policy.ResourceAnswer, policy.ActionDelete))

	sg := g.Group("/student-answers", authed...)
	sg.POST("", api.submitAnswer, authorize(policy.ResourceStudentAnswer, policy.ActionCreate))
	sg.GET("", api.queryStudentAnswers, authorize(policy.ResourceStudentAnswer, policy.ActionList))

	rg := g.Group("/test-results", authed...)
	rg.POST("", api.createResult, authorize(policy.ResourceTestResult, policy.ActionCreate))
	rg.GET("", api.queryResults, authorize(policy.ResourceTestResult, policy.ActionList))
	rg.GET("/:id", api.retrieveResult, authorize(policy.ResourceTestResult, policy.ActionRetrieve))
}

// Tests

func (api *quizApi) createTest(ctx echo.Context) error {
	var data quiz.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTest(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *quizApi) queryTests(ctx echo.Context) error {
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	tests, count, err := api.svc.QueryTests(ctx.Request().Context(), getPrincipal(ctx), opts)
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return list(ctx, opts, count, tests)
}

func (api *quizApi) retrieveTest(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	t, err := api.svc.GetTest(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting test")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *quizApi) bindUpdateTest(ctx echo.Context) (quiz.UpdateTest, error) {
	if isPut(ctx) {
		var data quiz.NewTest
		if err := ctx.Bind(&data); err != nil {
			return quiz.UpdateTest{}, errors.Wrap(err, "binding to NewTest")
		}
		if err := data.Validate(api.validate); err != nil {
			return quiz.UpdateTest{}, err
		}
		return data.Update(), nil
	}

	var data quiz.UpdateTest
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateTest")
	}
	return data, data.Validate(api.validate)
}

func (api *quizApi) updateTest(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateTest(ctx)
	if err != nil {
		return err
	}

	t, err := api.svc.UpdateTest(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *quizApi) destroyTest(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTest(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *quizApi) createQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.CreateQuestion(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *quizApi) queryQuestions(ctx echo.Context) error {
	testID, err := queryID(ctx, "test")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	questions, count, err := api.svc.QueryQuestions(ctx.Request().Context(), getPrincipal(ctx), testID, opts)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return list(ctx, opts, count, questions)
}

func (api *quizApi) retrieveQuestion(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	q, err := api.svc.GetQuestion(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) bindUpdateQuestion(ctx echo.Context) (quiz.UpdateQuestion, error) {
	if isPut(ctx) {
		var data quiz.NewQuestion
		if err := ctx.Bind(&data); err != nil {
			return quiz.UpdateQuestion{}, errors.Wrap(err, "binding to NewQuestion")
		}
		if err := data.Validate(api.validate); err != nil {
			return quiz.UpdateQuestion{}, err
		}
		return data.Update(), nil
	}

	var data quiz.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateQuestion")
	}
	return data, data.Validate(api.validate)
}

func (api *quizApi) updateQuestion(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateQuestion(ctx)
	if err != nil {
		return err
	}

	q, err := api.svc.UpdateQuestion(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) destroyQuestion(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteQuestion(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Answers

func (api *quizApi) createAnswer(ctx echo.Context) error {
	var data quiz.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAnswer(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating answer")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *quizApi) queryAnswers(ctx echo.Context) error {
	questionID, err := queryID(ctx, "question")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	answers, count, err := api.svc.QueryAnswers(ctx.Request().Context(), getPrincipal(ctx), questionID, opts)
	if err != nil {
		return errors.Wrap(err, "querying answers")
	}
	return list(ctx, opts, count, answers)
}

func (api *quizApi) retrieveAnswer(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.svc.GetAnswer(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting answer")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *quizApi) bindUpdateAnswer(ctx echo.Context) (quiz.UpdateAnswer, error) {
	if isPut(ctx) {
		var data quiz.NewAnswer
		if err := ctx.Bind(&data); err != nil {
			return quiz.UpdateAnswer{}, errors.Wrap(err, "binding to NewAnswer")
		}
		if err := data.Validate(api.validate); err != nil {
			return quiz.UpdateAnswer{}, err
		}
		return data.Update(), nil
	}

	var data quiz.UpdateAnswer
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to UpdateAnswer")
	}
	return data, data.Validate(api.validate)
}

func (api *quizApi) updateAnswer(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	data, err := api.bindUpdateAnswer(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.UpdateAnswer(ctx.Request().Context(), getPrincipal(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating answer")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *quizApi) destroyAnswer(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAnswer(ctx.Request().Context(), getPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting answer")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Student answers

func (api *quizApi) submitAnswer(ctx echo.Context) error {
	var data quiz.NewStudentAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentAnswer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sa, err := api.svc.SubmitAnswer(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "submitting answer")
	}
	return ctx.JSON(http.StatusCreated, sa)
}

func (api *quizApi) queryStudentAnswers(ctx echo.Context) error {
	testID, err := queryID(ctx, "test")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	answers, count, err := api.svc.QueryStudentAnswers(ctx.Request().Context(), getPrincipal(ctx), testID, opts)
	if err != nil {
		return errors.Wrap(err, "querying student answers")
	}
	return list(ctx, opts, count, answers)
}

// Test results

func (api *quizApi) createResult(ctx echo.Context) error {
	var data quiz.NewTestResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestResult")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.CreateResult(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating test result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *quizApi) queryResults(ctx echo.Context) error {
	testID, err := queryID(ctx, "test")
	if err != nil {
		return err
	}
	opts, err := bindListOptions(ctx, api.conf.Pagination)
	if err != nil {
		return err
	}
	results, count, err := api.svc.QueryResults(ctx.Request().Context(), getPrincipal(ctx), testID, opts)
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	return list(ctx, opts, count, results)
}

func (api *quizApi) retrieveResult(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := api.svc.GetResult(ctx.Request().Context(), getPrincipal(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting test result")
	}
	return ctx.JSON(http.StatusOK, res)
}
