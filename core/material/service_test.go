package material_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
	"github.com/Tatyana-Kavardaeva/My-LMS/services/email"
	inmem "github.com/Tatyana-Kavardaeva/My-LMS/storage/database/inmem"
	"github.com/Tatyana-Kavardaeva/My-LMS/tests"
)

type fixture struct {
	svc     material.Service
	repo    material.Repository
	mailSvc *emailsvc.ConsoleServiceMock

	teacher, student user.User
	course           material.Course
}

func setup(t *testing.T) fixture {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger(conf)

	db := inmem.NewDB()
	usrRepo := inmem.NewUserRepository(db)
	repo := inmem.NewMaterialRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	f := fixture{
		svc:     material.NewService(repo, user.NewService(usrRepo, mailSvc, conf), mailSvc, logger),
		repo:    repo,
		mailSvc: mailSvc,
		teacher: testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", "", user.RoleTeacher, true),
		student: testutil.CreateUser(t, usrRepo, "Linus", "linus@test.cd", "", user.RoleStudent, true),
	}

	var err error
	f.course, err = repo.CreateCourse(context.Background(), material.Course{Title: "Go 101", OwnerID: null.IntFrom(f.teacher.ID)})
	require.NoError(t, err)
	return f
}

func deniedReason(t *testing.T, err error) policy.Reason {
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied), "error = %v; want a *policy.DeniedError", err)
	return denied.Reason
}

func TestService_ToggleEnrollment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	student := policy.PrincipalOf(f.student)

	res, err := f.svc.ToggleEnrollment(ctx, student, f.course.ID)
	require.NoError(t, err)
	assert.True(t, res.Enrolled)
	assert.Equal(t, "you have been enrolled in the course", res.Message)

	enrolled, err := f.repo.IsEnrolled(ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, f.teacher.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, f.course.Title)
	assert.Contains(t, sent[0].TextContent, f.student.Email)

	res, err = f.svc.ToggleEnrollment(ctx, student, f.course.ID)
	require.NoError(t, err)
	assert.False(t, res.Enrolled)
	assert.Equal(t, "you have withdrawn from the course", res.Message)

	_, count, err := f.repo.QueryEnrollments(ctx, material.Filter{Scope: policy.Scope{Kind: policy.ScopeAll}}, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, f.mailSvc.SentMessages(), 1, "withdrawing sends no notice")
}

func TestService_ToggleEnrollment_denied(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name       string
		p          policy.Principal
		wantReason policy.Reason
	}{
		{name: "anonymous", p: policy.Anonymous(), wantReason: policy.ReasonNoAccess},
		{name: "no role", p: policy.Principal{ID: 99, Authenticated: true}, wantReason: policy.ReasonNoAccess},
		{name: "teacher", p: policy.PrincipalOf(f.teacher), wantReason: policy.ReasonInsufficient},
		{name: "admin", p: policy.Principal{ID: 98, Role: user.RoleAdmin, Authenticated: true}, wantReason: policy.ReasonInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ToggleEnrollment(ctx, tt.p, f.course.ID)
			assert.Equal(t, tt.wantReason, deniedReason(t, err))
		})
	}

	t.Run("unknown course", func(t *testing.T) {
		_, err := f.svc.ToggleEnrollment(ctx, policy.PrincipalOf(f.student), 999)
		assert.Equal(t, material.ErrNotFound, errors.Cause(err))
	})
}

func TestService_courseScoping(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	other := policy.Principal{ID: f.teacher.ID + 100, Role: user.RoleTeacher, Authenticated: true}

	_, err := f.svc.GetCourse(ctx, other, f.course.ID)
	assert.Equal(t, material.ErrNotFound, errors.Cause(err))

	_, err = f.svc.UpdateCourse(ctx, other, f.course.ID, material.UpdateCourse{})
	assert.Equal(t, material.ErrNotFound, errors.Cause(err))

	courses, count, err := f.svc.QueryCourses(ctx, other, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, courses)

	courses, count, err = f.svc.QueryCourses(ctx, policy.PrincipalOf(f.student), core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, courses, 1)
	assert.False(t, courses[0].IsEnrolled)

	_, err = f.svc.CreateCourse(ctx, policy.PrincipalOf(f.student), material.NewCourse{Title: "Mine"})
	assert.Equal(t, policy.ReasonInsufficient, deniedReason(t, err))
}

func TestService_modules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	teacher := policy.PrincipalOf(f.teacher)

	_, err := f.svc.CreateModule(ctx, teacher, material.NewModule{Title: "Intro", CourseID: 999})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr), "error = %v; want a *core.ValidationError", err)
	assert.Equal(t, "course", verr.Fields[0].Field)

	other := policy.Principal{ID: f.teacher.ID + 100, Role: user.RoleTeacher, Authenticated: true}
	_, err = f.svc.CreateModule(ctx, other, material.NewModule{Title: "Intro", CourseID: f.course.ID})
	require.True(t, errors.As(err, &verr), "error = %v; want a *core.ValidationError", err)
	assert.Equal(t, "invalid course", verr.Fields[0].Error)

	m, err := f.svc.CreateModule(ctx, teacher, material.NewModule{Title: "Intro", CourseID: f.course.ID})
	require.NoError(t, err)

	_, err = f.svc.CreateLesson(ctx, other, material.NewLesson{Title: "Hello", ModuleID: null.IntFrom(m.ID)})
	require.True(t, errors.As(err, &verr), "error = %v; want a *core.ValidationError", err)
	assert.Equal(t, "module", verr.Fields[0].Field)
	_, err = f.svc.CreateLesson(ctx, teacher, material.NewLesson{Title: "Hello", ModuleID: null.IntFrom(m.ID)})
	require.NoError(t, err)

	c, err := f.svc.GetCourse(ctx, teacher, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.CountModules)
	require.Len(t, c.Modules, 1)
	assert.Equal(t, 1, c.Modules[0].CountLessons)
}
