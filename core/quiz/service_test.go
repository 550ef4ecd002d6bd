package quiz_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
	inmem "github.com/Tatyana-Kavardaeva/My-LMS/storage/database/inmem"
)

var (
	teacher  = policy.Principal{ID: 1, Role: user.RoleTeacher, Authenticated: true}
	teacher2 = policy.Principal{ID: 2, Role: user.RoleTeacher, Authenticated: true}
	student  = policy.Principal{ID: 3, Role: user.RoleStudent, Authenticated: true}
	student2 = policy.Principal{ID: 4, Role: user.RoleStudent, Authenticated: true}
	admin    = policy.Principal{ID: 5, Role: user.RoleAdmin, Authenticated: true}
)

func newService() quiz.Service {
	db := inmem.NewDB()
	return quiz.NewService(inmem.NewQuizRepository(db), inmem.NewMaterialRepository(db))
}

// newTest creates a test of `teacher` with `questions` questions, each having a right and a wrong answer.
func newTest(t *testing.T, svc quiz.Service, questions int) (quiz.Test, [][2]quiz.Answer) {
	ctx := context.Background()
	tv, err := svc.CreateTest(ctx, teacher, quiz.NewTest{Title: "Quiz"})
	require.NoError(t, err)

	answers := make([][2]quiz.Answer, 0, questions)
	for i := 0; i < questions; i++ {
		q, err := svc.CreateQuestion(ctx, teacher, quiz.NewQuestion{Text: "Question", TestID: tv.ID})
		require.NoError(t, err)
		right, err := svc.CreateAnswer(ctx, teacher, quiz.NewAnswer{Text: "right", IsCorrect: true, QuestionID: q.ID})
		require.NoError(t, err)
		wrong, err := svc.CreateAnswer(ctx, teacher, quiz.NewAnswer{Text: "wrong", QuestionID: q.ID})
		require.NoError(t, err)
		answers = append(answers, [2]quiz.Answer{right, wrong})
	}
	return tv.Test, answers
}

func submit(t *testing.T, svc quiz.Service, p policy.Principal, a quiz.Answer) {
	_, err := svc.SubmitAnswer(context.Background(), p, quiz.NewStudentAnswer{QuestionID: a.QuestionID, AnswerID: a.ID})
	require.NoError(t, err)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr), "error = %v; want a *core.ValidationError", err)
	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Error
	}
	return fields
}

func TestService_CreateResult(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		questions int
		right     int // questions answered right; the rest are answered wrong
		wantRight int
		wantScore quiz.Grade
	}{
		{name: "no questions", questions: 0, wantScore: quiz.GradeD},
		{name: "half right", questions: 2, right: 1, wantRight: 1, wantScore: quiz.GradeC},
		{name: "all wrong", questions: 3, wantScore: quiz.GradeD},
		{name: "all right", questions: 3, right: 3, wantRight: 3, wantScore: quiz.GradeA},
		{name: "4 of 5", questions: 5, right: 4, wantRight: 4, wantScore: quiz.GradeB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()
			test, answers := newTest(t, svc, tt.questions)
			for i, pair := range answers {
				if i < tt.right {
					submit(t, svc, student, pair[0])
				} else {
					submit(t, svc, student, pair[1])
				}
			}

			res, err := svc.CreateResult(ctx, student, quiz.NewTestResult{TestID: test.ID})
			require.NoError(t, err)
			assert.Equal(t, student.ID, res.StudentID)
			assert.Equal(t, tt.questions, res.CountQuestions)
			assert.Equal(t, tt.wantRight, res.CountRightAnswers)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Len(t, res.StudentAnswers, tt.questions)
		})
	}
}

func TestService_CreateResult_repeatedAnswers(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	test, answers := newTest(t, svc, 2)

	// the same right answer three times still counts for one question
	for i := 0; i < 3; i++ {
		submit(t, svc, student, answers[0][0])
	}

	res, err := svc.CreateResult(ctx, student, quiz.NewTestResult{TestID: test.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CountRightAnswers)
	assert.Equal(t, quiz.GradeC, res.Score)

	_, err = svc.CreateResult(ctx, student, quiz.NewTestResult{TestID: test.ID})
	assert.Equal(t, map[string]string{"test": "test already completed"}, fieldErrors(t, err))

	_, err = svc.CreateResult(ctx, student, quiz.NewTestResult{TestID: 999})
	assert.Equal(t, map[string]string{"test": "invalid test"}, fieldErrors(t, err))

	_, err = svc.CreateResult(ctx, teacher, quiz.NewTestResult{TestID: test.ID})
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, policy.ReasonInsufficient, denied.Reason)
}

func TestService_SubmitAnswer(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, answers := newTest(t, svc, 2)

	_, err := svc.SubmitAnswer(ctx, student, quiz.NewStudentAnswer{QuestionID: answers[0][0].QuestionID, AnswerID: answers[1][0].ID})
	assert.Equal(t, map[string]string{"answer": "answer does not belong to the question"}, fieldErrors(t, err))

	_, err = svc.SubmitAnswer(ctx, student, quiz.NewStudentAnswer{QuestionID: 999, AnswerID: answers[0][0].ID})
	assert.Equal(t, map[string]string{"question": "invalid question"}, fieldErrors(t, err))

	sa, err := svc.SubmitAnswer(ctx, student, quiz.NewStudentAnswer{QuestionID: answers[0][1].QuestionID, AnswerID: answers[0][1].ID})
	require.NoError(t, err)
	assert.Equal(t, student.ID, sa.StudentID)
	assert.False(t, sa.IsCorrect)
}

func TestService_GetResult(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	test, answers := newTest(t, svc, 1)
	submit(t, svc, student, answers[0][0])

	res, err := svc.CreateResult(ctx, student, quiz.NewTestResult{TestID: test.ID})
	require.NoError(t, err)

	tests := []struct {
		name       string
		p          policy.Principal
		wantReason policy.Reason
	}{
		{name: "student", p: student},
		{name: "test owner", p: teacher},
		{name: "admin", p: admin},
		{name: "other student", p: student2, wantReason: policy.ReasonNoObjectAccess},
		{name: "other teacher", p: teacher2, wantReason: policy.ReasonNoObjectAccess},
		{name: "anonymous", p: policy.Anonymous(), wantReason: policy.ReasonNoAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetResult(ctx, tt.p, res.ID)
			if tt.wantReason == policy.ReasonNone {
				require.NoError(t, err)
				assert.Equal(t, res.ID, got.ID)
				assert.Len(t, got.StudentAnswers, 1)
				return
			}
			var denied *policy.DeniedError
			require.True(t, errors.As(err, &denied), "error = %v", err)
			assert.Equal(t, tt.wantReason, denied.Reason)
		})
	}

	_, err = svc.GetResult(ctx, admin, 999)
	assert.Equal(t, quiz.ErrNotFound, errors.Cause(err))
}

func TestService_testScoping(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	test, _ := newTest(t, svc, 1)

	_, err := svc.GetTest(ctx, teacher2, test.ID)
	assert.Equal(t, quiz.ErrNotFound, errors.Cause(err))

	_, err = svc.CreateTest(ctx, teacher, quiz.NewTest{Title: "Quiz", CourseID: null.IntFrom(999)})
	assert.Equal(t, map[string]string{"course": "invalid course"}, fieldErrors(t, err))

	_, err = svc.CreateQuestion(ctx, teacher2, quiz.NewQuestion{Text: "Mine?", TestID: test.ID})
	assert.Equal(t, map[string]string{"test": "invalid test"}, fieldErrors(t, err))

	_, err = svc.CreateQuestion(ctx, admin, quiz.NewQuestion{Text: "Anyone's", TestID: test.ID})
	assert.NoError(t, err)

	for _, p := range []policy.Principal{student, admin, teacher} {
		_, count, err := svc.QueryTests(ctx, p, core.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}
	_, count, err := svc.QueryTests(ctx, teacher2, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
