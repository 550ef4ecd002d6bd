package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
)

// quizFixtures is a test of `teacher` with two questions, each having one right and one wrong answer.
type quizFixtures struct {
	test              quiz.Test
	q1, q2            quiz.Question
	q1Right, q1Wrong  quiz.Answer
	q2Right, q2Wrong  quiz.Answer
	otherTest         quiz.Test
	otherTestQuestion quiz.Question
	otherTestAnswer   quiz.Answer
}

func (app *testApp) loadQuizFixtures(t *testing.T, f fixtures) quizFixtures {
	ctx := context.Background()
	var (
		qf  quizFixtures
		err error
	)

	createAnswer := func(q quiz.Question, text string, isCorrect bool) quiz.Answer {
		a, err := app.quizRepo.CreateAnswer(ctx, quiz.Answer{Text: text, IsCorrect: isCorrect, QuestionID: q.ID, OwnerID: q.OwnerID})
		require.NoError(t, err)
		return a
	}

	qf.test, err = app.quizRepo.CreateTest(ctx, quiz.Test{Title: "Go basics", CourseID: null.IntFrom(f.course.ID), OwnerID: null.IntFrom(f.teacher.ID)})
	require.NoError(t, err)
	qf.q1, err = app.quizRepo.CreateQuestion(ctx, quiz.Question{Text: "Zero value of int?", TestID: qf.test.ID, OwnerID: null.IntFrom(f.teacher.ID)})
	require.NoError(t, err)
	qf.q2, err = app.quizRepo.CreateQuestion(ctx, quiz.Question{Text: "Keyword for goroutines?", TestID: qf.test.ID, OwnerID: null.IntFrom(f.teacher.ID)})
	require.NoError(t, err)
	qf.q1Right = createAnswer(qf.q1, "0", true)
	qf.q1Wrong = createAnswer(qf.q1, "nil", false)
	qf.q2Right = createAnswer(qf.q2, "go", true)
	qf.q2Wrong = createAnswer(qf.q2, "async", false)

	qf.otherTest, err = app.quizRepo.CreateTest(ctx, quiz.Test{Title: "Ownership", CourseID: null.IntFrom(f.course2.ID), OwnerID: null.IntFrom(f.teacher2.ID)})
	require.NoError(t, err)
	qf.otherTestQuestion, err = app.quizRepo.CreateQuestion(ctx, quiz.Question{Text: "Who owns it?", TestID: qf.otherTest.ID, OwnerID: null.IntFrom(f.teacher2.ID)})
	require.NoError(t, err)
	qf.otherTestAnswer = createAnswer(qf.otherTestQuestion, "the borrower", false)
	return qf
}

func testPath(id int) string   { return fmt.Sprintf("/api/tests/%d", id) }
func resultPath(id int) string { return fmt.Sprintf("/api/test-results/%d", id) }

func (app *testApp) submit(t *testing.T, token string, q quiz.Question, a quiz.Answer) {
	rec := app.do(http.MethodPost, "/api/student-answers", token, marchallObj(t, quiz.NewStudentAnswer{QuestionID: q.ID, AnswerID: a.ID}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (app *testApp) complete(t *testing.T, token string, test quiz.Test) quiz.TestResultView {
	rec := app.do(http.MethodPost, "/api/test-results", token, marchallObj(t, quiz.NewTestResult{TestID: test.ID}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res quiz.TestResultView
	unmarshal(t, rec, &res)
	return res
}

func Test_quizApi_createTest(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)

	body := marchallObj(t, quiz.NewTest{Title: " Interfaces ", CourseID: null.IntFrom(f.course.ID)})

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/tests", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "no role", method: http.MethodPost, path: "/api/tests", body: body, token: f.rolelessToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoAccess)},
		{name: "student", method: http.MethodPost, path: "/api/tests", body: body, token: f.studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient)},
		{
			name: "invalid course", method: http.MethodPost, path: "/api/tests", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewTest{Title: "Interfaces", CourseID: null.IntFrom(999)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course": "invalid course"}),
		},
		{
			name: "course of another teacher", method: http.MethodPost, path: "/api/tests", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewTest{Title: "Interfaces", CourseID: null.IntFrom(f.course2.ID)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course": "invalid course"}),
		},
		{
			name: "admin: any course", method: http.MethodPost, path: "/api/tests", token: f.adminToken,
			body:     marchallObj(t, quiz.NewTest{Title: "Interfaces", CourseID: null.IntFrom(f.course2.ID)}),
			wantCode: http.StatusCreated,
		},
		{
			name: "invalid lesson", method: http.MethodPost, path: "/api/tests", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewTest{Title: "Interfaces", LessonID: null.IntFrom(999)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"lesson": "invalid lesson"}),
		},
		{
			name: "missing title", method: http.MethodPost, path: "/api/tests", token: f.teacherToken,
			body: marchallObj(t, quiz.NewTest{}), wantCode: http.StatusBadRequest,
		},
	}
	app.runTests(t, tests)

	rec := app.do(http.MethodPost, "/api/tests", f.teacherToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created quiz.TestView
	unmarshal(t, rec, &created)
	assert.Equal(t, "Interfaces", created.Title)
	assert.Equal(t, null.IntFrom(f.teacher.ID), created.OwnerID)
	assert.Empty(t, created.Questions)

	tests = []httpTest{
		{name: "owner", path: testPath(created.ID), token: f.teacherToken, wantCode: http.StatusOK},
		{name: "student", path: testPath(created.ID), token: f.studentToken, wantCode: http.StatusOK},
		{name: "other teacher", path: testPath(created.ID), token: f.teacher2Token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "other teacher update", method: http.MethodPatch, path: testPath(created.ID), token: f.teacher2Token, body: []byte(`{"title": "Mine"}`), wantCode: http.StatusNotFound},
		{name: "student delete", method: http.MethodDelete, path: testPath(created.ID), token: f.studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient)},
	}
	app.runTests(t, tests)
}

func Test_quizApi_updateDeleteTest(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)
	qf := app.loadQuizFixtures(t, f)

	t.Run("partial update", func(t *testing.T) {
		rec := app.do(http.MethodPatch, testPath(qf.test.ID), f.teacherToken, []byte(`{"description": "Types and values"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var v quiz.TestView
		unmarshal(t, rec, &v)
		assert.Equal(t, "Go basics", v.Title)
		assert.Equal(t, "Types and values", v.Description)
		assert.Len(t, v.Questions, 2)
	})

	t.Run("full update requires a title", func(t *testing.T) {
		rec := app.do(http.MethodPut, testPath(qf.test.ID), f.teacherToken, []byte(`{"description": "no title"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("delete cascades", func(t *testing.T) {
		rec := app.do(http.MethodDelete, testPath(qf.test.ID), f.adminToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = app.do(http.MethodGet, fmt.Sprintf("/api/questions/%d", qf.q1.ID), f.adminToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = app.do(http.MethodGet, fmt.Sprintf("/api/answers/%d", qf.q1Right.ID), f.adminToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_quizApi_questionsAndAnswers(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)
	qf := app.loadQuizFixtures(t, f)

	tests := []httpTest{
		{
			name: "invalid test", method: http.MethodPost, path: "/api/questions", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewQuestion{Text: "Why?", TestID: 999}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"test": "invalid test"}),
		},
		{
			name: "test of another teacher", method: http.MethodPost, path: "/api/questions", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewQuestion{Text: "Why?", TestID: qf.otherTest.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"test": "invalid test"}),
		},
		{
			name: "question of another teacher", method: http.MethodPost, path: "/api/answers", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewAnswer{Text: "Because", QuestionID: qf.otherTestQuestion.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"question": "invalid question"}),
		},
		{
			name: "student question", method: http.MethodPost, path: "/api/questions", token: f.studentToken,
			body:     marchallObj(t, quiz.NewQuestion{Text: "Why?", TestID: qf.test.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient),
		},
		{
			name: "invalid question", method: http.MethodPost, path: "/api/answers", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewAnswer{Text: "Because", QuestionID: 999}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"question": "invalid question"}),
		},
		{
			name: "student answer", method: http.MethodPost, path: "/api/answers", token: f.studentToken,
			body:     marchallObj(t, quiz.NewAnswer{Text: "Because", QuestionID: qf.q1.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient),
		},
	}
	app.runTests(t, tests)

	rec := app.do(http.MethodPost, "/api/questions", f.teacherToken, marchallObj(t, quiz.NewQuestion{Text: "Size of a byte?", TestID: qf.test.ID}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q quiz.QuestionView
	unmarshal(t, rec, &q)
	assert.Equal(t, null.IntFrom(f.teacher.ID), q.OwnerID)
	assert.Empty(t, q.Answers)

	rec = app.do(http.MethodPost, "/api/answers", f.teacherToken, marchallObj(t, quiz.NewAnswer{Text: "8 bits", IsCorrect: true, QuestionID: q.ID}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/questions/%d", q.ID), f.teacherToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &q)
	require.Len(t, q.Answers, 1)
	assert.True(t, q.Answers[0].IsCorrect)

	lists := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"questions of test", fmt.Sprintf("/api/questions?test=%d", qf.test.ID), f.studentToken, 3},
		{"questions of other teacher", "/api/questions", f.teacher2Token, 1},
		{"all questions", "/api/questions", f.adminToken, 4},
		{"answers of question", fmt.Sprintf("/api/answers?question=%d", qf.q1.ID), f.teacherToken, 2},
		{"answers of other teacher", "/api/answers", f.teacher2Token, 1},
	}
	for _, tt := range lists {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Len(t, ids(t, rec), tt.want)
		})
	}
}

func Test_quizApi_submitAnswer(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)
	qf := app.loadQuizFixtures(t, f)

	tests := []httpTest{
		{
			name: "teacher", method: http.MethodPost, path: "/api/student-answers", token: f.teacherToken,
			body:     marchallObj(t, quiz.NewStudentAnswer{QuestionID: qf.q1.ID, AnswerID: qf.q1Right.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient),
		},
		{
			name: "admin", method: http.MethodPost, path: "/api/student-answers", token: f.adminToken,
			body:     marchallObj(t, quiz.NewStudentAnswer{QuestionID: qf.q1.ID, AnswerID: qf.q1Right.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient),
		},
		{
			name: "invalid question", method: http.MethodPost, path: "/api/student-answers", token: f.studentToken,
			body:     marchallObj(t, quiz.NewStudentAnswer{QuestionID: 999, AnswerID: qf.q1Right.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"question": "invalid question"}),
		},
		{
			name: "invalid answer", method: http.MethodPost, path: "/api/student-answers", token: f.studentToken,
			body:     marchallObj(t, quiz.NewStudentAnswer{QuestionID: qf.q1.ID, AnswerID: 999}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"answer": "invalid answer"}),
		},
		{
			name: "answer of another question", method: http.MethodPost, path: "/api/student-answers", token: f.studentToken,
			body:     marchallObj(t, quiz.NewStudentAnswer{QuestionID: qf.q1.ID, AnswerID: qf.q2Right.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"answer": "answer does not belong to the question"}),
		},
	}
	app.runTests(t, tests)

	t.Run("student is the principal", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"question": %d, "answer": %d, "student": %d, "is_correct": true}`, qf.q1.ID, qf.q1Wrong.ID, f.student2.ID))
		rec := app.do(http.MethodPost, "/api/student-answers", f.studentToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sa quiz.StudentAnswer
		unmarshal(t, rec, &sa)
		assert.Equal(t, f.student.ID, sa.StudentID)
		assert.False(t, sa.IsCorrect)
	})

	app.submit(t, f.student2Token, qf.q1, qf.q1Right)
	app.submit(t, f.student2Token, qf.otherTestQuestion, qf.otherTestAnswer)

	lists := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"own answers", "/api/student-answers", f.studentToken, 1},
		{"own answers of test", fmt.Sprintf("/api/student-answers?test=%d", qf.otherTest.ID), f.student2Token, 1},
		{"answers to owned tests", "/api/student-answers", f.teacherToken, 2},
		{"answers to other owned tests", "/api/student-answers", f.teacher2Token, 1},
		{"all answers", "/api/student-answers", f.adminToken, 3},
	}
	for _, tt := range lists {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Len(t, ids(t, rec), tt.want)
		})
	}
}

func Test_quizApi_createResult(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)
	qf := app.loadQuizFixtures(t, f)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/test-results", body: marchallObj(t, quiz.NewTestResult{TestID: qf.test.ID}), wantCode: http.StatusUnauthorized},
		{
			name: "teacher", method: http.MethodPost, path: "/api/test-results", token: f.teacherToken,
			body: marchallObj(t, quiz.NewTestResult{TestID: qf.test.ID}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errInsufficient),
		},
		{
			name: "invalid test", method: http.MethodPost, path: "/api/test-results", token: f.studentToken,
			body: marchallObj(t, quiz.NewTestResult{TestID: 999}), wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"test": "invalid test"}),
		},
	}
	app.runTests(t, tests)

	t.Run("half right", func(t *testing.T) {
		app.submit(t, f.studentToken, qf.q1, qf.q1Right)
		app.submit(t, f.studentToken, qf.q1, qf.q1Right)
		app.submit(t, f.studentToken, qf.q2, qf.q2Wrong)

		res := app.complete(t, f.studentToken, qf.test)
		assert.Equal(t, f.student.ID, res.StudentID)
		assert.Equal(t, 2, res.CountQuestions)
		assert.Equal(t, 1, res.CountRightAnswers)
		assert.Equal(t, quiz.GradeC, res.Score)
		assert.Len(t, res.StudentAnswers, 3)
	})

	t.Run("already completed", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/test-results", f.studentToken, marchallObj(t, quiz.NewTestResult{TestID: qf.test.ID}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(rec.Body.Bytes(), marchallObj(t, errTestCompleted))
		require.NoError(t, err)
		assert.True(t, ok, rec.Body.String())
	})

	t.Run("all right", func(t *testing.T) {
		app.submit(t, f.student2Token, qf.q1, qf.q1Right)
		app.submit(t, f.student2Token, qf.q2, qf.q2Right)

		res := app.complete(t, f.student2Token, qf.test)
		assert.Equal(t, 2, res.CountRightAnswers)
		assert.Equal(t, quiz.GradeA, res.Score)
	})

	t.Run("no questions", func(t *testing.T) {
		empty, err := app.quizRepo.CreateTest(context.Background(), quiz.Test{Title: "Empty", OwnerID: null.IntFrom(f.teacher.ID)})
		require.NoError(t, err)

		res := app.complete(t, f.studentToken, empty)
		assert.Equal(t, 0, res.CountQuestions)
		assert.Equal(t, 0, res.CountRightAnswers)
		assert.Equal(t, quiz.GradeD, res.Score)
	})

	t.Run("computed fields are never client supplied", func(t *testing.T) {
		body := []byte(fmt.Sprintf(
			`{"test": %d, "student": %d, "count_questions": 1, "count_right_answers": 1, "score": "a"}`,
			qf.otherTest.ID, f.student2.ID,
		))
		rec := app.do(http.MethodPost, "/api/test-results", f.studentToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res quiz.TestResultView
		unmarshal(t, rec, &res)
		assert.Equal(t, f.student.ID, res.StudentID)
		assert.Equal(t, 1, res.CountQuestions)
		assert.Equal(t, 0, res.CountRightAnswers)
		assert.Equal(t, quiz.GradeD, res.Score)
	})
}

func Test_quizApi_retrieveResult(t *testing.T) {
	app := setup(t)
	f := app.loadFixtures(t)
	qf := app.loadQuizFixtures(t, f)

	app.submit(t, f.studentToken, qf.q1, qf.q1Right)
	res := app.complete(t, f.studentToken, qf.test)
	other := app.complete(t, f.student2Token, qf.otherTest)

	tests := []httpTest{
		{name: "student", path: resultPath(res.ID), token: f.studentToken, wantCode: http.StatusOK},
		{name: "test owner", path: resultPath(res.ID), token: f.teacherToken, wantCode: http.StatusOK},
		{name: "admin", path: resultPath(res.ID), token: f.adminToken, wantCode: http.StatusOK},
		{name: "other student", path: resultPath(res.ID), token: f.student2Token, wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResultRead)},
		{name: "other teacher", path: resultPath(res.ID), token: f.teacher2Token, wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResultRead)},
		{name: "no role", path: resultPath(res.ID), token: f.rolelessToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoAccess)},
		{name: "unknown result", path: resultPath(999), token: f.adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	app.runTests(t, tests)

	lists := []struct {
		name  string
		path  string
		token string
		want  []int
	}{
		{"own results", "/api/test-results", f.studentToken, []int{res.ID}},
		{"results of owned tests", "/api/test-results", f.teacherToken, []int{res.ID}},
		{"results of other owned tests", "/api/test-results", f.teacher2Token, []int{other.ID}},
		{"results of test", fmt.Sprintf("/api/test-results?test=%d", qf.otherTest.ID), f.adminToken, []int{other.ID}},
		{"all results", "/api/test-results", f.adminToken, []int{res.ID, other.ID}},
	}
	for _, tt := range lists {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.ElementsMatch(t, tt.want, ids(t, rec))
		})
	}
}
