package quiz

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
)

var (
	// errors
	ErrNotFound     = errors.New("not found")
	ErrResultExists = errors.New("test already completed")
)

const msgAnswerMismatch = "answer does not belong to the question"

type (
	Repository interface {
		CreateTest(ctx context.Context, t Test) (Test, error)
		QueryTests(ctx context.Context, filter Filter, opts core.ListOptions) ([]Test, int, error)
		GetTest(ctx context.Context, id int) (Test, error)
		UpdateTest(ctx context.Context, t Test) (Test, error)
		DeleteTest(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// QueryQuestions supports Filter.Scope and Filter.TestID.
		QueryQuestions(ctx context.Context, filter Filter, opts core.ListOptions) ([]Question, int, error)
		GetQuestion(ctx context.Context, id int) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestion(ctx context.Context, id int) error

		CreateAnswer(ctx context.Context, a Answer) (Answer, error)
		// QueryAnswers supports Filter.Scope and Filter.QuestionIDs.
		QueryAnswers(ctx context.Context, filter Filter, opts core.ListOptions) ([]Answer, int, error)
		GetAnswer(ctx context.Context, id int) (Answer, error)
		UpdateAnswer(ctx context.Context, a Answer) (Answer, error)
		DeleteAnswer(ctx context.Context, id int) error

		CreateStudentAnswer(ctx context.Context, sa StudentAnswer) (StudentAnswer, error)
		// QueryStudentAnswers supports Filter.Scope, Filter.TestID and Filter.StudentID.
		QueryStudentAnswers(ctx context.Context, filter Filter, opts core.ListOptions) ([]StudentAnswer, int, error)

		CountQuestions(ctx context.Context, testID int) (int, error)
		// CountRightAnswers counts the distinct questions of the test the student answered correctly.
		CountRightAnswers(ctx context.Context, studentID, testID int) (int, error)

		// CreateTestResult returns ErrResultExists if the student already has a result for the test.
		CreateTestResult(ctx context.Context, r TestResult) (TestResult, error)
		// QueryTestResults supports Filter.Scope, Filter.TestID and Filter.StudentID.
		QueryTestResults(ctx context.Context, filter Filter, opts core.ListOptions) ([]TestResult, int, error)
		GetTestResult(ctx context.Context, id int) (TestResult, error)
	}

	// Materials finds the courses, modules and lessons tests may be attached to; material.Repository is one.
	Materials interface {
		GetCourse(ctx context.Context, id int) (material.Course, error)
		GetModule(ctx context.Context, id int) (material.Module, error)
		GetLesson(ctx context.Context, id int) (material.Lesson, error)
	}

	Service interface {
		CreateTest(ctx context.Context, p policy.Principal, nt NewTest) (TestView, error)
		QueryTests(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]TestView, int, error)
		GetTest(ctx context.Context, p policy.Principal, id int) (TestView, error)
		UpdateTest(ctx context.Context, p policy.Principal, id int, ut UpdateTest) (TestView, error)
		DeleteTest(ctx context.Context, p policy.Principal, id int) error

		CreateQuestion(ctx context.Context, p policy.Principal, nq NewQuestion) (QuestionView, error)
		QueryQuestions(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]QuestionView, int, error)
		GetQuestion(ctx context.Context, p policy.Principal, id int) (QuestionView, error)
		UpdateQuestion(ctx context.Context, p policy.Principal, id int, uq UpdateQuestion) (QuestionView, error)
		DeleteQuestion(ctx context.Context, p policy.Principal, id int) error

		CreateAnswer(ctx context.Context, p policy.Principal, na NewAnswer) (Answer, error)
		QueryAnswers(ctx context.Context, p policy.Principal, questionID int, opts core.ListOptions) ([]Answer, int, error)
		GetAnswer(ctx context.Context, p policy.Principal, id int) (Answer, error)
		UpdateAnswer(ctx context.Context, p policy.Principal, id int, ua UpdateAnswer) (Answer, error)
		DeleteAnswer(ctx context.Context, p policy.Principal, id int) error

		SubmitAnswer(ctx context.Context, p policy.Principal, nsa NewStudentAnswer) (StudentAnswer, error)
		QueryStudentAnswers(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]StudentAnswer, int, error)

		CreateResult(ctx context.Context, p policy.Principal, ntr NewTestResult) (TestResultView, error)
		QueryResults(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]TestResult, int, error)
		GetResult(ctx context.Context, p policy.Principal, id int) (TestResultView, error)
	}

	service struct {
		repo      Repository
		materials Materials
		nowFunc   func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, materials Materials) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(materials, "materials"),
	).CheckAndPanic()

	return &service{repo: repo, materials: materials, nowFunc: time.Now}
}

var scopeAll = policy.Scope{Kind: policy.ScopeAll}

func authorize(p policy.Principal, a policy.Action, r policy.Resource) error {
	return policy.Evaluate(p, a, r).Err()
}

// inScope maps objects the principal may not see to ErrNotFound.
func inScope(p policy.Principal, r policy.Resource, ownerID null.Int) error {
	if !policy.ScopeFor(p, r).Permits(ownerID.Int, 0) {
		return ErrNotFound
	}
	return nil
}

// invalidRef maps a missing referenced object to a validation error on `field`.
func invalidRef(err error, field string) error {
	if errors.Cause(err) == ErrNotFound || errors.Cause(err) == material.ErrNotFound {
		return core.NewFieldError(field, "invalid "+field)
	}
	return errors.Wrap(err, "getting "+field)
}

// outOfScopeRef reports a referenced object the principal may not see like a missing one.
func outOfScopeRef(p policy.Principal, r policy.Resource, ownerID null.Int, field string) error {
	if inScope(p, r, ownerID) != nil {
		return core.NewFieldError(field, "invalid "+field)
	}
	return nil
}

// Tests

// checkTestRefs validates the set references of a test; unset ones are skipped.
func (svc *service) checkTestRefs(ctx context.Context, p policy.Principal, course, module, lesson null.Int) error {
	if course.Valid {
		c, err := svc.materials.GetCourse(ctx, course.Int)
		if err != nil {
			return invalidRef(err, "course")
		}
		if err := outOfScopeRef(p, policy.ResourceCourse, c.OwnerID, "course"); err != nil {
			return err
		}
	}
	if module.Valid {
		m, err := svc.materials.GetModule(ctx, module.Int)
		if err != nil {
			return invalidRef(err, "module")
		}
		if err := outOfScopeRef(p, policy.ResourceModule, m.OwnerID, "module"); err != nil {
			return err
		}
	}
	if lesson.Valid {
		l, err := svc.materials.GetLesson(ctx, lesson.Int)
		if err != nil {
			return invalidRef(err, "lesson")
		}
		if err := outOfScopeRef(p, policy.ResourceLesson, l.OwnerID, "lesson"); err != nil {
			return err
		}
	}
	return nil
}

// changedRef returns `after` when it differs from `before`, an unset reference otherwise.
func changedRef(before, after null.Int) null.Int {
	if after.Valid && (!before.Valid || before.Int != after.Int) {
		return after
	}
	return null.Int{}
}

func (svc *service) testView(ctx context.Context, t Test) (TestView, error) {
	questions, _, err := svc.repo.QueryQuestions(ctx, Filter{Scope: scopeAll, TestID: t.ID}, core.ListOptions{})
	if err != nil {
		return TestView{}, errors.Wrap(err, "querying test questions")
	}
	views, err := svc.questionViews(ctx, questions)
	if err != nil {
		return TestView{}, err
	}
	return TestView{Test: t, Questions: views}, nil
}

func (svc *service) CreateTest(ctx context.Context, p policy.Principal, nt NewTest) (TestView, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceTest); err != nil {
		return TestView{}, err
	}
	if err := svc.checkTestRefs(ctx, p, nt.CourseID, nt.ModuleID, nt.LessonID); err != nil {
		return TestView{}, err
	}
	t, err := svc.repo.CreateTest(ctx, Test{
		Title:       nt.Title,
		Description: nt.Description,
		CourseID:    nt.CourseID,
		ModuleID:    nt.ModuleID,
		LessonID:    nt.LessonID,
		OwnerID:     null.IntFrom(p.ID),
		CreatedAt:   svc.nowFunc().UTC(),
	})
	if err != nil {
		return TestView{}, errors.Wrap(err, "creating test")
	}
	return svc.testView(ctx, t)
}

func (svc *service) QueryTests(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]TestView, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceTest); err != nil {
		return nil, 0, err
	}
	tests, count, err := svc.repo.QueryTests(ctx, Filter{Scope: policy.ScopeFor(p, policy.ResourceTest)}, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying tests")
	}
	views := make([]TestView, 0, len(tests))
	for _, t := range tests {
		v, err := svc.testView(ctx, t)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, count, nil
}

func (svc *service) getTest(ctx context.Context, p policy.Principal, a policy.Action, id int) (Test, error) {
	if err := authorize(p, a, policy.ResourceTest); err != nil {
		return Test{}, err
	}
	t, err := svc.repo.GetTest(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return t, inScope(p, policy.ResourceTest, t.OwnerID)
}

func (svc *service) GetTest(ctx context.Context, p policy.Principal, id int) (TestView, error) {
	t, err := svc.getTest(ctx, p, policy.ActionRetrieve, id)
	if err != nil {
		return TestView{}, err
	}
	return svc.testView(ctx, t)
}

func (svc *service) UpdateTest(ctx context.Context, p policy.Principal, id int, ut UpdateTest) (TestView, error) {
	t, err := svc.getTest(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return TestView{}, err
	}
	prev := t
	t = ut.apply(t)
	err = svc.checkTestRefs(ctx, p,
		changedRef(prev.CourseID, t.CourseID), changedRef(prev.ModuleID, t.ModuleID), changedRef(prev.LessonID, t.LessonID))
	if err != nil {
		return TestView{}, err
	}
	if t, err = svc.repo.UpdateTest(ctx, t); err != nil {
		return TestView{}, errors.Wrap(err, "updating test")
	}
	return svc.testView(ctx, t)
}

func (svc *service) DeleteTest(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getTest(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteTest(ctx, id)
}

// Questions

func (svc *service) questionViews(ctx context.Context, questions []Question) ([]QuestionView, error) {
	views := make([]QuestionView, 0, len(questions))
	if len(questions) == 0 {
		return views, nil
	}

	ids := make([]int, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	answers, _, err := svc.repo.QueryAnswers(ctx, Filter{Scope: scopeAll, QuestionIDs: ids}, core.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	byQuestion := make(map[int][]Answer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	for _, q := range questions {
		qa := byQuestion[q.ID]
		if qa == nil {
			qa = []Answer{}
		}
		views = append(views, QuestionView{Question: q, Answers: qa})
	}
	return views, nil
}

func (svc *service) questionView(ctx context.Context, q Question) (QuestionView, error) {
	views, err := svc.questionViews(ctx, []Question{q})
	if err != nil {
		return QuestionView{}, err
	}
	return views[0], nil
}

func (svc *service) CreateQuestion(ctx context.Context, p policy.Principal, nq NewQuestion) (QuestionView, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceQuestion); err != nil {
		return QuestionView{}, err
	}
	t, err := svc.repo.GetTest(ctx, nq.TestID)
	if err != nil {
		return QuestionView{}, invalidRef(err, "test")
	}
	if err := outOfScopeRef(p, policy.ResourceTest, t.OwnerID, "test"); err != nil {
		return QuestionView{}, err
	}
	q, err := svc.repo.CreateQuestion(ctx, Question{Text: nq.Text, TestID: nq.TestID, OwnerID: null.IntFrom(p.ID)})
	if err != nil {
		return QuestionView{}, errors.Wrap(err, "creating question")
	}
	return svc.questionView(ctx, q)
}

func (svc *service) QueryQuestions(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]QuestionView, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceQuestion); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceQuestion), TestID: testID}
	questions, count, err := svc.repo.QueryQuestions(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying questions")
	}
	views, err := svc.questionViews(ctx, questions)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (svc *service) getQuestion(ctx context.Context, p policy.Principal, a policy.Action, id int) (Question, error) {
	if err := authorize(p, a, policy.ResourceQuestion); err != nil {
		return Question{}, err
	}
	q, err := svc.repo.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	return q, inScope(p, policy.ResourceQuestion, q.OwnerID)
}

func (svc *service) GetQuestion(ctx context.Context, p policy.Principal, id int) (QuestionView, error) {
	q, err := svc.getQuestion(ctx, p, policy.ActionRetrieve, id)
	if err != nil {
		return QuestionView{}, err
	}
	return svc.questionView(ctx, q)
}

func (svc *service) UpdateQuestion(ctx context.Context, p policy.Principal, id int, uq UpdateQuestion) (QuestionView, error) {
	q, err := svc.getQuestion(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return QuestionView{}, err
	}
	if uq.TestID != nil && *uq.TestID != q.TestID {
		t, err := svc.repo.GetTest(ctx, *uq.TestID)
		if err != nil {
			return QuestionView{}, invalidRef(err, "test")
		}
		if err := outOfScopeRef(p, policy.ResourceTest, t.OwnerID, "test"); err != nil {
			return QuestionView{}, err
		}
	}
	if q, err = svc.repo.UpdateQuestion(ctx, uq.apply(q)); err != nil {
		return QuestionView{}, errors.Wrap(err, "updating question")
	}
	return svc.questionView(ctx, q)
}

func (svc *service) DeleteQuestion(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getQuestion(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteQuestion(ctx, id)
}

// Answers

func (svc *service) CreateAnswer(ctx context.Context, p policy.Principal, na NewAnswer) (Answer, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceAnswer); err != nil {
		return Answer{}, err
	}
	q, err := svc.repo.GetQuestion(ctx, na.QuestionID)
	if err != nil {
		return Answer{}, invalidRef(err, "question")
	}
	if err := outOfScopeRef(p, policy.ResourceQuestion, q.OwnerID, "question"); err != nil {
		return Answer{}, err
	}
	a, err := svc.repo.CreateAnswer(ctx, Answer{
		Text:       na.Text,
		IsCorrect:  na.IsCorrect,
		QuestionID: na.QuestionID,
		OwnerID:    null.IntFrom(p.ID),
	})
	return a, errors.Wrap(err, "creating answer")
}

func (svc *service) QueryAnswers(ctx context.Context, p policy.Principal, questionID int, opts core.ListOptions) ([]Answer, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceAnswer); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceAnswer)}
	if questionID > 0 {
		filter.QuestionIDs = []int{questionID}
	}
	answers, count, err := svc.repo.QueryAnswers(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying answers")
	}
	return answers, count, nil
}

func (svc *service) getAnswer(ctx context.Context, p policy.Principal, a policy.Action, id int) (Answer, error) {
	if err := authorize(p, a, policy.ResourceAnswer); err != nil {
		return Answer{}, err
	}
	ans, err := svc.repo.GetAnswer(ctx, id)
	if err != nil {
		return Answer{}, err
	}
	return ans, inScope(p, policy.ResourceAnswer, ans.OwnerID)
}

func (svc *service) GetAnswer(ctx context.Context, p policy.Principal, id int) (Answer, error) {
	return svc.getAnswer(ctx, p, policy.ActionRetrieve, id)
}

func (svc *service) UpdateAnswer(ctx context.Context, p policy.Principal, id int, ua UpdateAnswer) (Answer, error) {
	ans, err := svc.getAnswer(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return Answer{}, err
	}
	if ua.QuestionID != nil && *ua.QuestionID != ans.QuestionID {
		q, err := svc.repo.GetQuestion(ctx, *ua.QuestionID)
		if err != nil {
			return Answer{}, invalidRef(err, "question")
		}
		if err := outOfScopeRef(p, policy.ResourceQuestion, q.OwnerID, "question"); err != nil {
			return Answer{}, err
		}
	}
	ans, err = svc.repo.UpdateAnswer(ctx, ua.apply(ans))
	return ans, errors.Wrap(err, "updating answer")
}

func (svc *service) DeleteAnswer(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getAnswer(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteAnswer(ctx, id)
}

// Student answers

// SubmitAnswer records the principal's answer to a question.
func (svc *service) SubmitAnswer(ctx context.Context, p policy.Principal, nsa NewStudentAnswer) (StudentAnswer, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceStudentAnswer); err != nil {
		return StudentAnswer{}, err
	}
	q, err := svc.repo.GetQuestion(ctx, nsa.QuestionID)
	if err != nil {
		return StudentAnswer{}, invalidRef(err, "question")
	}
	ans, err := svc.repo.GetAnswer(ctx, nsa.AnswerID)
	if err != nil {
		return StudentAnswer{}, invalidRef(err, "answer")
	}
	if ans.QuestionID != q.ID {
		return StudentAnswer{}, core.NewFieldError("answer", msgAnswerMismatch)
	}

	sa, err := svc.repo.CreateStudentAnswer(ctx, StudentAnswer{
		StudentID:  p.ID,
		QuestionID: q.ID,
		AnswerID:   ans.ID,
		IsCorrect:  ans.IsCorrect,
		CreatedAt:  svc.nowFunc().UTC(),
	})
	return sa, errors.Wrap(err, "creating student answer")
}

func (svc *service) QueryStudentAnswers(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]StudentAnswer, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceStudentAnswer); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceStudentAnswer), TestID: testID}
	answers, count, err := svc.repo.QueryStudentAnswers(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying student answers")
	}
	return answers, count, nil
}

// Results

// scoreAttempt grades the student's answers to the test. Missing rows count as zero.
func (svc *service) scoreAttempt(ctx context.Context, studentID, testID int) (TestResult, error) {
	countQuestions, err := svc.repo.CountQuestions(ctx, testID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return TestResult{}, errors.Wrap(err, "counting questions")
	}
	countRight, err := svc.repo.CountRightAnswers(ctx, studentID, testID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return TestResult{}, errors.Wrap(err, "counting right answers")
	}
	if countRight > countQuestions {
		countRight = countQuestions
	}

	_, grade := Score(countQuestions, countRight)
	return TestResult{
		StudentID:         studentID,
		TestID:            testID,
		CountQuestions:    countQuestions,
		CountRightAnswers: countRight,
		Score:             grade,
		CompletedAt:       svc.nowFunc().UTC(),
	}, nil
}

// CreateResult completes the principal's attempt at a test: the attempt is graded, then written once.
func (svc *service) CreateResult(ctx context.Context, p policy.Principal, ntr NewTestResult) (TestResultView, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceTestResult); err != nil {
		return TestResultView{}, err
	}
	if _, err := svc.repo.GetTest(ctx, ntr.TestID); err != nil {
		return TestResultView{}, invalidRef(err, "test")
	}

	result, err := svc.scoreAttempt(ctx, p.ID, ntr.TestID)
	if err != nil {
		return TestResultView{}, err
	}
	if result, err = svc.repo.CreateTestResult(ctx, result); err != nil {
		if errors.Cause(err) == ErrResultExists {
			return TestResultView{}, core.NewFieldError("test", ErrResultExists.Error())
		}
		return TestResultView{}, errors.Wrap(err, "creating test result")
	}
	return svc.resultView(ctx, result)
}

func (svc *service) resultView(ctx context.Context, r TestResult) (TestResultView, error) {
	filter := Filter{Scope: scopeAll, TestID: r.TestID, StudentID: r.StudentID}
	answers, _, err := svc.repo.QueryStudentAnswers(ctx, filter, core.ListOptions{})
	if err != nil {
		return TestResultView{}, errors.Wrap(err, "querying student answers")
	}
	return TestResultView{TestResult: r, StudentAnswers: answers}, nil
}

func (svc *service) QueryResults(ctx context.Context, p policy.Principal, testID int, opts core.ListOptions) ([]TestResult, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceTestResult); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceTestResult), TestID: testID}
	results, count, err := svc.repo.QueryTestResults(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying test results")
	}
	return results, count, nil
}

// GetResult returns a result to an admin, the attempting student or the owner of the test.
func (svc *service) GetResult(ctx context.Context, p policy.Principal, id int) (TestResultView, error) {
	if err := authorize(p, policy.ActionRetrieve, policy.ResourceTestResult); err != nil {
		return TestResultView{}, err
	}
	r, err := svc.repo.GetTestResult(ctx, id)
	if err != nil {
		return TestResultView{}, err
	}
	t, err := svc.repo.GetTest(ctx, r.TestID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return TestResultView{}, errors.Wrap(err, "getting test")
	}

	facts := policy.Facts{StudentID: r.StudentID, OwnerID: t.OwnerID.Int}
	if err := policy.EvaluateObject(p, policy.ActionRetrieve, policy.ResourceTestResult, facts).Err(); err != nil {
		return TestResultView{}, err
	}
	return svc.resultView(ctx, r)
}
