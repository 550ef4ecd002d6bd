package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
)

type (
	Test struct {
		ID          int       `json:"id" db:"id"`
		Title       string    `json:"title" db:"title"`
		Description string    `json:"description" db:"description"`
		CourseID    null.Int  `json:"course" db:"course_id"`
		ModuleID    null.Int  `json:"module" db:"module_id"`
		LessonID    null.Int  `json:"lesson" db:"lesson_id"`
		OwnerID     null.Int  `json:"owner" db:"owner_id"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	}

	Question struct {
		ID      int      `json:"id" db:"id"`
		Text    string   `json:"text" db:"text"`
		TestID  int      `json:"test" db:"test_id"`
		OwnerID null.Int `json:"owner" db:"owner_id"`
	}

	Answer struct {
		ID         int      `json:"id" db:"id"`
		Text       string   `json:"text" db:"text"`
		IsCorrect  bool     `json:"is_correct" db:"is_correct"`
		QuestionID int      `json:"question" db:"question_id"`
		OwnerID    null.Int `json:"owner" db:"owner_id"`
	}

	StudentAnswer struct {
		ID         int       `json:"id" db:"id"`
		StudentID  int       `json:"student" db:"student_id"`
		QuestionID int       `json:"question" db:"question_id"`
		AnswerID   int       `json:"answer" db:"answer_id"`
		IsCorrect  bool      `json:"is_correct" db:"is_correct"` // derived from the answer
		CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
	}

	// TestResult is one student's graded attempt at a test. It is written once.
	TestResult struct {
		ID                int       `json:"id" db:"id"`
		StudentID         int       `json:"student" db:"student_id"`
		TestID            int       `json:"test" db:"test_id"`
		CountQuestions    int       `json:"count_questions" db:"count_questions"`
		CountRightAnswers int       `json:"count_right_answers" db:"count_right_answers"`
		Score             Grade     `json:"score" db:"score"`
		CompletedAt       time.Time `json:"completed_at" db:"completed_at"` // UTC
	}
)

type (
	QuestionView struct {
		Question
		Answers []Answer `json:"answers"`
	}

	TestView struct {
		Test
		Questions []QuestionView `json:"questions"`
	}

	TestResultView struct {
		TestResult
		StudentAnswers []StudentAnswer `json:"student_answers"`
	}
)

// Filter narrows list queries. Zero fields are ignored.
type Filter struct {
	Scope       policy.Scope
	TestID      int
	QuestionIDs []int
	StudentID   int
}

// NewTest contains information needed to create a new Test.
type NewTest struct {
	Title       string   `json:"title" validate:"required,notblank,max=255,noforbidden"`
	Description string   `json:"description" validate:"noforbidden"`
	CourseID    null.Int `json:"course"`
	ModuleID    null.Int `json:"module"`
	LessonID    null.Int `json:"lesson"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

func (nt NewTest) Update() UpdateTest {
	return UpdateTest{
		Title:       &nt.Title,
		Description: &nt.Description,
		CourseID:    &nt.CourseID,
		ModuleID:    &nt.ModuleID,
		LessonID:    &nt.LessonID,
	}
}

// UpdateTest defines what information may be provided to modify an existing Test.
type UpdateTest struct {
	Title       *string   `json:"title" validate:"omitempty,notblank,max=255,noforbidden"`
	Description *string   `json:"description" validate:"omitempty,noforbidden"`
	CourseID    *null.Int `json:"course"`
	ModuleID    *null.Int `json:"module"`
	LessonID    *null.Int `json:"lesson"`
}

func (ut *UpdateTest) Validate(validate *validator.Validate) error {
	cleanPtr(ut.Title)
	cleanPtr(ut.Description)
	return validate.Struct(ut)
}

func (ut UpdateTest) apply(t Test) Test {
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.CourseID != nil {
		t.CourseID = *ut.CourseID
	}
	if ut.ModuleID != nil {
		t.ModuleID = *ut.ModuleID
	}
	if ut.LessonID != nil {
		t.LessonID = *ut.LessonID
	}
	return t
}

// NewQuestion contains information needed to create a new Question.
type NewQuestion struct {
	Text   string `json:"text" validate:"required,notblank,noforbidden"`
	TestID int    `json:"test" validate:"required"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	return validate.Struct(nq)
}

func (nq NewQuestion) Update() UpdateQuestion {
	return UpdateQuestion{Text: &nq.Text, TestID: &nq.TestID}
}

type UpdateQuestion struct {
	Text   *string `json:"text" validate:"omitempty,notblank,noforbidden"`
	TestID *int    `json:"test" validate:"omitempty,min=1"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	cleanPtr(uq.Text)
	return validate.Struct(uq)
}

func (uq UpdateQuestion) apply(q Question) Question {
	if uq.Text != nil {
		q.Text = *uq.Text
	}
	if uq.TestID != nil {
		q.TestID = *uq.TestID
	}
	return q
}

// NewAnswer contains information needed to create a new Answer.
type NewAnswer struct {
	Text       string `json:"text" validate:"required,notblank,max=255,noforbidden"`
	IsCorrect  bool   `json:"is_correct"`
	QuestionID int    `json:"question" validate:"required"`
}

func (na *NewAnswer) Validate(validate *validator.Validate) error {
	na.Text = core.CleanString(na.Text)
	return validate.Struct(na)
}

func (na NewAnswer) Update() UpdateAnswer {
	return UpdateAnswer{Text: &na.Text, IsCorrect: &na.IsCorrect, QuestionID: &na.QuestionID}
}

type UpdateAnswer struct {
	Text       *string `json:"text" validate:"omitempty,notblank,max=255,noforbidden"`
	IsCorrect  *bool   `json:"is_correct"`
	QuestionID *int    `json:"question" validate:"omitempty,min=1"`
}

func (ua *UpdateAnswer) Validate(validate *validator.Validate) error {
	cleanPtr(ua.Text)
	return validate.Struct(ua)
}

func (ua UpdateAnswer) apply(a Answer) Answer {
	if ua.Text != nil {
		a.Text = *ua.Text
	}
	if ua.IsCorrect != nil {
		a.IsCorrect = *ua.IsCorrect
	}
	if ua.QuestionID != nil {
		a.QuestionID = *ua.QuestionID
	}
	return a
}

// NewStudentAnswer records the principal's answer to a question; the student is never client-supplied.
type NewStudentAnswer struct {
	QuestionID int `json:"question" validate:"required"`
	AnswerID   int `json:"answer" validate:"required"`
}

func (nsa *NewStudentAnswer) Validate(validate *validator.Validate) error {
	return validate.Struct(nsa)
}

// NewTestResult completes a test attempt. Counts, score and student are computed server side.
type NewTestResult struct {
	TestID int `json:"test" validate:"required"`
}

func (ntr *NewTestResult) Validate(validate *validator.Validate) error {
	return validate.Struct(ntr)
}

func cleanPtr(s *string) {
	if s != nil {
		*s = core.CleanString(*s)
	}
}
