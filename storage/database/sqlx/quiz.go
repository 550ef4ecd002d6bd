package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
)

const (
	testColumns          = "id, title, description, course_id, module_id, lesson_id, owner_id, created_at"
	studentAnswerColumns = "sa.id, sa.student_id, sa.question_id, sa.answer_id, a.is_correct, sa.created_at"
	studentAnswerFrom    = "student_answer sa JOIN answer a ON a.id = sa.answer_id JOIN question q ON q.id = sa.question_id"
	testResultColumns    = "id, student_id, test_id, count_questions, count_right_answers, score, completed_at"
)

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

// Tests

func (repo quizRepository) CreateTest(ctx context.Context, t quiz.Test) (quiz.Test, error) {
	q := `INSERT INTO test (title, description, course_id, module_id, lesson_id, owner_id, created_at)
		VALUES (:title, :description, :course_id, :module_id, :lesson_id, :owner_id, :created_at) RETURNING id`
	id, err := insert(ctx, repo.db, q, t)
	if err != nil {
		return quiz.Test{}, trapFKErr(err, quiz.ErrNotFound, "inserting test")
	}
	t.ID = id
	return t, nil
}

func (repo quizRepository) QueryTests(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Test, int, error) {
	w := new(where)
	w.scope(filter.Scope, "owner_id", "")

	tests := make([]quiz.Test, 0)
	count, err := list(ctx, repo.db, &tests, testColumns, "test", w, opts,
		map[string]string{"id": "id", "title": "title", "created_at": "created_at"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying tests")
	}
	return tests, count, nil
}

func (repo quizRepository) GetTest(ctx context.Context, id int) (quiz.Test, error) {
	var t quiz.Test
	if err := repo.db.GetContext(ctx, &t, repo.db.Rebind("SELECT "+testColumns+" FROM test WHERE id = ?"), id); err != nil {
		return quiz.Test{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting test")
	}
	return t, nil
}

func (repo quizRepository) UpdateTest(ctx context.Context, t quiz.Test) (quiz.Test, error) {
	q := `UPDATE test SET title = :title, description = :description, course_id = :course_id, module_id = :module_id,
			lesson_id = :lesson_id, owner_id = :owner_id
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, t)
	if err = checkAffected(res, err, quiz.ErrNotFound, "updating test"); err != nil {
		return quiz.Test{}, err
	}
	return t, nil
}

func (repo quizRepository) DeleteTest(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM test WHERE id = ?"), id)
	return checkAffected(res, err, quiz.ErrNotFound, "deleting test")
}

// Questions

func (repo quizRepository) CreateQuestion(ctx context.Context, qn quiz.Question) (quiz.Question, error) {
	q := `INSERT INTO question (text, test_id, owner_id) VALUES (:text, :test_id, :owner_id) RETURNING id`
	id, err := insert(ctx, repo.db, q, qn)
	if err != nil {
		return quiz.Question{}, trapFKErr(err, quiz.ErrNotFound, "inserting question")
	}
	qn.ID = id
	return qn, nil
}

func (repo quizRepository) QueryQuestions(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Question, int, error) {
	w := new(where)
	if filter.TestID != 0 {
		w.add("test_id = ?", filter.TestID)
	}
	w.scope(filter.Scope, "owner_id", "")

	questions := make([]quiz.Question, 0)
	count, err := list(ctx, repo.db, &questions, "id, text, test_id, owner_id", "question", w, opts,
		map[string]string{"id": "id"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying questions")
	}
	return questions, count, nil
}

func (repo quizRepository) GetQuestion(ctx context.Context, id int) (quiz.Question, error) {
	var qn quiz.Question
	q := repo.db.Rebind("SELECT id, text, test_id, owner_id FROM question WHERE id = ?")
	if err := repo.db.GetContext(ctx, &qn, q, id); err != nil {
		return quiz.Question{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting question")
	}
	return qn, nil
}

func (repo quizRepository) UpdateQuestion(ctx context.Context, qn quiz.Question) (quiz.Question, error) {
	q := `UPDATE question SET text = :text, test_id = :test_id, owner_id = :owner_id WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, qn)
	if err = checkAffected(res, err, quiz.ErrNotFound, "updating question"); err != nil {
		return quiz.Question{}, err
	}
	return qn, nil
}

func (repo quizRepository) DeleteQuestion(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM question WHERE id = ?"), id)
	return checkAffected(res, err, quiz.ErrNotFound, "deleting question")
}

// Answers

func (repo quizRepository) CreateAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	q := `INSERT INTO answer (text, is_correct, question_id, owner_id)
		VALUES (:text, :is_correct, :question_id, :owner_id) RETURNING id`
	id, err := insert(ctx, repo.db, q, a)
	if err != nil {
		return quiz.Answer{}, trapFKErr(err, quiz.ErrNotFound, "inserting answer")
	}
	a.ID = id
	return a, nil
}

func (repo quizRepository) QueryAnswers(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Answer, int, error) {
	w := new(where)
	if len(filter.QuestionIDs) > 0 {
		cond, args, err := sqlx.In("question_id IN (?)", filter.QuestionIDs)
		if err != nil {
			return nil, 0, errors.Wrap(err, "filtering questions")
		}
		w.add(cond, args...)
	}
	w.scope(filter.Scope, "owner_id", "")

	answers := make([]quiz.Answer, 0)
	count, err := list(ctx, repo.db, &answers, "id, text, is_correct, question_id, owner_id", "answer", w, opts,
		map[string]string{"id": "id"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying answers")
	}
	return answers, count, nil
}

func (repo quizRepository) GetAnswer(ctx context.Context, id int) (quiz.Answer, error) {
	var a quiz.Answer
	q := repo.db.Rebind("SELECT id, text, is_correct, question_id, owner_id FROM answer WHERE id = ?")
	if err := repo.db.GetContext(ctx, &a, q, id); err != nil {
		return quiz.Answer{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting answer")
	}
	return a, nil
}

func (repo quizRepository) UpdateAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	q := `UPDATE answer SET text = :text, is_correct = :is_correct, question_id = :question_id, owner_id = :owner_id
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, a)
	if err = checkAffected(res, err, quiz.ErrNotFound, "updating answer"); err != nil {
		return quiz.Answer{}, err
	}
	return a, nil
}

func (repo quizRepository) DeleteAnswer(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM answer WHERE id = ?"), id)
	return checkAffected(res, err, quiz.ErrNotFound, "deleting answer")
}

// Student answers

func (repo quizRepository) CreateStudentAnswer(ctx context.Context, sa quiz.StudentAnswer) (quiz.StudentAnswer, error) {
	q := `INSERT INTO student_answer (student_id, question_id, answer_id, created_at)
		VALUES (:student_id, :question_id, :answer_id, :created_at) RETURNING id`
	id, err := insert(ctx, repo.db, q, sa)
	if err != nil {
		return quiz.StudentAnswer{}, trapFKErr(err, quiz.ErrNotFound, "inserting student answer")
	}

	var created quiz.StudentAnswer
	sel := repo.db.Rebind("SELECT " + studentAnswerColumns + " FROM " + studentAnswerFrom + " WHERE sa.id = ?")
	if err = repo.db.GetContext(ctx, &created, sel, id); err != nil {
		return quiz.StudentAnswer{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting student answer")
	}
	return created, nil
}

func (repo quizRepository) QueryStudentAnswers(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.StudentAnswer, int, error) {
	w := new(where)
	if filter.TestID != 0 {
		w.add("q.test_id = ?", filter.TestID)
	}
	if filter.StudentID != 0 {
		w.add("sa.student_id = ?", filter.StudentID)
	}
	w.scope(filter.Scope, "(SELECT t.owner_id FROM test t WHERE t.id = q.test_id)", "sa.student_id")

	answers := make([]quiz.StudentAnswer, 0)
	count, err := list(ctx, repo.db, &answers, studentAnswerColumns, studentAnswerFrom, w, opts,
		map[string]string{"id": "sa.id", "created_at": "sa.created_at"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying student answers")
	}
	return answers, count, nil
}

// Scoring

func (repo quizRepository) CountQuestions(ctx context.Context, testID int) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind("SELECT COUNT(*) FROM question WHERE test_id = ?"), testID); err != nil {
		return 0, errors.Wrap(err, "counting questions")
	}
	return count, nil
}

func (repo quizRepository) CountRightAnswers(ctx context.Context, studentID, testID int) (int, error) {
	var count int
	q := repo.db.Rebind(`SELECT COUNT(DISTINCT sa.question_id) FROM ` + studentAnswerFrom + `
		WHERE sa.student_id = ? AND q.test_id = ? AND a.is_correct`)
	if err := repo.db.GetContext(ctx, &count, q, studentID, testID); err != nil {
		return 0, errors.Wrap(err, "counting right answers")
	}
	return count, nil
}

// Results

func (repo quizRepository) CreateTestResult(ctx context.Context, r quiz.TestResult) (quiz.TestResult, error) {
	q := `INSERT INTO test_result (student_id, test_id, count_questions, count_right_answers, score, completed_at)
		VALUES (:student_id, :test_id, :count_questions, :count_right_answers, :score, :completed_at) RETURNING id`
	id, err := insert(ctx, repo.db, q, r)
	if err != nil {
		if code, constraint := pqError(err); code == uniqueViolation && constraint == "test_result_student_test_key" {
			return quiz.TestResult{}, quiz.ErrResultExists
		}
		return quiz.TestResult{}, trapFKErr(err, quiz.ErrNotFound, "inserting test result")
	}
	r.ID = id
	return r, nil
}

func (repo quizRepository) QueryTestResults(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.TestResult, int, error) {
	w := new(where)
	if filter.TestID != 0 {
		w.add("test_id = ?", filter.TestID)
	}
	if filter.StudentID != 0 {
		w.add("student_id = ?", filter.StudentID)
	}
	w.scope(filter.Scope, "(SELECT t.owner_id FROM test t WHERE t.id = test_result.test_id)", "student_id")

	results := make([]quiz.TestResult, 0)
	count, err := list(ctx, repo.db, &results, testResultColumns, "test_result", w, opts,
		map[string]string{"id": "id", "score": "score", "completed_at": "completed_at"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying test results")
	}
	return results, count, nil
}

func (repo quizRepository) GetTestResult(ctx context.Context, id int) (quiz.TestResult, error) {
	var r quiz.TestResult
	q := repo.db.Rebind("SELECT " + testResultColumns + " FROM test_result WHERE id = ?")
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return quiz.TestResult{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting test result")
	}
	return r, nil
}
