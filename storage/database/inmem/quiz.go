package inmemdb

import (
	"context"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

// Tests

func (repo *quizRepository) CreateTest(ctx context.Context, t quiz.Test) (quiz.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = repo.db.nextID("test")
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *quizRepository) QueryTests(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Test, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tests := make([]quiz.Test, 0, len(repo.db.tests))
	for _, t := range repo.db.tests {
		if filter.Scope.Permits(nullInt(t.OwnerID), 0) {
			tests = append(tests, *t)
		}
	}
	start, end := sortAndPage(tests, len(tests), comparators{
		"id":    func(i, j int) int { return cmpInt(tests[i].ID, tests[j].ID) },
		"title": func(i, j int) int { return cmpStr(tests[i].Title, tests[j].Title) },
		"created_at": func(i, j int) int {
			return cmpInt(int(tests[i].CreatedAt.Sub(tests[j].CreatedAt)), 0)
		},
	}, opts)
	return tests[start:end], len(tests), nil
}

func (repo *quizRepository) GetTest(ctx context.Context, id int) (quiz.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tests[id]; ok {
		return *t, nil
	}
	return quiz.Test{}, quiz.ErrNotFound
}

func (repo *quizRepository) UpdateTest(ctx context.Context, t quiz.Test) (quiz.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[t.ID]; !ok {
		return quiz.Test{}, quiz.ErrNotFound
	}
	repo.db.tests[t.ID] = &t
	return t, nil
}

// DeleteTest cascades to the test questions and results.
func (repo *quizRepository) DeleteTest(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[id]; !ok {
		return quiz.ErrNotFound
	}
	delete(repo.db.tests, id)
	for qid, q := range repo.db.questions {
		if q.TestID == id {
			repo.db.deleteQuestion(qid)
		}
	}
	for rid, r := range repo.db.testResults {
		if r.TestID == id {
			delete(repo.db.testResults, rid)
		}
	}
	return nil
}

// Questions

func (repo *quizRepository) CreateQuestion(ctx context.Context, q quiz.Question) (quiz.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[q.TestID]; !ok {
		return quiz.Question{}, quiz.ErrNotFound
	}
	q.ID = repo.db.nextID("question")
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *quizRepository) QueryQuestions(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Question, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	questions := make([]quiz.Question, 0)
	for _, q := range repo.db.questions {
		if filter.TestID != 0 && q.TestID != filter.TestID {
			continue
		}
		if filter.Scope.Permits(nullInt(q.OwnerID), 0) {
			questions = append(questions, *q)
		}
	}
	start, end := sortAndPage(questions, len(questions), comparators{
		"id": func(i, j int) int { return cmpInt(questions[i].ID, questions[j].ID) },
	}, opts)
	return questions[start:end], len(questions), nil
}

func (repo *quizRepository) GetQuestion(ctx context.Context, id int) (quiz.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return quiz.Question{}, quiz.ErrNotFound
}

func (repo *quizRepository) UpdateQuestion(ctx context.Context, q quiz.Question) (quiz.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[q.ID]; !ok {
		return quiz.Question{}, quiz.ErrNotFound
	}
	if _, ok := repo.db.tests[q.TestID]; !ok {
		return quiz.Question{}, quiz.ErrNotFound
	}
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *quizRepository) DeleteQuestion(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[id]; !ok {
		return quiz.ErrNotFound
	}
	repo.db.deleteQuestion(id)
	return nil
}

// deleteQuestion cascades to answers and student answers. Must be called with the write lock held.
func (db *DB) deleteQuestion(id int) {
	delete(db.questions, id)
	for aid, a := range db.answers {
		if a.QuestionID == id {
			db.deleteAnswer(aid)
		}
	}
	for said, sa := range db.studentAnswers {
		if sa.QuestionID == id {
			delete(db.studentAnswers, said)
		}
	}
}

// Answers

func (repo *quizRepository) CreateAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[a.QuestionID]; !ok {
		return quiz.Answer{}, quiz.ErrNotFound
	}
	a.ID = repo.db.nextID("answer")
	repo.db.answers[a.ID] = &a
	return a, nil
}

func (repo *quizRepository) QueryAnswers(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.Answer, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var questions map[int]bool
	if len(filter.QuestionIDs) > 0 {
		questions = make(map[int]bool, len(filter.QuestionIDs))
		for _, id := range filter.QuestionIDs {
			questions[id] = true
		}
	}

	answers := make([]quiz.Answer, 0)
	for _, a := range repo.db.answers {
		if questions != nil && !questions[a.QuestionID] {
			continue
		}
		if filter.Scope.Permits(nullInt(a.OwnerID), 0) {
			answers = append(answers, *a)
		}
	}
	start, end := sortAndPage(answers, len(answers), comparators{
		"id": func(i, j int) int { return cmpInt(answers[i].ID, answers[j].ID) },
	}, opts)
	return answers[start:end], len(answers), nil
}

func (repo *quizRepository) GetAnswer(ctx context.Context, id int) (quiz.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.answers[id]; ok {
		return *a, nil
	}
	return quiz.Answer{}, quiz.ErrNotFound
}

func (repo *quizRepository) UpdateAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.answers[a.ID]; !ok {
		return quiz.Answer{}, quiz.ErrNotFound
	}
	if _, ok := repo.db.questions[a.QuestionID]; !ok {
		return quiz.Answer{}, quiz.ErrNotFound
	}
	repo.db.answers[a.ID] = &a
	return a, nil
}

func (repo *quizRepository) DeleteAnswer(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.answers[id]; !ok {
		return quiz.ErrNotFound
	}
	repo.db.deleteAnswer(id)
	return nil
}

// deleteAnswer must be called with the write lock held.
func (db *DB) deleteAnswer(id int) {
	delete(db.answers, id)
	for said, sa := range db.studentAnswers {
		if sa.AnswerID == id {
			delete(db.studentAnswers, said)
		}
	}
}

// Student answers

// studentAnswer returns the row with its correctness derived from the chosen answer.
// Must be called with the lock held.
func (db *DB) studentAnswer(sa *quiz.StudentAnswer) quiz.StudentAnswer {
	row := *sa
	row.IsCorrect = false
	if a, ok := db.answers[sa.AnswerID]; ok {
		row.IsCorrect = a.IsCorrect
	}
	return row
}

// testOwner returns the owner of the test, or 0. Must be called with the lock held.
func (db *DB) testOwner(testID int) int {
	if t, ok := db.tests[testID]; ok {
		return nullInt(t.OwnerID)
	}
	return 0
}

// questionTest returns the test of the question, or 0. Must be called with the lock held.
func (db *DB) questionTest(questionID int) int {
	if q, ok := db.questions[questionID]; ok {
		return q.TestID
	}
	return 0
}

func (repo *quizRepository) CreateStudentAnswer(ctx context.Context, sa quiz.StudentAnswer) (quiz.StudentAnswer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[sa.QuestionID]; !ok {
		return quiz.StudentAnswer{}, quiz.ErrNotFound
	}
	if _, ok := repo.db.answers[sa.AnswerID]; !ok {
		return quiz.StudentAnswer{}, quiz.ErrNotFound
	}
	sa.ID = repo.db.nextID("student_answer")
	repo.db.studentAnswers[sa.ID] = &sa
	return repo.db.studentAnswer(&sa), nil
}

func (repo *quizRepository) QueryStudentAnswers(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.StudentAnswer, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	answers := make([]quiz.StudentAnswer, 0)
	for _, sa := range repo.db.studentAnswers {
		testID := repo.db.questionTest(sa.QuestionID)
		if filter.TestID != 0 && testID != filter.TestID {
			continue
		}
		if filter.StudentID != 0 && sa.StudentID != filter.StudentID {
			continue
		}
		if filter.Scope.Permits(repo.db.testOwner(testID), sa.StudentID) {
			answers = append(answers, repo.db.studentAnswer(sa))
		}
	}
	start, end := sortAndPage(answers, len(answers), comparators{
		"id": func(i, j int) int { return cmpInt(answers[i].ID, answers[j].ID) },
		"created_at": func(i, j int) int {
			return cmpInt(int(answers[i].CreatedAt.Sub(answers[j].CreatedAt)), 0)
		},
	}, opts)
	return answers[start:end], len(answers), nil
}

// Scoring

func (repo *quizRepository) CountQuestions(ctx context.Context, testID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, q := range repo.db.questions {
		if q.TestID == testID {
			count++
		}
	}
	return count, nil
}

func (repo *quizRepository) CountRightAnswers(ctx context.Context, studentID, testID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	right := make(map[int]bool)
	for _, sa := range repo.db.studentAnswers {
		if sa.StudentID != studentID || repo.db.questionTest(sa.QuestionID) != testID {
			continue
		}
		if repo.db.studentAnswer(sa).IsCorrect {
			right[sa.QuestionID] = true
		}
	}
	return len(right), nil
}

// Results

func (repo *quizRepository) CreateTestResult(ctx context.Context, r quiz.TestResult) (quiz.TestResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[r.TestID]; !ok {
		return quiz.TestResult{}, quiz.ErrNotFound
	}
	for _, existing := range repo.db.testResults {
		if existing.StudentID == r.StudentID && existing.TestID == r.TestID {
			return quiz.TestResult{}, quiz.ErrResultExists
		}
	}
	r.ID = repo.db.nextID("test_result")
	repo.db.testResults[r.ID] = &r
	return r, nil
}

func (repo *quizRepository) QueryTestResults(ctx context.Context, filter quiz.Filter, opts core.ListOptions) ([]quiz.TestResult, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]quiz.TestResult, 0)
	for _, r := range repo.db.testResults {
		if filter.TestID != 0 && r.TestID != filter.TestID {
			continue
		}
		if filter.StudentID != 0 && r.StudentID != filter.StudentID {
			continue
		}
		if filter.Scope.Permits(repo.db.testOwner(r.TestID), r.StudentID) {
			results = append(results, *r)
		}
	}
	start, end := sortAndPage(results, len(results), comparators{
		"id":    func(i, j int) int { return cmpInt(results[i].ID, results[j].ID) },
		"score": func(i, j int) int { return cmpStr(string(results[i].Score), string(results[j].Score)) },
		"completed_at": func(i, j int) int {
			return cmpInt(int(results[i].CompletedAt.Sub(results[j].CompletedAt)), 0)
		},
	}, opts)
	return results[start:end], len(results), nil
}

func (repo *quizRepository) GetTestResult(ctx context.Context, id int) (quiz.TestResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.testResults[id]; ok {
		return *r, nil
	}
	return quiz.TestResult{}, quiz.ErrNotFound
}
