package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
)

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) *materialRepository {
	return &materialRepository{db: db}
}

var contentOrderColumns = map[string]string{
	"id":    "id",
	"title": "title",
}

// Courses

func (repo materialRepository) CreateCourse(ctx context.Context, c material.Course) (material.Course, error) {
	q := `INSERT INTO course (title, description, owner_id) VALUES (:title, :description, :owner_id) RETURNING id`
	id, err := insert(ctx, repo.db, q, c)
	if err != nil {
		return material.Course{}, errors.Wrap(err, "inserting course")
	}
	c.ID = id
	return c, nil
}

func (repo materialRepository) QueryCourses(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Course, int, error) {
	w := new(where)
	w.scope(filter.Scope, "owner_id", "")

	courses := make([]material.Course, 0)
	count, err := list(ctx, repo.db, &courses, "id, title, description, owner_id", "course", w, opts, contentOrderColumns)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying courses")
	}
	return courses, count, nil
}

func (repo materialRepository) GetCourse(ctx context.Context, id int) (material.Course, error) {
	var c material.Course
	q := repo.db.Rebind("SELECT id, title, description, owner_id FROM course WHERE id = ?")
	if err := repo.db.GetContext(ctx, &c, q, id); err != nil {
		return material.Course{}, trapNoRowsErr(err, material.ErrNotFound, "getting course")
	}
	return c, nil
}

func (repo materialRepository) UpdateCourse(ctx context.Context, c material.Course) (material.Course, error) {
	q := `UPDATE course SET title = :title, description = :description, owner_id = :owner_id WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, c)
	if err = checkAffected(res, err, material.ErrNotFound, "updating course"); err != nil {
		return material.Course{}, err
	}
	return c, nil
}

func (repo materialRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM course WHERE id = ?"), id)
	return checkAffected(res, err, material.ErrNotFound, "deleting course")
}

// Modules

func (repo materialRepository) CreateModule(ctx context.Context, m material.Module) (material.Module, error) {
	q := `INSERT INTO module (title, description, course_id, owner_id)
		VALUES (:title, :description, :course_id, :owner_id) RETURNING id`
	id, err := insert(ctx, repo.db, q, m)
	if err != nil {
		return material.Module{}, trapFKErr(err, material.ErrNotFound, "inserting module")
	}
	m.ID = id
	return m, nil
}

func (repo materialRepository) QueryModules(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Module, int, error) {
	w := new(where)
	if filter.CourseID != 0 {
		w.add("course_id = ?", filter.CourseID)
	}
	w.scope(filter.Scope, "owner_id", "")

	modules := make([]material.Module, 0)
	count, err := list(ctx, repo.db, &modules, "id, title, description, course_id, owner_id", "module", w, opts, contentOrderColumns)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying modules")
	}
	return modules, count, nil
}

func (repo materialRepository) GetModule(ctx context.Context, id int) (material.Module, error) {
	var m material.Module
	q := repo.db.Rebind("SELECT id, title, description, course_id, owner_id FROM module WHERE id = ?")
	if err := repo.db.GetContext(ctx, &m, q, id); err != nil {
		return material.Module{}, trapNoRowsErr(err, material.ErrNotFound, "getting module")
	}
	return m, nil
}

func (repo materialRepository) UpdateModule(ctx context.Context, m material.Module) (material.Module, error) {
	q := `UPDATE module SET title = :title, description = :description, course_id = :course_id, owner_id = :owner_id
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, m)
	if err = checkAffected(res, err, material.ErrNotFound, "updating module"); err != nil {
		return material.Module{}, err
	}
	return m, nil
}

func (repo materialRepository) DeleteModule(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM module WHERE id = ?"), id)
	return checkAffected(res, err, material.ErrNotFound, "deleting module")
}

// Lessons

const lessonColumns = "id, title, description, image, video, module_id, owner_id"

func (repo materialRepository) CreateLesson(ctx context.Context, l material.Lesson) (material.Lesson, error) {
	q := `INSERT INTO lesson (title, description, image, video, module_id, owner_id)
		VALUES (:title, :description, :image, :video, :module_id, :owner_id) RETURNING id`
	id, err := insert(ctx, repo.db, q, l)
	if err != nil {
		return material.Lesson{}, trapFKErr(err, material.ErrNotFound, "inserting lesson")
	}
	l.ID = id
	return l, nil
}

func (repo materialRepository) QueryLessons(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Lesson, int, error) {
	w := new(where)
	if filter.ModuleID != 0 {
		w.add("module_id = ?", filter.ModuleID)
	}
	w.scope(filter.Scope, "owner_id", "")

	lessons := make([]material.Lesson, 0)
	count, err := list(ctx, repo.db, &lessons, lessonColumns, "lesson", w, opts, contentOrderColumns)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying lessons")
	}
	return lessons, count, nil
}

func (repo materialRepository) GetLesson(ctx context.Context, id int) (material.Lesson, error) {
	var l material.Lesson
	q := repo.db.Rebind("SELECT " + lessonColumns + " FROM lesson WHERE id = ?")
	if err := repo.db.GetContext(ctx, &l, q, id); err != nil {
		return material.Lesson{}, trapNoRowsErr(err, material.ErrNotFound, "getting lesson")
	}
	return l, nil
}

func (repo materialRepository) UpdateLesson(ctx context.Context, l material.Lesson) (material.Lesson, error) {
	q := `UPDATE lesson SET title = :title, description = :description, image = :image, video = :video,
			module_id = :module_id, owner_id = :owner_id
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, l)
	if err = checkAffected(res, err, material.ErrNotFound, "updating lesson"); err != nil {
		return material.Lesson{}, err
	}
	return l, nil
}

func (repo materialRepository) DeleteLesson(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM lesson WHERE id = ?"), id)
	return checkAffected(res, err, material.ErrNotFound, "deleting lesson")
}

func (repo materialRepository) CountLessons(ctx context.Context, moduleIDs ...int) (map[int]int, error) {
	counts := make(map[int]int, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return counts, nil
	}
	for _, id := range moduleIDs {
		counts[id] = 0
	}

	q, args, err := sqlx.In("SELECT module_id, COUNT(*) FROM lesson WHERE module_id IN (?) GROUP BY module_id", moduleIDs)
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons")
	}
	rows, err := repo.db.QueryxContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var moduleID, count int
		if err = rows.Scan(&moduleID, &count); err != nil {
			return nil, errors.Wrap(err, "counting lessons")
		}
		counts[moduleID] = count
	}
	return counts, errors.Wrap(rows.Err(), "counting lessons")
}

// Enrollments

// ToggleEnrollment locks the course row, so concurrent toggles on a course are serialized.
func (repo materialRepository) ToggleEnrollment(ctx context.Context, studentID, courseID int) (enrolled bool, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int
	if err = tx.GetContext(ctx, &id, tx.Rebind("SELECT id FROM course WHERE id = ? FOR UPDATE"), courseID); err != nil {
		return false, trapNoRowsErr(err, material.ErrNotFound, "locking course")
	}

	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM enrollment WHERE student_id = ? AND course_id = ?"), studentID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "deleting enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting enrollment")
	}

	if n == 0 {
		q := `INSERT INTO enrollment (student_id, course_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT (student_id, course_id) DO NOTHING`
		if _, err = tx.ExecContext(ctx, tx.Rebind(q), studentID, courseID, time.Now().UTC()); err != nil {
			return false, trapFKErr(err, material.ErrNotFound, "inserting enrollment")
		}
		enrolled = true
	}

	if err = tx.Commit(); err != nil {
		return false, errors.Wrap(err, "committing enrollment")
	}
	return enrolled, nil
}

func (repo materialRepository) QueryEnrollments(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Enrollment, int, error) {
	w := new(where)
	if filter.CourseID != 0 {
		w.add("course_id = ?", filter.CourseID)
	}
	w.scope(filter.Scope, "(SELECT c.owner_id FROM course c WHERE c.id = enrollment.course_id)", "student_id")

	enrollments := make([]material.Enrollment, 0)
	count, err := list(ctx, repo.db, &enrollments, "id, student_id, course_id, created_at", "enrollment", w, opts,
		map[string]string{"id": "id", "created_at": "created_at"})
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, count, nil
}

func (repo materialRepository) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	var enrolled bool
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = ? AND course_id = ?)")
	if err := repo.db.GetContext(ctx, &enrolled, q, studentID, courseID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}
