package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
)

type materialRepository struct {
	db *DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) *materialRepository {
	return &materialRepository{db: db}
}

// Courses

func (repo *materialRepository) CreateCourse(ctx context.Context, c material.Course) (material.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextID("course")
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *materialRepository) QueryCourses(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Course, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]material.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		if filter.Scope.Permits(nullInt(c.OwnerID), 0) {
			courses = append(courses, *c)
		}
	}
	start, end := sortAndPage(courses, len(courses), comparators{
		"id":    func(i, j int) int { return cmpInt(courses[i].ID, courses[j].ID) },
		"title": func(i, j int) int { return cmpStr(courses[i].Title, courses[j].Title) },
	}, opts)
	return courses[start:end], len(courses), nil
}

func (repo *materialRepository) GetCourse(ctx context.Context, id int) (material.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return material.Course{}, material.ErrNotFound
}

func (repo *materialRepository) UpdateCourse(ctx context.Context, c material.Course) (material.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return material.Course{}, material.ErrNotFound
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

// DeleteCourse cascades to the course modules and enrollments. Tests of the course are detached.
func (repo *materialRepository) DeleteCourse(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return material.ErrNotFound
	}
	delete(repo.db.courses, id)

	for mid, m := range repo.db.modules {
		if m.CourseID == id {
			repo.db.deleteModule(mid)
		}
	}
	for eid, e := range repo.db.enrollments {
		if e.CourseID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	for _, t := range repo.db.tests {
		if t.CourseID.Valid && t.CourseID.Int == id {
			t.CourseID = null.Int{}
		}
	}
	return nil
}

// Modules

func (repo *materialRepository) CreateModule(ctx context.Context, m material.Module) (material.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[m.CourseID]; !ok {
		return material.Module{}, material.ErrNotFound
	}
	m.ID = repo.db.nextID("module")
	repo.db.modules[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) QueryModules(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Module, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	modules := make([]material.Module, 0)
	for _, m := range repo.db.modules {
		if filter.CourseID != 0 && m.CourseID != filter.CourseID {
			continue
		}
		if filter.Scope.Permits(nullInt(m.OwnerID), 0) {
			modules = append(modules, *m)
		}
	}
	start, end := sortAndPage(modules, len(modules), comparators{
		"id":    func(i, j int) int { return cmpInt(modules[i].ID, modules[j].ID) },
		"title": func(i, j int) int { return cmpStr(modules[i].Title, modules[j].Title) },
	}, opts)
	return modules[start:end], len(modules), nil
}

func (repo *materialRepository) GetModule(ctx context.Context, id int) (material.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.modules[id]; ok {
		return *m, nil
	}
	return material.Module{}, material.ErrNotFound
}

func (repo *materialRepository) UpdateModule(ctx context.Context, m material.Module) (material.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.modules[m.ID]; !ok {
		return material.Module{}, material.ErrNotFound
	}
	if _, ok := repo.db.courses[m.CourseID]; !ok {
		return material.Module{}, material.ErrNotFound
	}
	repo.db.modules[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) DeleteModule(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.modules[id]; !ok {
		return material.ErrNotFound
	}
	repo.db.deleteModule(id)
	return nil
}

// deleteModule detaches the module lessons and tests. Must be called with the write lock held.
func (db *DB) deleteModule(id int) {
	delete(db.modules, id)
	for _, l := range db.lessons {
		if l.ModuleID.Valid && l.ModuleID.Int == id {
			l.ModuleID = null.Int{}
		}
	}
	for _, t := range db.tests {
		if t.ModuleID.Valid && t.ModuleID.Int == id {
			t.ModuleID = null.Int{}
		}
	}
}

// Lessons

func (repo *materialRepository) CreateLesson(ctx context.Context, l material.Lesson) (material.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l.ID = repo.db.nextID("lesson")
	repo.db.lessons[l.ID] = &l
	return l, nil
}

func (repo *materialRepository) QueryLessons(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Lesson, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := make([]material.Lesson, 0)
	for _, l := range repo.db.lessons {
		if filter.ModuleID != 0 && nullInt(l.ModuleID) != filter.ModuleID {
			continue
		}
		if filter.Scope.Permits(nullInt(l.OwnerID), 0) {
			lessons = append(lessons, *l)
		}
	}
	start, end := sortAndPage(lessons, len(lessons), comparators{
		"id":    func(i, j int) int { return cmpInt(lessons[i].ID, lessons[j].ID) },
		"title": func(i, j int) int { return cmpStr(lessons[i].Title, lessons[j].Title) },
	}, opts)
	return lessons[start:end], len(lessons), nil
}

func (repo *materialRepository) GetLesson(ctx context.Context, id int) (material.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return *l, nil
	}
	return material.Lesson{}, material.ErrNotFound
}

func (repo *materialRepository) UpdateLesson(ctx context.Context, l material.Lesson) (material.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[l.ID]; !ok {
		return material.Lesson{}, material.ErrNotFound
	}
	repo.db.lessons[l.ID] = &l
	return l, nil
}

func (repo *materialRepository) DeleteLesson(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[id]; !ok {
		return material.ErrNotFound
	}
	delete(repo.db.lessons, id)
	for _, t := range repo.db.tests {
		if t.LessonID.Valid && t.LessonID.Int == id {
			t.LessonID = null.Int{}
		}
	}
	return nil
}

func (repo *materialRepository) CountLessons(ctx context.Context, moduleIDs ...int) (map[int]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[int]int, len(moduleIDs))
	for _, id := range moduleIDs {
		counts[id] = 0
	}
	for _, l := range repo.db.lessons {
		if !l.ModuleID.Valid {
			continue
		}
		if _, ok := counts[l.ModuleID.Int]; ok {
			counts[l.ModuleID.Int]++
		}
	}
	return counts, nil
}

// Enrollments

func (repo *materialRepository) ToggleEnrollment(ctx context.Context, studentID, courseID int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return false, material.ErrNotFound
	}
	for id, e := range repo.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			delete(repo.db.enrollments, id)
			return false, nil
		}
	}

	id := repo.db.nextID("enrollment")
	repo.db.enrollments[id] = &material.Enrollment{
		ID:        id,
		StudentID: studentID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

// enrollmentVisible must be called with the lock held.
func (db *DB) enrollmentVisible(filter material.Filter, e *material.Enrollment) bool {
	var ownerID int
	if c, ok := db.courses[e.CourseID]; ok {
		ownerID = nullInt(c.OwnerID)
	}
	return filter.Scope.Permits(ownerID, e.StudentID)
}

func (repo *materialRepository) QueryEnrollments(ctx context.Context, filter material.Filter, opts core.ListOptions) ([]material.Enrollment, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]material.Enrollment, 0)
	for _, e := range repo.db.enrollments {
		if filter.CourseID != 0 && e.CourseID != filter.CourseID {
			continue
		}
		if repo.db.enrollmentVisible(filter, e) {
			enrollments = append(enrollments, *e)
		}
	}
	start, end := sortAndPage(enrollments, len(enrollments), comparators{
		"id": func(i, j int) int { return cmpInt(enrollments[i].ID, enrollments[j].ID) },
		"created_at": func(i, j int) int {
			return cmpInt(int(enrollments[i].CreatedAt.Sub(enrollments[j].CreatedAt)), 0)
		},
	}, opts)
	return enrollments[start:end], len(enrollments), nil
}

func (repo *materialRepository) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, e := range repo.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}
