package inmemdb

import (
	"sort"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

// DB is an in-memory store honoring the constraints and cascades of the SQL schema.
// A single lock guards every table so multi-table operations are atomic.
type DB struct {
	mutex sync.RWMutex
	seq   map[string]int

	users          map[int]*user.User
	courses        map[int]*material.Course
	modules        map[int]*material.Module
	lessons        map[int]*material.Lesson
	enrollments    map[int]*material.Enrollment
	tests          map[int]*quiz.Test
	questions      map[int]*quiz.Question
	answers        map[int]*quiz.Answer
	studentAnswers map[int]*quiz.StudentAnswer
	testResults    map[int]*quiz.TestResult
}

func NewDB() *DB {
	return &DB{
		seq:            make(map[string]int),
		users:          make(map[int]*user.User),
		courses:        make(map[int]*material.Course),
		modules:        make(map[int]*material.Module),
		lessons:        make(map[int]*material.Lesson),
		enrollments:    make(map[int]*material.Enrollment),
		tests:          make(map[int]*quiz.Test),
		questions:      make(map[int]*quiz.Question),
		answers:        make(map[int]*quiz.Answer),
		studentAnswers: make(map[int]*quiz.StudentAnswer),
		testResults:    make(map[int]*quiz.TestResult),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// comparators compare rows i and j of a slice by one field: <0, 0 or >0.
type comparators map[string]func(i, j int) int

func (c comparators) fields() []string {
	fields := make([]string, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	return fields
}

// sortAndPage orders `rows` (a slice) by the allowed orderings, falling back to "id" ascending,
// and returns the [start, end) bounds of the requested page.
func sortAndPage(rows interface{}, n int, cmps comparators, opts core.ListOptions) (int, int) {
	orderings := core.AllowedOrderings(opts.Ordering, cmps.fields(), core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			c := cmps[ord.Field](i, j)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return opts.Page.Window(n)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func nullInt(n null.Int) int {
	if n.Valid {
		return n.Int
	}
	return 0
}
