package dummydb

import (
	"sort"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory stand-in for the MySQL schema, guarded by a single lock so that
// multi-table operations are atomic like their transactional counterparts.
type DB struct {
	sync.RWMutex
	seq int64

	users           map[int64]user.User
	teachers        map[int64]teacher.Teacher
	subjects        map[int64]subject.Subject
	teacherSubjects map[int64]map[int64]bool
	students        map[int64]student.Student
	groups          map[int64]group.Group
	groupStudents   map[int64]map[int64]bool
	lessons         map[int64]lesson.Lesson
	enrollments     map[int64]enrollment.Enrollment
	payments        map[int64]payment.Payment
}

func Open() (*DB, error) {
	db := &DB{
		users:           make(map[int64]user.User),
		teachers:        make(map[int64]teacher.Teacher),
		subjects:        make(map[int64]subject.Subject),
		teacherSubjects: make(map[int64]map[int64]bool),
		students:        make(map[int64]student.Student),
		groups:          make(map[int64]group.Group),
		groupStudents:   make(map[int64]map[int64]bool),
		lessons:         make(map[int64]lesson.Lesson),
		enrollments:     make(map[int64]enrollment.Enrollment),
		payments:        make(map[int64]payment.Payment),
	}
	return db, nil
}

func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func now() string {
	return core.FormatTimestamp(core.Now())
}

// ids returns the keys of a table in insertion order.
func ids[T any](table map[int64]T) []int64 {
	keys := make([]int64, 0, len(table))
	for id := range table {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func linkIDs(links map[int64]bool) []int64 {
	return ids(links)
}

func eqID(a *int64, b int64) bool {
	return a != nil && *a == b
}
