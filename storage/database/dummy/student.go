package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keys := ids(repo.db.students)
	students := make([]student.Student, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		students = append(students, repo.db.students[keys[i]])
	}
	return students, nil
}

func (repo *studentRepository) SearchStudents(_ context.Context, query string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	query = strings.ToLower(query)
	contains := func(s *string) bool { return s != nil && strings.Contains(strings.ToLower(*s), query) }

	students := make([]student.Student, 0)
	for _, id := range ids(repo.db.students) {
		s := repo.db.students[id]
		if contains(&s.FirstName) || contains(&s.LastName) || contains(s.MiddleName) || contains(s.Phone) || contains(s.Email) {
			students = append(students, s)
		}
	}
	sortStudents(students)
	return students, nil
}

func sortStudents(students []student.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
}

func (repo *studentRepository) GetStudent(_ context.Context, id int64) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.nextID()
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.CreatedAt = stored.CreatedAt
	s.UpdatedAt = now()
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, p := range repo.db.payments {
		if p.StudentID == id {
			return core.NewConflictError("Student has payments and cannot be deleted")
		}
	}
	for _, members := range repo.db.groupStudents {
		delete(members, id)
	}
	for eid, e := range repo.db.enrollments {
		if e.StudentID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	delete(repo.db.students, id)
	return nil
}
