package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) QueryTeachers(_ context.Context) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, id := range ids(repo.db.teachers) {
		teachers = append(teachers, repo.db.teachers[id])
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		if teachers[i].LastName != teachers[j].LastName {
			return teachers[i].LastName < teachers[j].LastName
		}
		return teachers[i].FirstName < teachers[j].FirstName
	})
	return teachers, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, id int64) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = repo.db.nextID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	repo.db.teachers[t.ID] = t
	return t, nil
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.teachers[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = now()
	repo.db.teachers[t.ID] = t
	return t, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, g := range repo.db.groups {
		if g.TeacherID == id {
			return core.NewConflictError("Teacher still has groups and cannot be deleted")
		}
	}
	for lid, l := range repo.db.lessons {
		if eqID(l.TeacherID, id) {
			l.TeacherID = nil
			repo.db.lessons[lid] = l
		}
	}
	for uid, u := range repo.db.users {
		if eqID(u.TeacherID, id) {
			u.TeacherID = nil
			repo.db.users[uid] = u
		}
	}
	delete(repo.db.teacherSubjects, id)
	delete(repo.db.teachers, id)
	return nil
}

func (repo *teacherRepository) QueryTeacherSubjects(_ context.Context, teacherID int64) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjs := make([]subject.Subject, 0)
	for _, sid := range linkIDs(repo.db.teacherSubjects[teacherID]) {
		subjs = append(subjs, repo.db.subjects[sid])
	}
	sort.SliceStable(subjs, func(i, j int) bool { return subjs[i].Name < subjs[j].Name })
	return subjs, nil
}

func (repo *teacherRepository) SetTeacherSubjects(_ context.Context, teacherID int64, subjectIDs []int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	links := make(map[int64]bool, len(subjectIDs))
	for _, sid := range subjectIDs {
		if _, ok := repo.db.subjects[sid]; !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "subject_ids", Error: "unknown subject"})
		}
		links[sid] = true
	}
	repo.db.teacherSubjects[teacherID] = links
	return nil
}

func (repo *teacherRepository) HasSubject(_ context.Context, teacherID, subjectID int64) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.teacherSubjects[teacherID][subjectID], nil
}

func (repo *teacherRepository) GroupBelongsTo(_ context.Context, groupID, teacherID, subjectID int64) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	g, ok := repo.db.groups[groupID]
	return ok && g.TeacherID == teacherID && g.SubjectID == subjectID, nil
}
