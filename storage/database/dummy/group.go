package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/student"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) view(g group.Group) group.View {
	v := group.View{Group: g, StudentCount: len(repo.db.groupStudents[g.ID])}
	if s, ok := repo.db.subjects[g.SubjectID]; ok {
		v.SubjectName = &s.Name
	}
	if t, ok := repo.db.teachers[g.TeacherID]; ok {
		v.TeacherFirstName, v.TeacherLastName = &t.FirstName, &t.LastName
	}
	return v
}

func (repo *groupRepository) QueryGroups(_ context.Context, filter group.QueryFilter) ([]group.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	groups := make([]group.View, 0)
	for _, id := range ids(repo.db.groups) {
		g := repo.db.groups[id]
		if filter.TeacherID != nil && g.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.SubjectID != nil && g.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		groups = append(groups, repo.view(g))
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *groupRepository) GetGroup(_ context.Context, id int64) (group.View, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.groups[id]; ok {
		return repo.view(g), nil
	}
	return group.View{}, group.ErrNotFound
}

func (repo *groupRepository) checkRefs(g group.Group) error {
	_, subjOK := repo.db.subjects[g.SubjectID]
	_, teacherOK := repo.db.teachers[g.TeacherID]
	if !subjOK || !teacherOK {
		return core.NewValidationMessage("Unknown subject or teacher")
	}
	return nil
}

func (repo *groupRepository) CreateGroup(_ context.Context, g group.Group) (group.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkRefs(g); err != nil {
		return group.View{}, err
	}
	g.ID = repo.db.nextID()
	g.CreatedAt = now()
	g.UpdatedAt = g.CreatedAt
	repo.db.groups[g.ID] = g
	return repo.view(g), nil
}

func (repo *groupRepository) UpdateGroup(_ context.Context, g group.Group) (group.View, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.groups[g.ID]
	if !ok {
		return group.View{}, group.ErrNotFound
	}
	if err := repo.checkRefs(g); err != nil {
		return group.View{}, err
	}
	g.CreatedAt = stored.CreatedAt
	g.UpdatedAt = now()
	repo.db.groups[g.ID] = g
	return repo.view(g), nil
}

func (repo *groupRepository) DeleteGroup(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.groupStudents, id)
	for lid, l := range repo.db.lessons {
		if eqID(l.GroupID, id) {
			l.GroupID = nil
			repo.db.lessons[lid] = l
		}
	}
	delete(repo.db.groups, id)
	return nil
}

func (repo *groupRepository) QueryGroupStudents(_ context.Context, groupID int64) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, sid := range linkIDs(repo.db.groupStudents[groupID]) {
		students = append(students, repo.db.students[sid])
	}
	sortStudents(students)
	return students, nil
}

func (repo *groupRepository) SetGroupStudents(_ context.Context, groupID int64, studentIDs []int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	members := make(map[int64]bool, len(studentIDs))
	for _, sid := range studentIDs {
		if _, ok := repo.db.students[sid]; !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "student_ids", Error: "unknown student"})
		}
		members[sid] = true
	}
	repo.db.groupStudents[groupID] = members
	if g, ok := repo.db.groups[groupID]; ok {
		size := len(studentIDs)
		g.MaxStudents = &size
		repo.db.groups[groupID] = g
	}
	return nil
}
