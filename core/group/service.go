package group

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

var ErrNotFound = core.NewNotFoundError("Group not found")

type (
	Repository interface {
		// QueryGroups applies AND operation on available QueryFilter fields.
		QueryGroups(ctx context.Context, filter QueryFilter) ([]View, error)
		GetGroup(ctx context.Context, id int64) (View, error)
		CreateGroup(ctx context.Context, g Group) (View, error)
		UpdateGroup(ctx context.Context, g Group) (View, error)
		// DeleteGroup removes the roster, detaches lessons and deletes the group, atomically.
		DeleteGroup(ctx context.Context, id int64) error
		QueryGroupStudents(ctx context.Context, groupID int64) ([]student.Student, error)
		// SetGroupStudents replaces the roster and sets max_students to its size, in one transaction.
		SetGroupStudents(ctx context.Context, groupID int64, studentIDs []int64) error
	}

	// AssignmentChecker guards the teacher-subject(-group) invariant.
	AssignmentChecker interface {
		CheckAssignment(ctx context.Context, teacherID, subjectID int64, groupID *int64) error
	}

	Service struct {
		repo    Repository
		checker AssignmentChecker
	}
)

func NewService(repo Repository, checker AssignmentChecker) *Service {
	return &Service{repo: repo, checker: checker}
}

func (svc *Service) List(ctx context.Context, filter QueryFilter) ([]View, error) {
	return svc.repo.QueryGroups(ctx, filter)
}

// ListByTeacher returns the groups taught by a teacher.
func (svc *Service) ListByTeacher(ctx context.Context, teacherID int64) ([]View, error) {
	return svc.repo.QueryGroups(ctx, QueryFilter{TeacherID: &teacherID})
}

func (svc *Service) Get(ctx context.Context, id int64) (View, error) {
	return svc.repo.GetGroup(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (View, error) {
	if err := svc.checker.CheckAssignment(ctx, ng.TeacherID, ng.SubjectID, nil); err != nil {
		return View{}, err
	}
	g := Group{
		Name:        ng.Name,
		SubjectID:   ng.SubjectID,
		TeacherID:   ng.TeacherID,
		MaxStudents: ng.MaxStudents,
		Status:      ng.Status,
		Notes:       ng.Notes,
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	return svc.repo.CreateGroup(ctx, g)
}

func (svc *Service) Update(ctx context.Context, id int64, ug UpdateGroup) (View, error) {
	v, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return View{}, errors.Wrap(err, "finding group")
	}
	g := v.Group
	if ug.Name != "" {
		g.Name = ug.Name
	}
	if ug.SubjectID != 0 {
		g.SubjectID = ug.SubjectID
	}
	if ug.TeacherID != 0 {
		g.TeacherID = ug.TeacherID
	}
	if ug.MaxStudents != nil {
		g.MaxStudents = ug.MaxStudents
	}
	if ug.Status != "" {
		g.Status = ug.Status
	}
	g.Notes = ug.Notes

	if err := svc.checker.CheckAssignment(ctx, g.TeacherID, g.SubjectID, nil); err != nil {
		return View{}, err
	}
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetGroup(ctx, id); err != nil {
		return errors.Wrap(err, "finding group")
	}
	return svc.repo.DeleteGroup(ctx, id)
}

func (svc *Service) Students(ctx context.Context, id int64) ([]student.Student, error) {
	if _, err := svc.repo.GetGroup(ctx, id); err != nil {
		return nil, errors.Wrap(err, "finding group")
	}
	return svc.repo.QueryGroupStudents(ctx, id)
}

// SetStudents replaces the group roster and returns the new one.
func (svc *Service) SetStudents(ctx context.Context, id int64, ss SetStudents) ([]student.Student, error) {
	if _, err := svc.repo.GetGroup(ctx, id); err != nil {
		return nil, errors.Wrap(err, "finding group")
	}

	if err := svc.repo.SetGroupStudents(ctx, id, core.UniqueIDs(ss.StudentIDs)); err != nil {
		return nil, errors.Wrap(err, "setting group students")
	}
	return svc.repo.QueryGroupStudents(ctx, id)
}
