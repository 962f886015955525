package teacher

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
)

var (
	ErrNotFound = core.NewNotFoundError("Teacher not found")

	// teacher-subject-group gate
	ErrSubjectNotAssigned = core.NewValidationMessage("Teacher is not assigned to this subject")
	ErrGroupMismatch      = core.NewValidationMessage("Group does not belong to this teacher and subject")
)

type (
	Repository interface {
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacher(ctx context.Context, id int64) (Teacher, error)
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// DeleteTeacher detaches the teacher's lessons and subjects, then deletes the teacher, atomically.
		DeleteTeacher(ctx context.Context, id int64) error
		QueryTeacherSubjects(ctx context.Context, teacherID int64) ([]subject.Subject, error)
		// SetTeacherSubjects replaces the whole subject set of a teacher in one transaction.
		SetTeacherSubjects(ctx context.Context, teacherID int64, subjectIDs []int64) error
		HasSubject(ctx context.Context, teacherID, subjectID int64) (bool, error)
		// GroupBelongsTo reports whether the group is taught by teacherID for subjectID.
		GroupBelongsTo(ctx context.Context, groupID, teacherID, subjectID int64) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all teachers ordered by last name, first name.
func (svc *Service) List(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx)
}

func (svc *Service) Get(ctx context.Context, id int64) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	t := Teacher{
		FirstName:      nt.FirstName,
		LastName:       nt.LastName,
		MiddleName:     nt.MiddleName,
		Phone:          nt.Phone,
		Email:          nt.Email,
		Specialization: nt.Specialization,
		Notes:          nt.Notes,
		Status:         nt.Status,
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) Update(ctx context.Context, id int64, ut UpdateTeacher) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "finding teacher")
	}
	if ut.FirstName != "" {
		t.FirstName = ut.FirstName
	}
	if ut.LastName != "" {
		t.LastName = ut.LastName
	}
	if ut.Status != "" {
		t.Status = ut.Status
	}
	t.MiddleName = ut.MiddleName
	t.Phone = ut.Phone
	t.Email = ut.Email
	t.Specialization = ut.Specialization
	t.Notes = ut.Notes
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetTeacher(ctx, id); err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	return svc.repo.DeleteTeacher(ctx, id)
}

func (svc *Service) Subjects(ctx context.Context, id int64) ([]subject.Subject, error) {
	if _, err := svc.repo.GetTeacher(ctx, id); err != nil {
		return nil, errors.Wrap(err, "finding teacher")
	}
	return svc.repo.QueryTeacherSubjects(ctx, id)
}

// SetSubjects replaces the teacher's subjects and returns the new set.
func (svc *Service) SetSubjects(ctx context.Context, id int64, ss SetSubjects) ([]subject.Subject, error) {
	if _, err := svc.repo.GetTeacher(ctx, id); err != nil {
		return nil, errors.Wrap(err, "finding teacher")
	}
	if err := svc.repo.SetTeacherSubjects(ctx, id, core.UniqueIDs(ss.SubjectIDs)); err != nil {
		return nil, errors.Wrap(err, "setting teacher subjects")
	}
	return svc.repo.QueryTeacherSubjects(ctx, id)
}

// CheckAssignment makes sure the teacher is assigned to the subject and, when a group is given,
// that the group belongs to that exact teacher and subject.
func (svc *Service) CheckAssignment(ctx context.Context, teacherID, subjectID int64, groupID *int64) error {
	ok, err := svc.repo.HasSubject(ctx, teacherID, subjectID)
	if err != nil {
		return errors.Wrap(err, "checking teacher subject")
	}
	if !ok {
		return ErrSubjectNotAssigned
	}
	if groupID == nil {
		return nil
	}
	ok, err = svc.repo.GroupBelongsTo(ctx, *groupID, teacherID, subjectID)
	if err != nil {
		return errors.Wrap(err, "checking group assignment")
	}
	if !ok {
		return ErrGroupMismatch
	}
	return nil
}
