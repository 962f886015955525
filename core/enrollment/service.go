package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

var (
	ErrNotFound = core.NewNotFoundError("Enrollment not found")

	ErrAlreadyEnrolled = core.NewConflictError("Student is already enrolled in this lesson")
	ErrLessonFull      = core.NewCapacityError("Lesson is full. Maximum students limit reached.")
	ErrLessonNoGroup   = core.NewValidationMessage("Lesson has no group, cannot validate student")
	ErrNotGroupMember  = core.NewValidationMessage("Student is not in this lesson group")

	errAccessDenied = core.NewForbiddenError("Access denied. You can only manage enrollments of your own lessons")
	errDateRequired = core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	errDateInvalid  = core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a date formatted as YYYY-MM-DD"})

	nowFunc = core.Now // mockable
)

type (
	Repository interface {
		// QueryEnrollments applies AND operation on available QueryFilter fields, newest enrollment first.
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]View, error)
		GetEnrollment(ctx context.Context, id int64) (View, error)
		CreateEnrollment(ctx context.Context, e Enrollment) (View, error)
		UpdateEnrollmentStatus(ctx context.Context, id int64, status string) (View, error)
		DeleteEnrollment(ctx context.Context, id int64) error
		// HasEnrolled reports whether an `enrolled` row exists for the pair.
		HasEnrolled(ctx context.Context, lessonID, studentID int64) (bool, error)
		IsGroupMember(ctx context.Context, groupID, studentID int64) (bool, error)
		// QueryDayLessons returns the lessons of a day with their attendance counts, by start time.
		QueryDayLessons(ctx context.Context, filter DayFilter) ([]DayLesson, error)
	}

	Lessons interface {
		Find(ctx context.Context, id int64) (lesson.View, error)
	}

	Students interface {
		Get(ctx context.Context, id int64) (student.Student, error)
	}

	Service struct {
		repo     Repository
		lessons  Lessons
		students Students
	}
)

func NewService(repo Repository, lessons Lessons, students Students) *Service {
	return &Service{repo: repo, lessons: lessons, students: students}
}

// List returns enrollments matching filter. Teachers only see enrollments of their lessons.
func (svc *Service) List(ctx context.Context, actor core.Actor, filter QueryFilter) ([]View, error) {
	filter.TeacherID = actor.TeacherScope()
	return svc.repo.QueryEnrollments(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id int64) (View, error) {
	v, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return View{}, errors.Wrap(err, "finding enrollment")
	}
	if !actor.Owns(v.TeacherID) {
		return View{}, errAccessDenied
	}
	return v, nil
}

// Create books a student on a lesson, within the lesson's capacity.
func (svc *Service) Create(ctx context.Context, actor core.Actor, ne NewEnrollment) (View, error) {
	if _, err := svc.students.Get(ctx, ne.StudentID); err != nil {
		return View{}, errors.Wrap(err, "finding student")
	}
	l, err := svc.lessons.Find(ctx, ne.LessonID)
	if err != nil {
		return View{}, errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(l.TeacherID) {
		return View{}, errAccessDenied
	}

	enrolled, err := svc.repo.HasEnrolled(ctx, ne.LessonID, ne.StudentID)
	if err != nil {
		return View{}, errors.Wrap(err, "checking enrollment")
	}
	if enrolled {
		return View{}, ErrAlreadyEnrolled
	}
	if l.EnrolledCount >= l.MaxStudents {
		return View{}, ErrLessonFull
	}
	return svc.enroll(ctx, ne.LessonID, ne.StudentID)
}

// AddStudentToLesson enrolls a member of the lesson's group. Capacity is not checked.
func (svc *Service) AddStudentToLesson(ctx context.Context, actor core.Actor, lessonID int64, as AddStudent) (View, error) {
	l, err := svc.lessons.Find(ctx, lessonID)
	if err != nil {
		return View{}, errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(l.TeacherID) {
		return View{}, errAccessDenied
	}
	if _, err := svc.students.Get(ctx, as.StudentID); err != nil {
		return View{}, errors.Wrap(err, "finding student")
	}
	if l.GroupID == nil {
		return View{}, ErrLessonNoGroup
	}

	member, err := svc.repo.IsGroupMember(ctx, *l.GroupID, as.StudentID)
	if err != nil {
		return View{}, errors.Wrap(err, "checking group membership")
	}
	if !member {
		return View{}, ErrNotGroupMember
	}

	enrolled, err := svc.repo.HasEnrolled(ctx, lessonID, as.StudentID)
	if err != nil {
		return View{}, errors.Wrap(err, "checking enrollment")
	}
	if enrolled {
		return View{}, ErrAlreadyEnrolled
	}
	return svc.enroll(ctx, lessonID, as.StudentID)
}

func (svc *Service) enroll(ctx context.Context, lessonID, studentID int64) (View, error) {
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		LessonID:       lessonID,
		StudentID:      studentID,
		Status:         StatusEnrolled,
		EnrollmentDate: core.FormatTimestamp(nowFunc()),
	})
}

// MarkAttendance sets present, absent or back to enrolled. Any transition is allowed.
func (svc *Service) MarkAttendance(ctx context.Context, actor core.Actor, id int64, ma MarkAttendance) (View, error) {
	return svc.setStatus(ctx, actor, id, ma.Status)
}

func (svc *Service) UpdateStatus(ctx context.Context, actor core.Actor, id int64, us UpdateStatus) (View, error) {
	return svc.setStatus(ctx, actor, id, us.Status)
}

func (svc *Service) setStatus(ctx context.Context, actor core.Actor, id int64, status string) (View, error) {
	if _, err := svc.Get(ctx, actor, id); err != nil {
		return View{}, err
	}
	return svc.repo.UpdateEnrollmentStatus(ctx, id, status)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	if _, err := svc.Get(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteEnrollment(ctx, id)
}

// Day lists the lessons of a date with their attendance counts.
func (svc *Service) Day(ctx context.Context, actor core.Actor, filter DayFilter) ([]DayLesson, error) {
	filter.Date = core.CleanString(filter.Date)
	if filter.Date == "" {
		return nil, errDateRequired
	}
	if _, err := core.AddDays(filter.Date, 0); err != nil {
		return nil, errDateInvalid
	}
	if !actor.IsAdmin() {
		filter.TeacherID = actor.TeacherScope()
	}
	return svc.repo.QueryDayLessons(ctx, filter)
}
