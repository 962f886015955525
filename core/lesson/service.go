package lesson

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teacher"
)

var (
	ErrNotFound = core.NewNotFoundError("Lesson not found")

	errAccessDenied      = core.NewForbiddenError("Access denied. You can only manage your own lessons")
	errTeacherNotLinked  = core.NewForbiddenError("Your account is not linked to a teacher")
	errTeacherIDRequired = core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "this field is required"})

	nowFunc = core.Now // mockable
)

// Orderings
var (
	byDateDesc = []core.DBOrdering{{Field: "lesson_date"}, {Field: "start_time"}}
	byDateAsc  = []core.DBOrdering{{Field: "lesson_date", Ascending: true}, {Field: "start_time", Ascending: true}}
)

type (
	Repository interface {
		// QueryLessons applies AND operation on available QueryFilter fields.
		// Ordering fields are limited to lesson_date and start_time.
		QueryLessons(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]View, error)
		GetLesson(ctx context.Context, id int64) (View, error)
		QueryAttendees(ctx context.Context, lessonID int64) ([]Attendee, error)
		// CreateLesson inserts the lesson and, when autoEnroll is set, enrolls its group's students, atomically.
		CreateLesson(ctx context.Context, l Lesson, autoEnroll bool) (View, error)
		// UpdateLesson updates the lesson and, when autoEnroll is set, enrolls the missing group students, atomically.
		UpdateLesson(ctx context.Context, l Lesson, autoEnroll bool) (View, error)
		// DeleteLesson deletes the lesson's enrollments, then the lesson, atomically.
		DeleteLesson(ctx context.Context, id int64) error
		// LessonStats counts lessons by status, on `today` and from `today` up to (excluding) `weekEnd`.
		LessonStats(ctx context.Context, today, weekEnd string, teacherID *int64) (Stats, error)
	}

	// Teachers is what lessons need to know about teachers.
	Teachers interface {
		Get(ctx context.Context, id int64) (teacher.Teacher, error)
		CheckAssignment(ctx context.Context, teacherID, subjectID int64, groupID *int64) error
	}

	Service struct {
		repo     Repository
		teachers Teachers
	}
)

func NewService(repo Repository, teachers Teachers) *Service {
	return &Service{repo: repo, teachers: teachers}
}

// List returns lessons matching filter, newest first unless ordering says otherwise.
// Teachers only ever see their own lessons.
func (svc *Service) List(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]View, error) {
	if !actor.IsAdmin() {
		filter.TeacherID = actor.TeacherScope()
	}
	if len(ordering) == 0 {
		ordering = byDateDesc
	}
	return svc.repo.QueryLessons(ctx, filter, ordering)
}

// Week returns the lessons from startDate to 30 days later, in chronological order.
func (svc *Service) Week(ctx context.Context, actor core.Actor, startDate string) ([]View, error) {
	startDate = core.CleanString(startDate)
	if startDate == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: "this field is required"})
	}
	endDate, err := core.AddDays(startDate, weekSpanDays)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	filter := QueryFilter{StartDate: startDate, EndDate: endDate, TeacherID: actor.TeacherScope()}
	return svc.repo.QueryLessons(ctx, filter, byDateAsc)
}

func (svc *Service) Stats(ctx context.Context, actor core.Actor) (Stats, error) {
	now := nowFunc()
	today := core.FormatDate(now)
	until := core.FormatDate(now.AddDate(0, 0, upcomingSpanDays))
	return svc.repo.LessonStats(ctx, today, until, actor.TeacherScope())
}

// Find returns a lesson without any access check.
func (svc *Service) Find(ctx context.Context, id int64) (View, error) {
	return svc.repo.GetLesson(ctx, id)
}

// Get returns a lesson with its students.
func (svc *Service) Get(ctx context.Context, actor core.Actor, id int64) (Detail, error) {
	v, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(v.TeacherID) {
		return Detail{}, errAccessDenied
	}
	return svc.detail(ctx, v)
}

// Attendance returns the attendance sheet of a lesson.
func (svc *Service) Attendance(ctx context.Context, actor core.Actor, id int64) (Sheet, error) {
	d, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Sheet{}, err
	}
	return Sheet{Lesson: d.View, Students: d.Students}, nil
}

func (svc *Service) detail(ctx context.Context, v View) (Detail, error) {
	attendees, err := svc.repo.QueryAttendees(ctx, v.ID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying attendees")
	}
	if attendees == nil {
		attendees = []Attendee{}
	}
	return Detail{View: v, Students: attendees}, nil
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, nl NewLesson) (View, error) {
	var teacherID int64
	switch {
	case actor.IsTeacher():
		if actor.TeacherID == nil {
			return View{}, errTeacherNotLinked
		}
		teacherID = *actor.TeacherID
	case nl.TeacherID != nil:
		teacherID = *nl.TeacherID
	default:
		return View{}, errTeacherIDRequired
	}

	if _, err := svc.teachers.Get(ctx, teacherID); err != nil {
		return View{}, errors.Wrap(err, "finding teacher")
	}
	if nl.SubjectID != nil && nl.GroupID != nil {
		if err := svc.teachers.CheckAssignment(ctx, teacherID, *nl.SubjectID, nl.GroupID); err != nil {
			return View{}, err
		}
	}

	l := Lesson{
		TeacherID:   &teacherID,
		Subject:     nl.Subject,
		SubjectID:   nl.SubjectID,
		GroupID:     nl.GroupID,
		LessonDate:  nl.LessonDate,
		StartTime:   nl.StartTime,
		EndTime:     nl.EndTime,
		MaxStudents: DefaultMaxStudents,
		Description: nl.Description,
		Status:      nl.Status,
	}
	if nl.MaxStudents != nil {
		l.MaxStudents = *nl.MaxStudents
	}
	if l.Status == "" {
		l.Status = StatusScheduled
	}
	return svc.repo.CreateLesson(ctx, l, nl.AutoEnrollGroupStudents && l.GroupID != nil)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id int64, ul UpdateLesson) (View, error) {
	v, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return View{}, errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(v.TeacherID) {
		return View{}, errAccessDenied
	}

	l := v.Lesson
	if actor.IsAdmin() && ul.TeacherID != nil {
		if _, err := svc.teachers.Get(ctx, *ul.TeacherID); err != nil {
			return View{}, errors.Wrap(err, "finding teacher")
		}
		l.TeacherID = ul.TeacherID
	}
	if ul.Subject != nil {
		l.Subject = ul.Subject
	}
	if ul.SubjectID != nil {
		l.SubjectID = ul.SubjectID
	}
	if ul.GroupID != nil {
		l.GroupID = ul.GroupID
	}
	if ul.LessonDate != "" {
		l.LessonDate = ul.LessonDate
	}
	if ul.StartTime != "" {
		l.StartTime = ul.StartTime
	}
	if ul.EndTime != "" {
		l.EndTime = ul.EndTime
	}
	if ul.MaxStudents != nil {
		l.MaxStudents = *ul.MaxStudents
	}
	if ul.Description != nil {
		l.Description = ul.Description
	}
	if ul.Status != "" {
		l.Status = ul.Status
	}
	if err := checkTimeRange(core.NormalizeClock(l.StartTime), core.NormalizeClock(l.EndTime), "end_time"); err != nil {
		return View{}, err
	}

	if l.SubjectID != nil && l.GroupID != nil {
		if l.TeacherID == nil {
			return View{}, teacher.ErrSubjectNotAssigned
		}
		if err := svc.teachers.CheckAssignment(ctx, *l.TeacherID, *l.SubjectID, l.GroupID); err != nil {
			return View{}, err
		}
	}
	return svc.repo.UpdateLesson(ctx, l, ul.AutoEnrollOnUpdate && l.GroupID != nil)
}

// Reschedule moves the lesson to a new date and time slot. Collisions are not checked.
func (svc *Service) Reschedule(ctx context.Context, actor core.Actor, id int64, r Reschedule) (View, error) {
	v, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return View{}, errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(v.TeacherID) {
		return View{}, errAccessDenied
	}
	l := v.Lesson
	l.LessonDate = r.NewDate
	l.StartTime = r.NewStartTime
	l.EndTime = r.NewEndTime
	l.RescheduleReason = r.Reason
	return svc.repo.UpdateLesson(ctx, l, false)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	v, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return errors.Wrap(err, "finding lesson")
	}
	if !actor.Owns(v.TeacherID) {
		return errAccessDenied
	}
	return svc.repo.DeleteLesson(ctx, id)
}
