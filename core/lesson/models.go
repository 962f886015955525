package lesson

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	DefaultMaxStudents = 10
	weekSpanDays       = 30
	upcomingSpanDays   = 7
)

type Lesson struct {
	ID               int64   `json:"id" db:"id"`
	TeacherID        *int64  `json:"teacher_id" db:"teacher_id"`
	Subject          *string `json:"subject" db:"subject"`
	SubjectID        *int64  `json:"subject_id" db:"subject_id"`
	GroupID          *int64  `json:"group_id" db:"group_id"`
	LessonDate       string  `json:"lesson_date" db:"lesson_date"`
	StartTime        string  `json:"start_time" db:"start_time"`
	EndTime          string  `json:"end_time" db:"end_time"`
	MaxStudents      int     `json:"max_students" db:"max_students"`
	Description      *string `json:"description" db:"description"`
	Status           string  `json:"status" db:"status"`
	RescheduleReason *string `json:"reschedule_reason" db:"reschedule_reason"`
	CreatedAt        string  `json:"created_at" db:"created_at"`
	UpdatedAt        string  `json:"updated_at" db:"updated_at"`
}

// View is a Lesson joined with teacher, subject and group names and its enrolled count.
type View struct {
	Lesson
	TeacherFirstName  *string `json:"teacher_first_name" db:"teacher_first_name"`
	TeacherLastName   *string `json:"teacher_last_name" db:"teacher_last_name"`
	TeacherMiddleName *string `json:"teacher_middle_name" db:"teacher_middle_name"`
	SubjectName       *string `json:"subject_name" db:"subject_name"`
	GroupName         *string `json:"group_name" db:"group_name"`
	EnrolledCount     int     `json:"enrolled_count" db:"enrolled_count"`
}

// Attendee is a student booked on a lesson.
type Attendee struct {
	EnrollmentID     int64   `json:"enrollment_id" db:"enrollment_id"`
	AttendanceStatus string  `json:"attendance_status" db:"attendance_status"`
	StudentID        int64   `json:"student_id" db:"student_id"`
	FirstName        string  `json:"first_name" db:"first_name"`
	LastName         string  `json:"last_name" db:"last_name"`
	MiddleName       *string `json:"middle_name" db:"middle_name"`
	Phone            *string `json:"phone" db:"phone"`
}

// Detail is a lesson with its attendees.
type Detail struct {
	View
	Students []Attendee `json:"students"`
}

// Sheet is the attendance sheet of a lesson.
type Sheet struct {
	Lesson   View       `json:"lesson"`
	Students []Attendee `json:"students"`
}

type Stats struct {
	Total     int `json:"total_lessons" db:"total_lessons"`
	Scheduled int `json:"scheduled_lessons" db:"scheduled_lessons"`
	Completed int `json:"completed_lessons" db:"completed_lessons"`
	Cancelled int `json:"cancelled_lessons" db:"cancelled_lessons"`
	Today     int `json:"lessons_today" db:"lessons_today"`
	ThisWeek  int `json:"lessons_this_week" db:"lessons_this_week"`
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	TeacherID               *int64  `json:"teacher_id" validate:"omitempty,gt=0"`
	Subject                 *string `json:"subject" validate:"omitempty,max=100"`
	SubjectID               *int64  `json:"subject_id" validate:"omitempty,gt=0"`
	GroupID                 *int64  `json:"group_id" validate:"omitempty,gt=0"`
	LessonDate              string  `json:"lesson_date" validate:"required,date"`
	StartTime               string  `json:"start_time" validate:"required,clock"`
	EndTime                 string  `json:"end_time" validate:"required,clock"`
	MaxStudents             *int    `json:"max_students" validate:"omitempty,gte=1"`
	Description             *string `json:"description"`
	Status                  string  `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	AutoEnrollGroupStudents bool    `json:"auto_enroll_group_students"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Subject = core.CleanStringPtr(nl.Subject)
	nl.LessonDate = core.CleanString(nl.LessonDate)
	nl.StartTime = core.CleanString(nl.StartTime)
	nl.EndTime = core.CleanString(nl.EndTime)
	nl.Description = core.CleanStringPtr(nl.Description)
	nl.Status = core.CleanString(nl.Status, true /* lower */)
	if err := validate.Struct(nl); err != nil {
		return err
	}
	nl.StartTime = core.NormalizeClock(nl.StartTime)
	nl.EndTime = core.NormalizeClock(nl.EndTime)
	return checkTimeRange(nl.StartTime, nl.EndTime, "end_time")
}

// UpdateLesson defines what information may be provided to modify an existing Lesson.
// Zero values keep the stored value.
type UpdateLesson struct {
	TeacherID          *int64  `json:"teacher_id" validate:"omitempty,gt=0"`
	Subject            *string `json:"subject" validate:"omitempty,max=100"`
	SubjectID          *int64  `json:"subject_id" validate:"omitempty,gt=0"`
	GroupID            *int64  `json:"group_id" validate:"omitempty,gt=0"`
	LessonDate         string  `json:"lesson_date" validate:"omitempty,date"`
	StartTime          string  `json:"start_time" validate:"omitempty,clock"`
	EndTime            string  `json:"end_time" validate:"omitempty,clock"`
	MaxStudents        *int    `json:"max_students" validate:"omitempty,gte=1"`
	Description        *string `json:"description"`
	Status             string  `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	AutoEnrollOnUpdate bool    `json:"auto_enroll_on_update"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Subject = core.CleanStringPtr(ul.Subject)
	ul.LessonDate = core.CleanString(ul.LessonDate)
	ul.StartTime = core.CleanString(ul.StartTime)
	ul.EndTime = core.CleanString(ul.EndTime)
	ul.Description = core.CleanStringPtr(ul.Description)
	ul.Status = core.CleanString(ul.Status, true /* lower */)
	if err := validate.Struct(ul); err != nil {
		return err
	}
	if ul.StartTime != "" {
		ul.StartTime = core.NormalizeClock(ul.StartTime)
	}
	if ul.EndTime != "" {
		ul.EndTime = core.NormalizeClock(ul.EndTime)
	}
	return nil
}

// Reschedule moves a lesson to another slot.
type Reschedule struct {
	NewDate      string  `json:"new_date" validate:"required,date"`
	NewStartTime string  `json:"new_start_time" validate:"required,clock"`
	NewEndTime   string  `json:"new_end_time" validate:"required,clock"`
	Reason       *string `json:"reason" validate:"omitempty,max=255"`
}

func (r *Reschedule) Validate(validate *validator.Validate) error {
	r.NewDate = core.CleanString(r.NewDate)
	r.NewStartTime = core.CleanString(r.NewStartTime)
	r.NewEndTime = core.CleanString(r.NewEndTime)
	r.Reason = core.CleanStringPtr(r.Reason)
	if err := validate.Struct(r); err != nil {
		return err
	}
	r.NewStartTime = core.NormalizeClock(r.NewStartTime)
	r.NewEndTime = core.NormalizeClock(r.NewEndTime)
	return checkTimeRange(r.NewStartTime, r.NewEndTime, "new_end_time")
}

type QueryFilter struct {
	StartDate string
	EndDate   string
	TeacherID *int64
	SubjectID *int64
	GroupID   *int64
	Status    string
}

func (qf *QueryFilter) Clean() {
	qf.StartDate = core.CleanString(qf.StartDate)
	qf.EndDate = core.CleanString(qf.EndDate)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// checkTimeRange expects normalized HH:MM:SS strings, which compare lexically.
func checkTimeRange(start, end, field string) error {
	if end <= start {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "must be after the start time"})
	}
	return nil
}
