package enrollment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
)

// Statuses
const (
	StatusEnrolled  = "enrolled"
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusCancelled = "cancelled"
)

var (
	Statuses           = []string{StatusEnrolled, StatusPresent, StatusAbsent, StatusCancelled}
	AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusEnrolled}
)

type Enrollment struct {
	ID             int64  `json:"id" db:"id"`
	LessonID       int64  `json:"lesson_id" db:"lesson_id"`
	StudentID      int64  `json:"student_id" db:"student_id"`
	Status         string `json:"status" db:"status"`
	EnrollmentDate string `json:"enrollment_date" db:"enrollment_date"`
}

// View is an Enrollment joined with its student, lesson and teacher.
type View struct {
	Enrollment
	StudentFirstName  string  `json:"student_first_name" db:"student_first_name"`
	StudentLastName   string  `json:"student_last_name" db:"student_last_name"`
	StudentMiddleName *string `json:"student_middle_name" db:"student_middle_name"`
	StudentPhone      *string `json:"student_phone" db:"student_phone"`
	LessonSubject     *string `json:"lesson_subject" db:"lesson_subject"`
	LessonDate        string  `json:"lesson_date" db:"lesson_date"`
	StartTime         string  `json:"start_time" db:"start_time"`
	EndTime           string  `json:"end_time" db:"end_time"`
	TeacherID         *int64  `json:"teacher_id" db:"teacher_id"`
	TeacherFirstName  *string `json:"teacher_first_name" db:"teacher_first_name"`
	TeacherLastName   *string `json:"teacher_last_name" db:"teacher_last_name"`
}

// DayLesson is a row of the attendance day view.
type DayLesson struct {
	lesson.View
	TotalEnrolled int `json:"total_enrolled" db:"total_enrolled"`
	TotalPresent  int `json:"total_present" db:"total_present"`
	TotalAbsent   int `json:"total_absent" db:"total_absent"`
}

// NewEnrollment books a student on a lesson.
type NewEnrollment struct {
	LessonID  int64 `json:"lesson_id" validate:"required,gt=0"`
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

func (ne NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

// AddStudent adds a group member to a lesson from the attendance sheet.
type AddStudent struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

func (as AddStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(as)
}

// MarkAttendance is the attendance sheet status change.
type MarkAttendance struct {
	Status string `json:"status" validate:"required,oneof=present absent enrolled"`
}

func (ma *MarkAttendance) Validate(validate *validator.Validate) error {
	ma.Status = core.CleanString(ma.Status, true /* lower */)
	return validate.Struct(ma)
}

// UpdateStatus is the general status change.
type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=enrolled present absent cancelled"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	LessonID  *int64
	StudentID *int64
	Status    string
	TeacherID *int64
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// DayFilter selects the lessons of the attendance day view.
type DayFilter struct {
	Date      string
	TeacherID *int64
	GroupID   *int64
}
