package group

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

type Group struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	SubjectID   int64   `json:"subject_id" db:"subject_id"`
	TeacherID   int64   `json:"teacher_id" db:"teacher_id"`
	MaxStudents *int    `json:"max_students" db:"max_students"`
	Status      string  `json:"status" db:"status"`
	Notes       *string `json:"notes" db:"notes"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
	UpdatedAt   string  `json:"updated_at" db:"updated_at"`
}

// View is a Group joined with its subject and teacher names.
type View struct {
	Group
	SubjectName      *string `json:"subject_name" db:"subject_name"`
	TeacherFirstName *string `json:"teacher_first_name" db:"teacher_first_name"`
	TeacherLastName  *string `json:"teacher_last_name" db:"teacher_last_name"`
	StudentCount     int     `json:"student_count" db:"student_count"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name        string  `json:"name" validate:"required,max=100"`
	SubjectID   int64   `json:"subject_id" validate:"required,gt=0"`
	TeacherID   int64   `json:"teacher_id" validate:"required,gt=0"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,gte=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=active archived"`
	Notes       *string `json:"notes"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Status = core.CleanString(ng.Status, true /* lower */)
	ng.Notes = core.CleanStringPtr(ng.Notes)
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
// Zero values keep the stored value, except Notes which is overwritten.
type UpdateGroup struct {
	Name        string  `json:"name" validate:"omitempty,max=100"`
	SubjectID   int64   `json:"subject_id" validate:"omitempty,gt=0"`
	TeacherID   int64   `json:"teacher_id" validate:"omitempty,gt=0"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,gte=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=active archived"`
	Notes       *string `json:"notes"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	ug.Status = core.CleanString(ug.Status, true /* lower */)
	ug.Notes = core.CleanStringPtr(ug.Notes)
	return validate.Struct(ug)
}

type SetStudents struct {
	StudentIDs []int64 `json:"student_ids" validate:"dive,gt=0"`
}

func (ss *SetStudents) Validate(validate *validator.Validate) error {
	if ss.StudentIDs == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "student_ids", Error: "student_ids must be an array"})
	}
	return validate.Struct(ss)
}

type QueryFilter struct {
	TeacherID *int64
	SubjectID *int64
	Status    string
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
