package teacher

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Teacher struct {
	ID             int64   `json:"id" db:"id"`
	FirstName      string  `json:"first_name" db:"first_name"`
	LastName       string  `json:"last_name" db:"last_name"`
	MiddleName     *string `json:"middle_name" db:"middle_name"`
	Phone          *string `json:"phone" db:"phone"`
	Email          *string `json:"email" db:"email"`
	Specialization *string `json:"specialization" db:"specialization"`
	Notes          *string `json:"notes" db:"notes"`
	Status         string  `json:"status" db:"status"`
	CreatedAt      string  `json:"created_at" db:"created_at"`
	UpdatedAt      string  `json:"updated_at" db:"updated_at"`
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	MiddleName     *string `json:"middle_name" validate:"omitempty,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Email          *string `json:"email" validate:"omitempty,email,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
	Notes          *string `json:"notes"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.MiddleName = core.CleanStringPtr(nt.MiddleName)
	nt.Phone = core.CleanStringPtr(nt.Phone)
	nt.Email = core.CleanStringPtr(nt.Email, true /* lower */)
	nt.Specialization = core.CleanStringPtr(nt.Specialization)
	nt.Notes = core.CleanStringPtr(nt.Notes)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
// Blank names and status keep their stored value; the optional fields are overwritten.
type UpdateTeacher struct {
	FirstName      string  `json:"first_name" validate:"omitempty,max=100"`
	LastName       string  `json:"last_name" validate:"omitempty,max=100"`
	MiddleName     *string `json:"middle_name" validate:"omitempty,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Email          *string `json:"email" validate:"omitempty,email,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
	Notes          *string `json:"notes"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.LastName = core.CleanString(ut.LastName)
	ut.MiddleName = core.CleanStringPtr(ut.MiddleName)
	ut.Phone = core.CleanStringPtr(ut.Phone)
	ut.Email = core.CleanStringPtr(ut.Email, true /* lower */)
	ut.Specialization = core.CleanStringPtr(ut.Specialization)
	ut.Notes = core.CleanStringPtr(ut.Notes)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	return validate.Struct(ut)
}

type SetSubjects struct {
	SubjectIDs []int64 `json:"subject_ids" validate:"dive,gt=0"`
}

func (ss *SetSubjects) Validate(validate *validator.Validate) error {
	if ss.SubjectIDs == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "subject_ids", Error: "subject_ids must be an array"})
	}
	return validate.Struct(ss)
}
