package subject

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Subject struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanStringPtr(ns.Description)
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Omitted fields keep their stored value.
type UpdateSubject struct {
	Name        string  `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsActive    *bool   `json:"is_active"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Description = core.CleanStringPtr(us.Description)
	return validate.Struct(us)
}
