package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusActive            = "active"
	StatusSelectingGroup    = "selecting_group"
	StatusOnVacation        = "on_vacation"
	StatusStudyingElsewhere = "studying_elsewhere"
	StatusDissatisfied      = "dissatisfied"
	StatusNotInterested     = "not_interested"
	StatusMoved             = "moved"
	StatusArchived          = "archived"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var Statuses = []string{
	StatusActive,
	StatusSelectingGroup,
	StatusOnVacation,
	StatusStudyingElsewhere,
	StatusDissatisfied,
	StatusNotInterested,
	StatusMoved,
	StatusArchived,
}

type Student struct {
	ID           int64   `json:"id" db:"id"`
	FirstName    string  `json:"first_name" db:"first_name"`
	LastName     string  `json:"last_name" db:"last_name"`
	MiddleName   *string `json:"middle_name" db:"middle_name"`
	Phone        *string `json:"phone" db:"phone"`
	PhoneComment *string `json:"phone_comment" db:"phone_comment"`
	Email        *string `json:"email" db:"email"`
	BirthDate    *string `json:"birth_date" db:"birth_date"`
	Gender       *string `json:"gender" db:"gender"`
	Address      *string `json:"address" db:"address"`
	Status       string  `json:"status" db:"status"`
	Balance      float64 `json:"balance" db:"balance"`
	Comment      *string `json:"comment" db:"comment"`
	CreatedAt    string  `json:"created_at" db:"created_at"`
	UpdatedAt    string  `json:"updated_at" db:"updated_at"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName    string   `json:"first_name" validate:"required,max=100"`
	LastName     string   `json:"last_name" validate:"required,max=100"`
	MiddleName   *string  `json:"middle_name" validate:"omitempty,max=100"`
	Phone        *string  `json:"phone" validate:"omitempty,max=20"`
	PhoneComment *string  `json:"phone_comment" validate:"omitempty,max=255"`
	Email        *string  `json:"email" validate:"omitempty,email,max=100"`
	BirthDate    *string  `json:"birth_date" validate:"omitempty,date"`
	Gender       *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	Status       string   `json:"status" validate:"omitempty,oneof=active selecting_group on_vacation studying_elsewhere dissatisfied not_interested moved archived"`
	Balance      *float64 `json:"balance"`
	Comment      *string  `json:"comment"`
}

func (ns *NewStudent) Clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.MiddleName = core.CleanStringPtr(ns.MiddleName)
	ns.Phone = core.CleanStringPtr(ns.Phone)
	ns.PhoneComment = core.CleanStringPtr(ns.PhoneComment)
	ns.Email = core.CleanStringPtr(ns.Email, true /* lower */)
	ns.BirthDate = core.CleanStringPtr(ns.BirthDate)
	ns.Gender = cleanGender(ns.Gender)
	ns.Address = core.CleanStringPtr(ns.Address)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	ns.Comment = core.CleanStringPtr(ns.Comment)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank names, status and a nil balance keep their stored value; the optional fields are overwritten.
type UpdateStudent struct {
	FirstName    string   `json:"first_name" validate:"omitempty,max=100"`
	LastName     string   `json:"last_name" validate:"omitempty,max=100"`
	MiddleName   *string  `json:"middle_name" validate:"omitempty,max=100"`
	Phone        *string  `json:"phone" validate:"omitempty,max=20"`
	PhoneComment *string  `json:"phone_comment" validate:"omitempty,max=255"`
	Email        *string  `json:"email" validate:"omitempty,email,max=100"`
	BirthDate    *string  `json:"birth_date" validate:"omitempty,date"`
	Gender       *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	Status       string   `json:"status" validate:"omitempty,oneof=active selecting_group on_vacation studying_elsewhere dissatisfied not_interested moved archived"`
	Balance      *float64 `json:"balance"`
	Comment      *string  `json:"comment"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.MiddleName = core.CleanStringPtr(us.MiddleName)
	us.Phone = core.CleanStringPtr(us.Phone)
	us.PhoneComment = core.CleanStringPtr(us.PhoneComment)
	us.Email = core.CleanStringPtr(us.Email, true /* lower */)
	us.BirthDate = core.CleanStringPtr(us.BirthDate)
	us.Gender = cleanGender(us.Gender)
	us.Address = core.CleanStringPtr(us.Address)
	us.Status = core.CleanString(us.Status, true /* lower */)
	us.Comment = core.CleanStringPtr(us.Comment)
	return validate.Struct(us)
}

// cleanGender maps the short spreadsheet codes (m, f, м, ж) to the stored values.
func cleanGender(g *string) *string {
	g = core.CleanStringPtr(g, true /* lower */)
	if g == nil {
		return nil
	}
	switch *g {
	case "m", "м", "муж", "мужской":
		return core.StringPtr(GenderMale)
	case "f", "ж", "жен", "женский":
		return core.StringPtr(GenderFemale)
	}
	return g
}
