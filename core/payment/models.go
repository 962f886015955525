package payment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Methods
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodOther    = "other"
)

// Statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

const statsWindowDays = 30

type Payment struct {
	ID            int64   `json:"id" db:"id"`
	StudentID     int64   `json:"student_id" db:"student_id"`
	LessonID      *int64  `json:"lesson_id" db:"lesson_id"`
	Amount        float64 `json:"amount" db:"amount"`
	PaymentDate   string  `json:"payment_date" db:"payment_date"`
	PaymentMethod string  `json:"payment_method" db:"payment_method"`
	Status        string  `json:"status" db:"status"`
	Notes         *string `json:"notes" db:"notes"`
	CreatedAt     string  `json:"created_at" db:"created_at"`
	UpdatedAt     string  `json:"updated_at" db:"updated_at"`
}

// View is a Payment joined with its student and, when tied to one, its lesson and teacher.
type View struct {
	Payment
	StudentFirstName  string  `json:"student_first_name" db:"student_first_name"`
	StudentLastName   string  `json:"student_last_name" db:"student_last_name"`
	StudentMiddleName *string `json:"student_middle_name" db:"student_middle_name"`
	StudentPhone      *string `json:"student_phone" db:"student_phone"`
	LessonSubject     *string `json:"lesson_subject" db:"lesson_subject"`
	LessonDate        *string `json:"lesson_date" db:"lesson_date"`
	TeacherID         *int64  `json:"teacher_id" db:"teacher_id"`
	TeacherFirstName  *string `json:"teacher_first_name" db:"teacher_first_name"`
	TeacherLastName   *string `json:"teacher_last_name" db:"teacher_last_name"`
}

type Stats struct {
	TotalPayments   int     `json:"total_payments" db:"total_payments"`
	TotalAmount     float64 `json:"total_amount" db:"total_amount"`
	PendingAmount   float64 `json:"pending_amount" db:"pending_amount"`
	CancelledAmount float64 `json:"cancelled_amount" db:"cancelled_amount"`
	AmountLastMonth float64 `json:"amount_last_month" db:"amount_last_month"`
}

// NewPayment contains information needed to record a new Payment.
type NewPayment struct {
	StudentID     int64   `json:"student_id" validate:"required,gt=0"`
	LessonID      *int64  `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate   string  `json:"payment_date" validate:"required,date"`
	PaymentMethod string  `json:"payment_method" validate:"omitempty,oneof=cash card transfer other"`
	Status        string  `json:"status" validate:"omitempty,oneof=completed pending cancelled"`
	Notes         *string `json:"notes"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PaymentDate = core.CleanString(np.PaymentDate)
	np.PaymentMethod = core.CleanString(np.PaymentMethod, true /* lower */)
	np.Status = core.CleanString(np.Status, true /* lower */)
	np.Notes = core.CleanStringPtr(np.Notes)
	return validate.Struct(np)
}

// UpdatePayment defines what information may be provided to modify an existing Payment.
// Zero values keep the stored value, except notes which are overwritten.
type UpdatePayment struct {
	StudentID     int64    `json:"student_id" validate:"omitempty,gt=0"`
	LessonID      *int64   `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount        *float64 `json:"amount" validate:"omitempty,gt=0"`
	PaymentDate   string   `json:"payment_date" validate:"omitempty,date"`
	PaymentMethod string   `json:"payment_method" validate:"omitempty,oneof=cash card transfer other"`
	Status        string   `json:"status" validate:"omitempty,oneof=completed pending cancelled"`
	Notes         *string  `json:"notes"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	up.PaymentDate = core.CleanString(up.PaymentDate)
	up.PaymentMethod = core.CleanString(up.PaymentMethod, true /* lower */)
	up.Status = core.CleanString(up.Status, true /* lower */)
	up.Notes = core.CleanStringPtr(up.Notes)
	return validate.Struct(up)
}

type QueryFilter struct {
	StudentID *int64
	Status    string
	StartDate string
	EndDate   string
	TeacherID *int64
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.StartDate = core.CleanString(qf.StartDate)
	qf.EndDate = core.CleanString(qf.EndDate)
}
