package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

type User struct {
	ID           int64   `json:"id" db:"id"`
	Email        string  `json:"email" db:"email"`
	PasswordHash []byte  `json:"-" db:"password_hash"`
	Role         string  `json:"role" db:"role"`
	TeacherID    *int64  `json:"teacher_id" db:"teacher_id"`
	IsActive     bool    `json:"is_active" db:"is_active"`
	LastLogin    *string `json:"last_login" db:"last_login"`
	CreatedAt    string  `json:"created_at" db:"created_at"`
	UpdatedAt    string  `json:"updated_at" db:"updated_at"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Actor returns the identity carried by the user's tokens.
func (u User) Actor() core.Actor {
	return core.Actor{UserID: u.ID, Email: u.Email, Role: u.Role, TeacherID: u.TeacherID}
}

// View is a User joined with the name of its linked teacher.
type View struct {
	User
	TeacherFirstName *string `json:"teacher_first_name" db:"teacher_first_name"`
	TeacherLastName  *string `json:"teacher_last_name" db:"teacher_last_name"`
}

// Register creates the single admin account of the center.
type Register struct {
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (r *Register) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

type Login struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return validate.Struct(l)
}

type ChangePassword struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=admin teacher"`
	TeacherID *int64 `json:"teacher_id" validate:"omitempty,gt=0"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Blank email and role and a nil is_active keep their stored value; teacher_id is overwritten.
type UpdateUser struct {
	Email     string `json:"email" validate:"omitempty,email,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=admin teacher"`
	IsActive  *bool  `json:"is_active"`
	TeacherID *int64 `json:"teacher_id" validate:"omitempty,gt=0"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = core.CleanString(uu.Role, true /* lower */)
	return validate.Struct(uu)
}
