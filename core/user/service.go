package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teacher"
)

var (
	ErrNotFound    = core.NewNotFoundError("User not found")
	ErrEmailExists = core.NewConflictError("A user with this email already exists")

	ErrCenterRegistered   = core.NewConflictError("An account already exists. Only one center can be registered.")
	ErrInvalidCredentials = core.NewValidationMessage("Invalid email or password")
	ErrAccountInactive    = core.NewForbiddenError("Account is inactive")
	ErrWrongPassword      = core.NewValidationMessage("Current password is incorrect")
	ErrDeleteSelf         = core.NewForbiddenError("You cannot delete your own account")

	nowFunc = core.Now // mockable
)

type (
	Repository interface {
		CountUsers(ctx context.Context) (int, error)
		// CreateUser returns ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, u User) (User, error)
		// QueryUsers returns all users, newest first.
		QueryUsers(ctx context.Context) ([]View, error)
		GetUser(ctx context.Context, id int64) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser returns ErrEmailExists when the email is taken.
		UpdateUser(ctx context.Context, u User) (User, error)
		SetPassword(ctx context.Context, id int64, hash []byte) error
		SetLastLogin(ctx context.Context, id int64, at string) error
		DeleteUser(ctx context.Context, id int64) error
	}

	Teachers interface {
		Get(ctx context.Context, id int64) (teacher.Teacher, error)
	}

	Service struct {
		repo     Repository
		teachers Teachers
	}
)

func NewService(repo Repository, teachers Teachers) *Service {
	return &Service{repo: repo, teachers: teachers}
}

// CheckRegistrationOpen returns ErrCenterRegistered as soon as any user exists.
func (svc *Service) CheckRegistrationOpen(ctx context.Context) error {
	count, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return ErrCenterRegistered
	}
	return nil
}

// Register creates the admin account. It is refused as soon as any user exists.
func (svc *Service) Register(ctx context.Context, r Register) (User, error) {
	if err := svc.CheckRegistrationOpen(ctx); err != nil {
		return User{}, err
	}

	usr := User{Email: r.Email, Role: core.RoleAdmin, IsActive: true}
	if err := usr.SetPassword(r.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, l Login) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, l.Email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user")
	}
	if err := usr.CheckPassword(l.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountInactive
	}

	now := core.FormatTimestamp(nowFunc())
	if err := svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, errors.Wrap(err, "recording login")
	}
	usr.LastLogin = &now
	return usr, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

func (svc *Service) ChangePassword(ctx context.Context, actor core.Actor, cp ChangePassword) error {
	usr, err := svc.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return errors.Wrap(err, "finding user")
	}
	if err := usr.CheckPassword(cp.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	if err := ValidatePassword("newPassword", cp.NewPassword, usr.Email); err != nil {
		return err
	}
	return svc.setPassword(ctx, usr, cp.NewPassword)
}

// ResetPassword sets a new password without knowing the current one.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "finding user")
	}
	if err := ValidatePassword("password", pwd, usr.Email); err != nil {
		return err
	}
	return svc.setPassword(ctx, usr, pwd)
}

func (svc *Service) setPassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPassword(ctx, usr.ID, usr.PasswordHash)
}

func (svc *Service) List(ctx context.Context) ([]View, error) {
	return svc.repo.QueryUsers(ctx)
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkTeacher(ctx, nu.TeacherID); err != nil {
		return User{}, err
	}
	usr := User{Email: nu.Email, Role: nu.Role, TeacherID: nu.TeacherID, IsActive: true}
	if usr.Role == "" {
		usr.Role = core.RoleTeacher
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) Update(ctx context.Context, id int64, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(err, "finding user")
	}
	if err := svc.checkTeacher(ctx, uu.TeacherID); err != nil {
		return User{}, err
	}
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	usr.TeacherID = uu.TeacherID
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	if actor.UserID == id {
		return ErrDeleteSelf
	}
	if _, err := svc.repo.GetUser(ctx, id); err != nil {
		return errors.Wrap(err, "finding user")
	}
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *Service) checkTeacher(ctx context.Context, teacherID *int64) error {
	if teacherID == nil {
		return nil
	}
	_, err := svc.teachers.Get(ctx, *teacherID)
	return errors.Wrap(err, "finding teacher")
}
