package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teacher"
	"github.com/trezcool/darasa/core/user"
)

// demo accounts
const (
	seedAdminEmail   = "admin@example.com"
	seedAdminPwd     = "admin123"
	seedTeacherEmail = "teacher@school.com"
	seedTeacherPwd   = "teacher123"
)

// seed creates the demo admin and teacher accounts. Running it again resets their passwords.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if _, err := cli.seedUser(ctx, seedAdminEmail, seedAdminPwd, core.RoleAdmin, nil); err != nil {
		return err
	}
	fmt.Printf("Admin: %s / %s\n", seedAdminEmail, seedAdminPwd)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, seedTeacherEmail)
	switch {
	case err == nil && usr.TeacherID != nil:
		_, err = cli.seedUser(ctx, seedTeacherEmail, seedTeacherPwd, core.RoleTeacher, usr.TeacherID)
	case err == nil || core.IsNotFound(err):
		var tchr teacher.Teacher
		tchr, err = cli.teacherRepo.CreateTeacher(ctx, teacher.Teacher{
			FirstName:  "Иван",
			LastName:   "Иванов",
			MiddleName: core.StringPtr("Петрович"),
			Phone:      core.StringPtr("+79001234567"),
			Email:      core.StringPtr(seedTeacherEmail),
			Status:     teacher.StatusActive,
		})
		if err != nil {
			return errors.Wrap(err, "creating demo teacher")
		}
		_, err = cli.seedUser(ctx, seedTeacherEmail, seedTeacherPwd, core.RoleTeacher, &tchr.ID)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Teacher: %s / %s\n", seedTeacherEmail, seedTeacherPwd)
	return nil
}

// seedUser creates the account, or refreshes an existing one with the same email.
func (cli *commandLine) seedUser(ctx context.Context, email, pwd, role string, teacherID *int64) (user.User, error) {
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil && !core.IsNotFound(err) {
		return user.User{}, errors.Wrapf(err, "finding %s", email)
	}
	exists := err == nil

	usr.Email = email
	usr.Role = role
	usr.TeacherID = teacherID
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}
	if exists {
		hash := usr.PasswordHash
		if usr, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
			return user.User{}, errors.Wrapf(err, "updating %s", email)
		}
		return usr, errors.Wrapf(cli.usrRepo.SetPassword(ctx, usr.ID, hash), "updating %s", email)
	}
	usr, err = cli.usrRepo.CreateUser(ctx, usr)
	return usr, errors.Wrapf(err, "creating %s", email)
}
