package main

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser creates an account with the same rules as the users API.
func (cli *commandLine) addUser(email, pwd, role string, teacherID int64) (user.User, error) {
	nu := user.NewUser{Email: email, Password: pwd, Role: role}
	if teacherID != 0 {
		nu.TeacherID = &teacherID
	}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, core.NewValidationError(nil, core.TranslateFieldErrors(err, cli.translator)...)
	}
	return cli.usrSvc.Create(context.Background(), nu)
}
