package main

import (
	"context"

	"github.com/trezcool/bajeti/core/user"
)

// addUser creates a new user.User after running the full validation chain.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Name:            uname,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if isAdmin {
		nu.Roles = user.AllRoles
	}
	if err := nu.Validate(cli.usrSvc); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(context.Background(), nu)
	return err
}
