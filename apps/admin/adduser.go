package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

// addUser updates or creates an active user.User with the given role.
func (cli *commandLine) addUser(email, pwd string, role user.Role) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{Email: email}
	}

	usr.Role = role
	usr.IsActive = true
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
