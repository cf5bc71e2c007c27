package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// addCoordinator creates a coordinator account with a generated temporary
// password. Coordinators cannot self-register through the API.
func (cli *commandLine) addCoordinator(firstName, lastName, email string) error {
	ctx := context.Background()
	now := time.Now().UTC()

	usr := user.User{
		FirstName: core.CleanString(firstName),
		LastName:  core.CleanString(lastName),
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleCoordinator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tempPwd := uuid.New().String()
	if err := usr.SetPassword(tempPwd); err != nil {
		return err
	}
	usr, err := cli.usrRepo.CreateUser(ctx, usr)
	if err != nil {
		return err
	}

	fmt.Printf("coordinator %q created (id=%d)\n", usr.Email, usr.ID)
	fmt.Printf("temporary password: %s\n", tempPwd)
	return nil
}
