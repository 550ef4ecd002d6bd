package testutil

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
	logsvc "github.com/Tatyana-Kavardaeva/My-LMS/services/logger"
)

// NewLogger returns a logger that only writes to stderr; rollbar stays disabled in test mode.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stderr, "TEST : ", log.LstdFlags|log.Lshortfile), conf)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, email, pwd string,
	role user.Role,
	isActive bool,
) user.User {
	now := time.Now().UTC()
	usr := user.User{
		FirstName: firstName,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
