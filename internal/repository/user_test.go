package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicateEntryError(t *testing.T) {
	if isDuplicateEntryError(nil) {
		t.Error("nil error should not be a duplicate entry error")
	}
	if isDuplicateEntryError(ErrUserNotFound) {
		t.Error("ErrUserNotFound should not be a duplicate entry error")
	}
	if !isDuplicateEntryError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Error("MySQL error 1062 should be a duplicate entry error")
	}
	if isDuplicateEntryError(&mysql.MySQLError{Number: 1452}) {
		t.Error("MySQL error 1452 should not be a duplicate entry error")
	}

	wrapped := errors.Join(errors.New("exec failed"), &mysql.MySQLError{Number: 1062})
	if !isDuplicateEntryError(wrapped) {
		t.Error("wrapped MySQL error 1062 should be a duplicate entry error")
	}
}

func TestNewUserRepository(t *testing.T) {
	repo := NewUserRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil UserRepository")
	}
}
