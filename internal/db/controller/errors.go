// Package controller holds the error taxonomy shared by the database controllers.
//
// Every error returned by a controller or by the permission engine is either a
// plain database error or wraps exactly one of the category errors below, so
// callers can branch with errors.Is without knowing the specific cause.
package controller

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is the category of errors for references to missing users, roles or permissions.
	ErrNotFound = errors.New("not found")
	// ErrValidation is the category of errors for mutations that would break an invariant.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is the category of errors for mutations that raced with a concurrent change.
	ErrConflict = errors.New("conflict")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// TranslateWriteError maps constraint violations reported by gorm (opened with
// TranslateError) to ErrConflict. Other errors are returned unchanged.
func TranslateWriteError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errors.Join(ErrConflict, err)
	}

	return err
}
