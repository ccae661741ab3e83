package auth

import (
	"errors"
	"fmt"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
)

var (
	// ErrEmptyRoleSet is returned when a mutation would leave a user without any role.
	ErrEmptyRoleSet = fmt.Errorf("%w: a user must hold at least one role", controller.ErrValidation)

	// ErrConfirmationRequired is returned when deleting a role that users still hold without confirmation.
	ErrConfirmationRequired = fmt.Errorf("%w: role is still assigned, deletion must be confirmed", controller.ErrValidation)

	// ErrSetChanged is returned when a set replacement found fewer rows to delete than it read,
	// meaning another writer changed the set concurrently.
	ErrSetChanged = fmt.Errorf("%w: assignment set changed concurrently", controller.ErrConflict)

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")
)
