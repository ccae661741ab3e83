package login

import "errors"

var (
	// ErrInvalidCredentials is the only login failure a client gets to see, whatever
	// went wrong with the username, password or account state.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTooManyAttempts is returned when a client exceeded the login rate limit.
	ErrTooManyAttempts = errors.New("too many login attempts, try again later")
)
