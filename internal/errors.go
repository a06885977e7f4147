package internal

import (
	"errors"
	"fmt"
)

var ErrInvalidCommand = errors.New("invalid command")

// AuthError is returned when an authorization code can't be exchanged.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unable to retrieve access token: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError is returned when the calendar rejects a request.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
