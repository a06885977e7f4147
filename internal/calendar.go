package internal

import (
	"strconv"
	"time"
)

// Session is the durable per-user record of the calendar authorization.
type Session struct {
	UserID int64
	// Auth holds the serialized OAuth token, empty while the user has not
	// completed the authorization.
	Auth      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) Authorized() bool {
	return s != nil && s.Auth != ""
}

func (s Session) String() string {
	return strconv.FormatInt(s.UserID, 10)
}

// State is where a user is in the authorization flow.
type State int

const (
	StateNew State = iota
	StatePendingAuth
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePendingAuth:
		return "pending_auth"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// StateOf derives the state from a session looked up in the store, nil
// meaning no session was found.
func StateOf(s *Session) State {
	switch {
	case s == nil:
		return StateNew
	case s.Authorized():
		return StateAuthorized
	default:
		return StatePendingAuth
	}
}
