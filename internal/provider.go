package internal

import (
	"context"
)

// Calendar creates and lists events on behalf of an authorized user. auth is
// the serialized token kept in Session.Auth.
type Calendar interface {
	CreateEvent(_ context.Context, auth string, _ *EventPayload) (*Event, error)
	UpcomingEvents(_ context.Context, auth string, limit int) ([]*Event, error)
}

// Authenticator runs the OAuth authorization code flow.
type Authenticator interface {
	AuthURL(state string) string
	// Exchange trades the code the user pasted for a serialized token. Failures
	// are returned as *AuthError.
	Exchange(_ context.Context, code string) (string, error)
}

// SessionStore persists sessions. Session returns nil, nil when the user has
// none yet.
type SessionStore interface {
	Session(_ context.Context, userID int64) (*Session, error)
	CreateSession(_ context.Context, userID int64) error
	UpdateCredentials(_ context.Context, userID int64, auth string) error
}

// Gateway is a chat transport.
type Gateway interface {
	Receive(context.Context) (<-chan Message, error)
	Send(_ context.Context, userID int64, text string) error
}
