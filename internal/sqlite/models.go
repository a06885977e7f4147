package sqlite

import (
	"time"

	"github.com/guilherme-santos/calbot/internal"
)

type Session struct {
	UserID    int64     `db:"user_id"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s Session) Convert() *internal.Session {
	return &internal.Session{
		UserID:    s.UserID,
		Auth:      s.Auth,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
