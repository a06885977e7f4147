package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/guilherme-santos/calbot/internal"
)

const DriverName = "sqlite3"

type Storage struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ internal.SessionStore = (*Storage)(nil)

func NewStorage(db *sql.DB) (*Storage, error) {
	s := &Storage{
		db:  sqlx.NewDb(db, DriverName),
		now: time.Now,
	}
	if err := s.RunMigrations(); err != nil {
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return s, nil
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Storage, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}
	return NewStorage(db)
}

func (s Storage) Close() error {
	return s.db.Close()
}

func (s Storage) Session(ctx context.Context, userID int64) (*internal.Session, error) {
	var sess Session
	err := s.db.GetContext(ctx, &sess, `
		SELECT user_id, auth, created_at, updated_at
		FROM sessions
		WHERE user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.Convert(), nil
}

// CreateSession leaves the user waiting for authorization, dropping any
// credentials a previous session had.
func (s Storage) CreateSession(ctx context.Context, userID int64) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, auth, created_at, updated_at) VALUES (?, '', ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET auth = '', updated_at = ?;
	`, userID, now, now, now)
	return err
}

func (s Storage) UpdateCredentials(ctx context.Context, userID int64, auth string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET auth = ?, updated_at = ? WHERE user_id = ?
	`, auth, s.now().UTC(), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sqlite: no session for user %d", userID)
	}
	return nil
}
