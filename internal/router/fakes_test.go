package router

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/parser"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[int64]*internal.Session
	writes   int
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]*internal.Session)}
}

func (s *fakeStore) Session(_ context.Context, userID int64) (*internal.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeStore) CreateSession(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	s.sessions[userID] = &internal.Session{UserID: userID}
	return nil
}

func (s *fakeStore) UpdateCredentials(_ context.Context, userID int64, auth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	sess, ok := s.sessions[userID]
	if !ok {
		return errors.New("no session")
	}
	sess.Auth = auth
	return nil
}

func (s *fakeStore) authorize(userID int64, auth string) {
	s.sessions[userID] = &internal.Session{UserID: userID, Auth: auth}
}

type fakeAuth struct {
	codes     map[string]string
	exchanges int
	err       error
}

func (a *fakeAuth) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (a *fakeAuth) Exchange(_ context.Context, code string) (string, error) {
	a.exchanges++
	if a.err != nil {
		return "", a.err
	}
	tok, ok := a.codes[code]
	if !ok {
		return "", &internal.AuthError{Err: errors.New("invalid_grant")}
	}
	return tok, nil
}

type fakeCalendar struct {
	created  []*internal.EventPayload
	upcoming []*internal.Event
	auths    []string
	limit    int
	err      error
}

func (c *fakeCalendar) CreateEvent(_ context.Context, auth string, p *internal.EventPayload) (*internal.Event, error) {
	c.auths = append(c.auths, auth)
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, p)

	start, _ := time.Parse(time.RFC3339, p.Start.DateTime)
	end, _ := time.Parse(time.RFC3339, p.End.DateTime)
	return &internal.Event{
		ID:        "evt1",
		Summary:   p.Summary,
		StartsAt:  start,
		EndsAt:    end,
		Reminders: p.Reminders,
		Link:      "https://calendar.example.com/evt1",
	}, nil
}

func (c *fakeCalendar) UpcomingEvents(_ context.Context, auth string, limit int) ([]*internal.Event, error) {
	c.auths = append(c.auths, auth)
	c.limit = limit
	if c.err != nil {
		return nil, c.err
	}
	return c.upcoming, nil
}

type sentMessage struct {
	userID int64
	text   string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (s *fakeSender) Send(_ context.Context, userID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{userID, text})
	return nil
}

func (s *fakeSender) last() string {
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].text
}

// spyLocale counts how many times the grammar was consulted.
type spyLocale struct {
	parser.Locale
	calls int
}

func (l *spyLocale) Parse(now time.Time, text string) (internal.Intent, bool) {
	l.calls++
	return l.Locale.Parse(now, text)
}
