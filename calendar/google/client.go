package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/calbot/internal"
)

const (
	defaultSleep = 5 * time.Second
	maxRetries   = 3
)

type Options struct {
	// CalendarID is the calendar listed by UpcomingEvents, "primary" if empty.
	CalendarID string
	// Location is used for all-day events, which carry no zone.
	Location *time.Location
	Logger   *slog.Logger
}

// Client is both the OAuth authenticator and the calendar of the bot.
type Client struct {
	oauthCfg   *oauth2.Config
	calendarID string
	loc        *time.Location
	logger     *slog.Logger
	sleep      time.Duration
	now        func() time.Time
	svcOpts    []option.ClientOption
}

var (
	_ internal.Authenticator = (*Client)(nil)
	_ internal.Calendar      = (*Client)(nil)
)

// NewClient reads the OAuth client from a credentials file as downloaded from
// the Google Cloud console.
func NewClient(credJSON []byte, opts Options) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		oauthCfg:   oauthCfg,
		calendarID: opts.CalendarID,
		loc:        opts.Location,
		logger:     opts.Logger.With(slog.String("component", "google")),
		sleep:      defaultSleep,
		now:        time.Now,
	}, nil
}

func (c Client) AuthURL(state string) string {
	return c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c Client) Exchange(ctx context.Context, code string) (string, error) {
	token, err := c.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", &internal.AuthError{Err: err}
	}
	v, err := json.Marshal(token)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (c Client) CreateEvent(ctx context.Context, auth string, p *internal.EventPayload) (*internal.Event, error) {
	svc, err := c.calendarSvc(ctx, auth)
	if err != nil {
		return nil, err
	}

	var gevent *calendar.Event
	err = c.retry(ctx, "insert", func() error {
		gevent, err = svc.Events.Insert(p.CalendarID, newGoogleEvent(p)).Context(ctx).Do()
		return err
	})
	if err != nil {
		c.logger.Error("unable to create event", slog.String("summary", p.Summary), slog.Any("err", err))
		return nil, &internal.APIError{Op: "insert", Err: err}
	}
	c.logger.Debug("event created", slog.String("id", gevent.Id), slog.String("summary", gevent.Summary))
	return newEvent(gevent, c.loc), nil
}

func (c Client) UpcomingEvents(ctx context.Context, auth string, limit int) ([]*internal.Event, error) {
	svc, err := c.calendarSvc(ctx, auth)
	if err != nil {
		return nil, err
	}

	var events *calendar.Events
	err = c.retry(ctx, "list", func() error {
		events, err = svc.Events.
			List(c.calendarID).
			Context(ctx).
			TimeMin(c.now().Format(time.RFC3339)).
			MaxResults(int64(limit)).
			SingleEvents(true).
			OrderBy("startTime").
			Do()
		return err
	})
	if err != nil {
		c.logger.Error("unable to get list of events", slog.Any("err", err))
		return nil, &internal.APIError{Op: "list", Err: err}
	}

	res := make([]*internal.Event, 0, len(events.Items))
	for _, item := range events.Items {
		res = append(res, newEvent(item, c.loc))
	}
	return res, nil
}

// retry repeats fn while google answers with a rate limit error.
func (c Client) retry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !shouldRetry(err) || attempt == maxRetries {
			return err
		}
		c.logger.Warn("rate limited, retrying", slog.String("op", op), slog.Int("attempt", attempt+1))

		select {
		case <-time.After(c.sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c Client) calendarSvc(ctx context.Context, auth string) (*calendar.Service, error) {
	var tok *oauth2.Token
	err := json.Unmarshal([]byte(auth), &tok)
	if err != nil {
		return nil, fmt.Errorf("google: decoding token: %w", err)
	}
	httpClient := c.oauthCfg.Client(ctx, tok)
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.svcOpts...)
	return calendar.NewService(ctx, opts...)
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
