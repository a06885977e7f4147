// Package router decides what to do with each chat message based on where
// the user is in the authorization flow.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/metrics"
	"github.com/guilherme-santos/calbot/internal/parser"
)

const DefaultListLimit = 10

type (
	Message = internal.Message
	Session = internal.Session
	State   = internal.State
)

// Builder shapes an intent into a calendar request.
type Builder interface {
	Build(internal.Intent) *internal.EventPayload
}

// Sender delivers replies to the user.
type Sender interface {
	Send(_ context.Context, userID int64, text string) error
}

type Options struct {
	Locale   parser.Locale
	Builder  Builder
	Sessions internal.SessionStore
	Auth     internal.Authenticator
	Calendar internal.Calendar
	Sender   Sender
	Logger   *slog.Logger

	// Now is the clock used to resolve relative dates, time.Now if nil.
	Now       func() time.Time
	ListLimit int
}

type Router struct {
	locale   parser.Locale
	builder  Builder
	sessions internal.SessionStore
	auth     internal.Authenticator
	calendar internal.Calendar
	sender   Sender
	logger   *slog.Logger
	now      func() time.Time
	limit    int
}

func New(opts Options) (*Router, error) {
	switch {
	case opts.Locale == nil:
		return nil, errors.New("router: locale is required")
	case opts.Builder == nil:
		return nil, errors.New("router: builder is required")
	case opts.Sessions == nil:
		return nil, errors.New("router: session store is required")
	case opts.Auth == nil:
		return nil, errors.New("router: authenticator is required")
	case opts.Calendar == nil:
		return nil, errors.New("router: calendar is required")
	case opts.Sender == nil:
		return nil, errors.New("router: sender is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	return &Router{
		locale:   opts.Locale,
		builder:  opts.Builder,
		sessions: opts.Sessions,
		auth:     opts.Auth,
		calendar: opts.Calendar,
		sender:   opts.Sender,
		logger:   opts.Logger,
		now:      opts.Now,
		limit:    opts.ListLimit,
	}, nil
}

// Handle runs one transition of the user's state machine and sends the reply.
// Errors never escape: they end up in Result.Err and in the reply.
func (r *Router) Handle(ctx context.Context, msg Message) Result {
	started := time.Now()
	log := internal.MessageLogger(r.logger, msg)
	text := strings.TrimSpace(msg.Text)

	var res Result
	sess, err := r.sessions.Session(ctx, msg.UserID)
	if err != nil {
		res = failed(replyUnexpected, fmt.Errorf("looking up session: %w", err))
	} else {
		res = r.transition(ctx, log, sess, msg.UserID, text)
		res.From = internal.StateOf(sess)
		switch {
		case res.Outcome != OutcomeStateChanged:
			res.To = res.From
		case res.To == res.From:
			res.Outcome = OutcomeSent
		}
	}

	if res.Reply != "" {
		if err := r.sender.Send(ctx, msg.UserID, res.Reply); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = errors.Join(res.Err, fmt.Errorf("sending reply: %w", err))
		}
	}

	metrics.Transitions.WithLabelValues(res.From.String(), res.Outcome.String()).Inc()
	metrics.HandleDuration.Observe(time.Since(started).Seconds())

	attrs := []any{
		slog.String("from", res.From.String()),
		slog.String("to", res.To.String()),
		slog.String("outcome", res.Outcome.String()),
		slog.Duration("took", time.Since(started)),
	}
	if res.Err != nil {
		log.Error("message failed", append(attrs, slog.Any("err", res.Err))...)
	} else {
		log.Info("message handled", attrs...)
	}
	return res
}

func (r *Router) transition(ctx context.Context, log *slog.Logger, sess *Session, userID int64, text string) Result {
	name, _, _ := strings.Cut(text, " ")
	switch {
	case sess == nil || name == CommandStart:
		return r.requestAuthorization(ctx, userID)
	case !sess.Authorized():
		return r.authorize(ctx, userID, text)
	case strings.HasPrefix(text, commandPrefix):
		return r.command(ctx, sess, text)
	default:
		return r.createEvent(ctx, log, sess, text)
	}
}

func (r *Router) requestAuthorization(ctx context.Context, userID int64) Result {
	if err := r.sessions.CreateSession(ctx, userID); err != nil {
		return failed(replyUnexpected, fmt.Errorf("creating session: %w", err))
	}
	url := r.auth.AuthURL("calbot-" + strconv.FormatInt(userID, 10))
	return changed(internal.StatePendingAuth, replyAuthorize+url)
}

func (r *Router) authorize(ctx context.Context, userID int64, code string) Result {
	auth, err := r.auth.Exchange(ctx, code)
	if err != nil {
		var authErr *internal.AuthError
		if errors.As(err, &authErr) {
			return failed(capitalize(authErr.Error()), err)
		}
		return failed(replyUnexpected, err)
	}
	if err := r.sessions.UpdateCredentials(ctx, userID, auth); err != nil {
		return failed(replyUnexpected, fmt.Errorf("saving credentials: %w", err))
	}
	return changed(internal.StateAuthorized, replyAuthorized)
}

func (r *Router) createEvent(ctx context.Context, log *slog.Logger, sess *Session, text string) Result {
	intent, ok := r.locale.Parse(r.now(), text)
	if !ok {
		metrics.ParseFailures.WithLabelValues(r.locale.Code()).Inc()
		return sent(replyParseFailure)
	}
	payload := r.builder.Build(intent)
	log.Debug("creating event", slog.String("summary", payload.Summary), slog.String("start", payload.Start.DateTime))

	event, err := r.calendar.CreateEvent(ctx, sess.Auth, payload)
	metrics.CalendarRequests.WithLabelValues("create", metrics.Status(err)).Inc()
	if err != nil {
		return failed(replyUnexpected, fmt.Errorf("creating event: %w", err))
	}
	return sent(replyCreated + r.describe(event))
}

func (r *Router) describe(e *internal.Event) string {
	var b strings.Builder
	b.WriteString(e.Summary)
	b.WriteString("\nComienza: " + r.when(e.StartsAt, e.AllDay))
	b.WriteString("\nFinaliza: " + r.when(e.EndsAt, e.AllDay))

	reminders := []string{}
	if e.Reminders.UseDefault {
		reminders = append(reminders, "default")
	}
	for _, o := range e.Reminders.Overrides {
		reminder := fmt.Sprintf("%d minutos antes", o.Minutes)
		if o.Method == internal.ReminderEmail {
			reminder += " por email"
		}
		reminders = append(reminders, reminder)
	}
	if len(reminders) > 0 {
		b.WriteString("\nRecordatorios: " + strings.Join(reminders, ", "))
	}
	if e.Link != "" {
		b.WriteString("\nLink: " + e.Link)
	}
	return b.String()
}

func (r *Router) when(t time.Time, allDay bool) string {
	if allDay {
		return r.locale.FormatDate(t)
	}
	return r.locale.FormatTime(t)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
