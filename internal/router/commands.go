package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/metrics"
)

const commandPrefix = "/"

const (
	CommandStart = "/start"
	CommandHelp  = "/help"
	CommandList  = "/list"
)

// command is only reached by authorized users.
func (r *Router) command(ctx context.Context, sess *Session, text string) Result {
	name, _, _ := strings.Cut(text, " ")

	switch name {
	case CommandHelp:
		return sent(helpText)
	case CommandList:
		return r.list(ctx, sess)
	}
	err := fmt.Errorf("%w: %s", internal.ErrInvalidCommand, name)
	return failed(capitalize(err.Error()), err)
}

func (r *Router) list(ctx context.Context, sess *Session) Result {
	events, err := r.calendar.UpcomingEvents(ctx, sess.Auth, r.limit)
	metrics.CalendarRequests.WithLabelValues("list", metrics.Status(err)).Inc()
	if err != nil {
		return failed(replyUnexpected, fmt.Errorf("listing events: %w", err))
	}
	if len(events) == 0 {
		return sent(replyNoEvents)
	}

	var b strings.Builder
	b.WriteString(replyUpcoming)
	for _, e := range events {
		fmt.Fprintf(&b, "\n%s - %s", r.when(e.StartsAt, e.AllDay), e.Summary)
	}
	return sent(b.String())
}
