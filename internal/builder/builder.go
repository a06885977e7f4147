// Package builder shapes a parsed intent into the request sent to the
// calendar.
package builder

import (
	"time"

	"github.com/guilherme-santos/calbot/internal"
)

const PrimaryCalendar = "primary"

type Options struct {
	CalendarID string
	Location   *time.Location
}

type Builder struct {
	calendarID string
	loc        *time.Location
}

func New(opts Options) *Builder {
	if opts.CalendarID == "" {
		opts.CalendarID = PrimaryCalendar
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Builder{
		calendarID: opts.CalendarID,
		loc:        opts.Location,
	}
}

// Build doesn't validate the intent, the parser already guarantees a title
// and an end after the start.
func (b Builder) Build(intent internal.Intent) *internal.EventPayload {
	p := &internal.EventPayload{
		CalendarID: b.calendarID,
		Summary:    intent.Title,
		Start:      b.dateTime(intent.Start),
		End:        b.dateTime(intent.End),
		Reminders: internal.Reminders{
			UseDefault: true,
		},
	}
	if intent.HasReminder() {
		p.Reminders = internal.Reminders{
			UseDefault: false,
			Overrides: []internal.Reminder{
				{Method: internal.ReminderPopup, Minutes: *intent.ReminderMinutes},
			},
		}
	}
	return p
}

func (b Builder) dateTime(t time.Time) internal.EventDateTime {
	return internal.EventDateTime{
		DateTime: t.In(b.loc).Format(time.RFC3339),
		TimeZone: b.loc.String(),
	}
}
