package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/calbot/internal"
)

// newEvent converts a google event. All-day events only carry a date, which
// is read in loc.
func newEvent(event *calendar.Event, loc *time.Location) *internal.Event {
	e := &internal.Event{
		ID:      event.Id,
		Summary: event.Summary,
		Link:    event.HtmlLink,
	}
	if event.Start != nil {
		e.StartsAt, e.AllDay = eventTime(event.Start, loc)
	}
	if event.End != nil {
		e.EndsAt, _ = eventTime(event.End, loc)
	}
	if event.Reminders != nil {
		e.Reminders.UseDefault = event.Reminders.UseDefault
		for _, o := range event.Reminders.Overrides {
			e.Reminders.Overrides = append(e.Reminders.Overrides, internal.Reminder{
				Method:  internal.ReminderMethod(o.Method),
				Minutes: o.Minutes,
			})
		}
	}
	return e
}

func eventTime(dt *calendar.EventDateTime, loc *time.Location) (t time.Time, allDay bool) {
	if dt.DateTime != "" {
		t, _ = time.Parse(time.RFC3339, dt.DateTime)
		return t, false
	}
	t, _ = time.ParseInLocation(internal.DateFormat, dt.Date, loc)
	return t, true
}

func newGoogleEvent(p *internal.EventPayload) *calendar.Event {
	reminders := &calendar.EventReminders{
		UseDefault: p.Reminders.UseDefault,
	}
	if !p.Reminders.UseDefault {
		// false and 0 are dropped from the request unless forced
		reminders.ForceSendFields = []string{"UseDefault"}
		for _, o := range p.Reminders.Overrides {
			reminders.Overrides = append(reminders.Overrides, &calendar.EventReminder{
				Method:          o.Method.String(),
				Minutes:         o.Minutes,
				ForceSendFields: []string{"Minutes"},
			})
		}
	}

	return &calendar.Event{
		Summary: p.Summary,
		Start: &calendar.EventDateTime{
			DateTime: p.Start.DateTime,
			TimeZone: p.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: p.End.DateTime,
			TimeZone: p.End.TimeZone,
		},
		Reminders: reminders,
	}
}
