package internal

import "time"

// Message is a single inbound chat message.
type Message struct {
	ID         string
	UserID     int64
	Text       string
	ReceivedAt time.Time
}

// Intent is what the user asked for, before it is shaped for the calendar.
type Intent struct {
	Title string
	Start time.Time
	End   time.Time
	// ReminderMinutes is nil when the user did not ask for a reminder.
	ReminderMinutes *int64
}

func (i Intent) HasReminder() bool {
	return i.ReminderMinutes != nil
}

// EventPayload is the request sent to the calendar to create an event.
type EventPayload struct {
	CalendarID string        `json:"calendarId"`
	Summary    string        `json:"summary"`
	Start      EventDateTime `json:"start"`
	End        EventDateTime `json:"end"`
	Reminders  Reminders     `json:"reminders"`
}

type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type Reminders struct {
	UseDefault bool       `json:"useDefault"`
	Overrides  []Reminder `json:"overrides,omitempty"`
}

type Reminder struct {
	Method  ReminderMethod `json:"method"`
	Minutes int64          `json:"minutes"`
}

type ReminderMethod string

func (m ReminderMethod) String() string {
	return string(m)
}

var (
	ReminderPopup ReminderMethod = "popup"
	ReminderEmail ReminderMethod = "email"
)

// Event is an event as stored by the calendar.
type Event struct {
	ID        string
	Summary   string
	StartsAt  time.Time
	EndsAt    time.Time
	AllDay    bool
	Reminders Reminders
	Link      string
}
