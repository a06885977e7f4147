package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guilherme-santos/calbot/internal"
)

const spanishGrammar = `(?i)^\s*([^,]*?)\s*,\s*` +
	`(?:(hoy|mañana|manana|lun|mar|mi[eé]|jue|vie|s[aá]b|dom)|(ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)\s+(\d{1,2}))` +
	`(?:\s+(\d{1,2})(?::(\d{1,2}))?(?:\s*-\s*(\d{1,2})(?::(\d{1,2}))?)?)?` +
	`(?:\s*,\s*(\d{1,6})\s*([dhm]))?`

// spanishPattern matches "<title>, <date>[ <time>][, <reminder>]". When a
// token reads both as a weekday and a month ("mar") the weekday wins as long
// as the rest of the message still matches.
var spanishPattern = regexp.MustCompile(spanishGrammar + `\s*$`)

// spanishPrefixPattern is tried when the whole message doesn't match: the
// longest valid prefix is used and the rest ignored ("hoy 18hs").
var spanishPrefixPattern = regexp.MustCompile(spanishGrammar)

const (
	groupTitle = iota + 1
	groupDay
	groupMonth
	groupMonthDay
	groupStartHour
	groupStartMin
	groupEndHour
	groupEndMin
	groupReminder
	groupReminderUnit
)

var spanishWeekdays = map[string]time.Weekday{
	"dom": time.Sunday,
	"lun": time.Monday,
	"mar": time.Tuesday,
	"mie": time.Wednesday,
	"mié": time.Wednesday,
	"jue": time.Thursday,
	"vie": time.Friday,
	"sab": time.Saturday,
	"sáb": time.Saturday,
}

var spanishMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

var spanishWeekdayNames = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}

var reminderUnits = map[string]int64{
	"d": 24 * 60,
	"h": 60,
	"m": 1,
}

// Spanish is the "es" locale.
type Spanish struct {
	opts Options
}

func NewSpanish(opts Options) *Spanish {
	return &Spanish{opts: opts.withDefaults()}
}

func (Spanish) Code() string {
	return "es"
}

func (s Spanish) Parse(now time.Time, text string) (internal.Intent, bool) {
	m := spanishPattern.FindStringSubmatch(text)
	if m == nil {
		m = spanishPrefixPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return internal.Intent{}, false
	}

	title := strings.TrimSpace(m[groupTitle])
	if title == "" {
		return internal.Intent{}, false
	}

	day, ok := s.day(internal.Today(now, s.opts.Location), m)
	if !ok {
		return internal.Intent{}, false
	}

	startHour, startMin, ok := clock(m[groupStartHour], m[groupStartMin])
	if !ok {
		return internal.Intent{}, false
	}
	start := day.At(startHour, startMin)

	end := start.Add(s.opts.Duration)
	if m[groupEndHour] != "" {
		endHour, endMin, ok := clock(m[groupEndHour], m[groupEndMin])
		if !ok {
			return internal.Intent{}, false
		}
		end = day.At(endHour, endMin)
		if end.Before(start) {
			// overnight, e.g. "vie 22-2"
			end = day.AddDate(0, 0, 1).At(endHour, endMin)
		}
	}

	intent := internal.Intent{
		Title: title,
		Start: start,
		End:   end,
	}
	if m[groupReminder] != "" {
		n, err := strconv.ParseInt(m[groupReminder], 10, 64)
		if err != nil {
			return internal.Intent{}, false
		}
		minutes := n * reminderUnits[strings.ToLower(m[groupReminderUnit])]
		intent.ReminderMinutes = &minutes
	}
	return intent, true
}

func (s Spanish) day(today internal.Date, m []string) (internal.Date, bool) {
	if token := strings.ToLower(m[groupDay]); token != "" {
		switch token {
		case "hoy":
			return today, true
		case "mañana", "manana":
			return today.AddDate(0, 0, 1), true
		}
		wd, ok := spanishWeekdays[token]
		if !ok {
			return internal.Date{}, false
		}
		// Asking for today's weekday means today, not next week.
		offset := (int(wd) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, offset), true
	}

	month := monthOf(strings.ToLower(m[groupMonth]))
	if month == 0 {
		return internal.Date{}, false
	}
	d, err := strconv.Atoi(m[groupMonthDay])
	if err != nil || !internal.Valid(today.Year(), month, d) {
		return internal.Date{}, false
	}
	return internal.NewDate(today.Year(), month, d, today.Location()), true
}

func (s Spanish) FormatDate(t time.Time) string {
	t = t.In(s.opts.Location)
	return fmt.Sprintf("%s %d %s", spanishWeekdayNames[t.Weekday()], t.Day(), spanishMonths[t.Month()-1])
}

func (s Spanish) FormatTime(t time.Time) string {
	t = t.In(s.opts.Location)
	return s.FormatDate(t) + " " + t.Format("15:04")
}

func monthOf(abbrev string) time.Month {
	for i, m := range spanishMonths {
		if m == abbrev {
			return time.Month(i + 1)
		}
	}
	return 0
}

// clock validates an "H[:MM]" pair; an empty hour means midnight.
func clock(hour, min string) (int, int, bool) {
	var h, m int
	if hour != "" {
		h, _ = strconv.Atoi(hour)
	}
	if min != "" {
		m, _ = strconv.Atoi(min)
	}
	if h > 23 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
