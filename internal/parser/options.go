package parser

import "time"

const DefaultDuration = time.Hour

// Options are shared by every locale.
type Options struct {
	// Location is where relative dates are resolved and the intent instants
	// are expressed.
	Location *time.Location
	// Duration is used when the message has no end time.
	Duration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	return o
}
