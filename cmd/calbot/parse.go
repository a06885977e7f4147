package main

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/builder"
	"github.com/guilherme-santos/calbot/internal/parser"
)

type parseOutput struct {
	Intent  intentOutput           `json:"intent"`
	Payload *internal.EventPayload `json:"payload"`
}

type intentOutput struct {
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	ReminderMinutes *int64    `json:"reminderMinutes,omitempty"`
}

func newParseCommand(a *app) *cobra.Command {
	var (
		now   string
		today internal.Date
	)

	cmd := &cobra.Command{
		Use:     "parse <text>",
		Short:   "Show the event a message would create, without creating it",
		Example: `  calbot parse "entrevista, mañana 9, 12h"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := a.cfg.Location()

			ref := time.Now()
			switch {
			case now != "":
				t, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return err
				}
				ref = t
			case !today.IsZero():
				ref = internal.NewDate(today.Year(), today.Month(), today.Day(), loc).At(12, 0)
			}

			locales := parser.Default(parser.Options{Location: loc, Duration: a.cfg.DefaultDuration})
			locale, err := locales.Get(a.cfg.Locale)
			if err != nil {
				return err
			}

			intent, ok := locale.Parse(ref, strings.Join(args, " "))
			if !ok {
				return errors.New("unable to parse text")
			}
			b := builder.New(builder.Options{CalendarID: a.cfg.CalendarID, Location: loc})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(parseOutput{
				Intent: intentOutput{
					Title:           intent.Title,
					Start:           intent.Start,
					End:             intent.End,
					ReminderMinutes: intent.ReminderMinutes,
				},
				Payload: b.Build(intent),
			})
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "reference instant (RFC3339), defaults to the current time")
	cmd.Flags().Var(&today, "today", "reference day (e.g. 2024-09-11), at noon")
	cmd.MarkFlagsMutuallyExclusive("now", "today")
	return cmd
}
