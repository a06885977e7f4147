package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/config"
	"github.com/guilherme-santos/calbot/internal/parser"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "calbot",
		Short:         "Chat bot that adds events to your Google Calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	flags.String("locale", "es", "language of the messages: "+strings.Join(parser.Default(parser.Options{}).Codes(), ", "))
	flags.String("timezone", "America/Argentina/Buenos_Aires", "IANA time zone used to read and write dates")
	flags.String("calendar-id", "primary", "calendar where events are created")
	flags.String("db", "calbot.db", "sqlite database file")
	flags.String("google-cred", "credentials.json", "credentials file for google")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-format", "text", "text or json")

	for key, flag := range map[string]string{
		"locale":                  "locale",
		"timezone":                "timezone",
		"calendar_id":             "calendar-id",
		"database.path":           "db",
		"google.credentials_file": "google-cred",
		"log.level":               "log-level",
		"log.format":              "log-format",
	} {
		cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(flag)))
	}

	root.AddCommand(
		newServeCommand(a),
		newParseCommand(a),
		newMigrateCommand(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := internal.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	return nil
}
