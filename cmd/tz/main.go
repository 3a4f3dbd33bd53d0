// Package main implements the tz CLI for querying and converting timezones.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/tzapi/pkg/client"
	"github.com/codeGROOVE-dev/tzapi/pkg/constants"
	"github.com/codeGROOVE-dev/tzapi/pkg/httpcache"
	"github.com/codeGROOVE-dev/tzapi/pkg/tzconvert"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// evaluator answers the three queries, either through a server or in-process.
type evaluator interface {
	CurrentTime(ctx context.Context, zone string) (string, error)
	Convert(ctx context.Context, date, fromTZ, toTZ string) (string, error)
	DateDiff(ctx context.Context, firstDate, firstTZ, secondDate, secondTZ string) (int64, error)
}

type localEvaluator struct {
	engine *tzconvert.Engine
}

func (l localEvaluator) CurrentTime(_ context.Context, zone string) (string, error) {
	r, err := l.engine.Now(zone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Current time in %s: %s", r.Label, r.Formatted()), nil
}

func (l localEvaluator) Convert(_ context.Context, date, fromTZ, toTZ string) (string, error) {
	t, err := l.engine.Convert(tzconvert.ConvertRequest{Date: date, TZ: fromTZ, TargetTZ: toTZ})
	if err != nil {
		return "", err
	}
	return tzconvert.Display(t), nil
}

func (l localEvaluator) DateDiff(_ context.Context, firstDate, firstTZ, secondDate, secondTZ string) (int64, error) {
	return l.engine.Diff(tzconvert.DiffRequest{
		FirstDate:  firstDate,
		FirstTZ:    firstTZ,
		SecondDate: secondDate,
		SecondTZ:   secondTZ,
	})
}

type rootOptions struct {
	server  string
	local   bool
	verbose bool
	noColor bool
}

func (o *rootOptions) evaluator() evaluator {
	if o.local {
		return localEvaluator{engine: tzconvert.New()}
	}

	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	server := o.server
	if server == "" {
		server = os.Getenv("TZAPI_SERVER")
	}
	if server == "" {
		server = constants.DefaultServerURL
	}
	logger.Debug("using server", "url", server)

	return client.New(server,
		client.WithLogger(logger),
		client.WithMemo(httpcache.NewMemo(256, time.Hour, logger)))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tz",
		Short:         "Query the current time and convert timestamps between timezones",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", "", "tzapi server URL (or set TZAPI_SERVER, default "+constants.DefaultServerURL+")")
	cmd.PersistentFlags().BoolVar(&opts.local, "local", false, "evaluate in-process instead of calling a server")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(nowCmd(opts), convertCmd(opts), diffCmd(opts))
	return cmd
}

func nowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "now [ZONE]",
		Short: "Show the current time in ZONE (UTC when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := ""
			if len(args) == 1 {
				zone = args[0]
			}
			text, err := opts.evaluator().CurrentTime(cmd.Context(), zone)
			return report(cmd, text, err)
		},
	}
}

func convertCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert DATE FROM_TZ TO_TZ",
		Short: "Convert DATE (MM.DD.YYYY HH:MM:SS) from FROM_TZ to TO_TZ",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := opts.evaluator().Convert(cmd.Context(), args[0], args[1], args[2])
			return report(cmd, text, err)
		},
	}
}

func diffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff FIRST_DATE FIRST_TZ SECOND_DATE SECOND_TZ",
		Short: "Seconds from FIRST_DATE (MM.DD.YYYY HH:MM:SS) to SECOND_DATE (hh:mmXM YYYY-MM-DD)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := opts.evaluator().DateDiff(cmd.Context(), args[0], args[1], args[2], args[3])
			if err != nil {
				return report(cmd, "", err)
			}
			return report(cmd, fmt.Sprintf("%d seconds (%s)", diff, humanize(diff)), nil)
		},
	}
}

func report(cmd *cobra.Command, text string, err error) error {
	if err != nil {
		printErr(cmd.ErrOrStderr(), err)
		return err
	}
	if _, werr := color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), text); werr != nil {
		return werr
	}
	return nil
}

func printErr(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	if _, werr := red.Fprint(w, "error: "); werr != nil {
		return
	}
	fmt.Fprintln(w, err) //nolint:errcheck // best effort on the error path
}

// humanize renders a signed second count as e.g. "-309d 17h 51m 5s".
func humanize(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	d := secs / 86400
	h := secs % 86400 / 3600
	m := secs % 3600 / 60
	s := secs % 60
	if d > 0 {
		return fmt.Sprintf("%s%dd %dh %dm %ds", sign, d, h, m, s)
	}
	return fmt.Sprintf("%s%dh %dm %ds", sign, h, m, s)
}
