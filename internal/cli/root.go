// Package cli implements the fitlevel command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"fitlevel/internal/config"
	"fitlevel/internal/domain"
	"fitlevel/internal/logging"
	"fitlevel/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	cfg *config.Config
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fitlevel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fitlevel",
		Short: "Daily fitness level tracker",
		Long: `fitlevel tracks workouts and turns them into a daily level between 0 and 10.

A workout raises the level by one, a missed day lowers it by one and a rest day
holds it. Past days are committed by a finalization pass that runs when the
app is opened and on a nightly schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid config", err)
			}
			opts.cfg = cfg
			setupLogging(cfg, opts.Verbose, cmd.Name() == "serve", cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the TOML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFinalizeCommand(opts))
	cmd.AddCommand(NewRecomputeCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}

// setupLogging keeps command output clean: one-shot commands log to errOut
// unless a log file is configured.
func setupLogging(cfg *config.Config, verbose, serving bool, errOut io.Writer) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout && serving,
		LogLevel:      level,
		LogFormatJSON: cfg.LogJSON,
	})
	if !serving && cfg.LogFile == "" {
		log.SetOutput(errOut)
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// withServices opens the configured store for the duration of fn.
func (o *RootOptions) withServices(ctx context.Context, fn func(ctx context.Context, st Store, m *metrics.Manager) error) (err error) {
	st, err := openStore(o.cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()

	m := metrics.NewManager("fitlevel", "cli", prometheus.NewRegistry())
	return fn(ctx, st, m)
}

func todayOr(v string) (string, error) {
	if v == "" {
		return domain.LocalDay(time.Now()), nil
	}
	if _, err := domain.ParseDay(v); err != nil {
		return "", WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return v, nil
}
