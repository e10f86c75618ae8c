package cli

import (
	"context"
	"errors"
	"fmt"

	"fitlevel/internal/app"
	"fitlevel/internal/domain"
	"fitlevel/internal/metrics"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewFinalizeCommand creates the finalize command.
func NewFinalizeCommand(opts *RootOptions) *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Commit the levels of every past day not committed yet",
		Long: `Run one finalization pass.

The pass walks back from yesterday to the most recent committed level (at most
30 days) and commits every gap in date order. Today is never committed here.

Examples:
  fitlevel finalize
  fitlevel finalize --today 2026-03-10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := todayOr(today)
			if err != nil {
				return err
			}
			return opts.withServices(cmd.Context(), func(ctx context.Context, st Store, m *metrics.Manager) error {
				res, err := wire(st, m).Levels.FinalizePreviousDays(ctx, day)
				if err != nil {
					return WrapExitError(ExitFailure, "finalization failed", err)
				}
				out := opts.formatter(cmd)
				if out.JSON() {
					return out.Success(res)
				}
				anchor := "none found, starting at 0"
				if res.AnchorFound {
					anchor = fmt.Sprintf("level %d", res.Anchor)
				}
				fmt.Fprintf(out.Writer, "anchor: %s\nfinalized: %d day(s)\n", anchor, len(res.Finalized))
				if len(res.Finalized) == 0 {
					return nil
				}
				return out.Timeline(res.Finalized)
			})
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "treat this date as today (YYYY-MM-DD)")
	return cmd
}

// NewRecomputeCommand creates the recompute command.
func NewRecomputeCommand(opts *RootOptions) *cobra.Command {
	var from, today string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute committed levels after a past day changed",
		Long: `Recompute every level from the given date through today.

Use after editing data outside the app, for example a manual database fix.

Examples:
  fitlevel recompute --from 2026-03-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := todayOr(today)
			if err != nil {
				return err
			}
			return opts.withServices(cmd.Context(), func(ctx context.Context, st Store, m *metrics.Manager) error {
				entries, err := wire(st, m).Levels.RecomputeAfterEdit(ctx, from, day)
				if errors.Is(err, domain.ErrInvalidDate) || errors.Is(err, app.ErrFutureDate) {
					return WrapExitError(ExitCommandError, "invalid flags", err)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "recompute failed", err)
				}
				log.WithFields(log.Fields{"from": from, "days": len(entries)}).Info("recomputed")
				return opts.formatter(cmd).Timeline(entries)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first changed date (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&today, "today", "", "treat this date as today (YYYY-MM-DD)")
	return cmd
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(opts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print committed levels for a date range",
		Long: `Print committed levels between --from and --to inclusive.

Defaults to the 30 days ending today. Uncommitted days are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := todayOr(to)
			if err != nil {
				return err
			}
			if from == "" {
				if from, err = domain.AddDays(end, -29); err != nil {
					return WrapExitError(ExitCommandError, "invalid flags", err)
				}
			}
			return opts.withServices(cmd.Context(), func(ctx context.Context, st Store, m *metrics.Manager) error {
				entries, err := wire(st, m).History.Timeline(ctx, from, end)
				if errors.Is(err, domain.ErrInvalidDate) {
					return WrapExitError(ExitCommandError, "invalid flags", err)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "load timeline failed", err)
				}
				return opts.formatter(cmd).Timeline(entries)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date (default: 29 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last date (default: today)")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all workouts and day states",
		Long: `Delete every workout and every committed level.

Fixed rest days and user accounts are kept. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return WrapExitError(ExitCommandError, "refusing to reset", errors.New("pass --yes to confirm"))
			}
			return opts.withServices(cmd.Context(), func(ctx context.Context, st Store, _ *metrics.Manager) error {
				if err := st.ResetAll(ctx); err != nil {
					return WrapExitError(ExitFailure, "reset failed", err)
				}
				log.Warn("all workouts and day states deleted")
				out := opts.formatter(cmd)
				if out.JSON() {
					return out.Success(map[string]bool{"reset": true})
				}
				return out.Success("all workouts and day states deleted")
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
