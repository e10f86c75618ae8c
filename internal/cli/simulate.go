package cli

import (
	"fmt"
	"os"

	"fitlevel/internal/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Simulation is the input of the simulate command.
type Simulation struct {
	StartLevel int                     `yaml:"start_level"`
	Days       []domain.DayObservation `yaml:"days"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate FILE",
		Short: "Run the level rule over a YAML list of days",
		Long: `Fold the daily level rule over the days in FILE without touching the store.

A rest day holds the level even when activity is set. Days are used in file
order and must be in chronological order.

Example file:
  start_level: 2
  days:
    - {date: "2026-03-01", activity: true}
    - {date: "2026-03-02", rest: true}
    - {date: "2026-03-03"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := loadSimulation(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid simulation file", err)
			}
			timeline := domain.ComputeTimeline(domain.ClampLevel(sim.StartLevel), sim.Days)
			return opts.formatter(cmd).Timeline(timeline)
		},
	}
	return cmd
}

func loadSimulation(path string) (*Simulation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sim Simulation
	if err := yaml.Unmarshal(raw, &sim); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	prev := ""
	for i, d := range sim.Days {
		if _, err := domain.ParseDay(d.Date); err != nil {
			return nil, fmt.Errorf("day %d: %w", i+1, err)
		}
		if d.Date <= prev {
			return nil, fmt.Errorf("day %d: %s is not after %s", i+1, d.Date, prev)
		}
		prev = d.Date
	}
	return &sim, nil
}
