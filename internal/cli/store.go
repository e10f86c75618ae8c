package cli

import (
	"fmt"

	adapthttp "fitlevel/internal/adapter/http"
	"fitlevel/internal/adapter/memory"
	"fitlevel/internal/adapter/postgres"
	"fitlevel/internal/adapter/sqlite"
	"fitlevel/internal/app"
	"fitlevel/internal/config"
	"fitlevel/internal/domain"
	"fitlevel/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// Store is every repository port plus Close. Each adapter implements it.
type Store interface {
	domain.WorkoutRepository
	domain.DayStateRepository
	domain.SettingsRepository
	domain.DataResetter
	domain.UserRepository
	domain.SessionRepository
	Close() error
}

type memoryStore struct {
	*memory.DB
}

func (memoryStore) Close() error { return nil }

func openStore(cfg *config.Config) (Store, error) {
	log.WithField("driver", cfg.DBDriver).Debug("opening store")
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverMemory:
		return memoryStore{memory.New()}, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}

// wire builds the application services on top of st.
func wire(st Store, m *metrics.Manager) adapthttp.Services {
	levels := app.NewLevelService(st, st, st, m)
	return adapthttp.Services{
		Levels:   levels,
		Workouts: app.NewWorkoutService(st, levels, m),
		Settings: app.NewSettingsService(st, st, levels),
		History:  app.NewHistoryService(st, st, st, levels),
		Auth:     app.NewAuthService(st, st),
		Resetter: st,
	}
}
