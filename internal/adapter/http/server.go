package adapthttp

import (
	"net/http"
	"time"

	"fitlevel/internal/app"
	"fitlevel/internal/domain"
	"fitlevel/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Levels   *app.LevelService
	Workouts *app.WorkoutService
	Settings *app.SettingsService
	History  *app.HistoryService
	Auth     *app.AuthService
	Resetter domain.DataResetter
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	levels   *app.LevelService
	workouts *app.WorkoutService
	settings *app.SettingsService
	history  *app.HistoryService
	authSvc  *app.AuthService
	resetter domain.DataResetter

	metrics  *metrics.Manager
	gatherer prometheus.Gatherer

	oidcConfig  OIDCConfig
	disableAuth bool
	now         func() time.Time
}

// New creates a Server wired to the given application services. gatherer
// backs the /metrics endpoint and may be nil.
func New(svcs Services, m *metrics.Manager, gatherer prometheus.Gatherer) *Server {
	return &Server{
		levels:   svcs.Levels,
		workouts: svcs.Workouts,
		settings: svcs.Settings,
		history:  svcs.History,
		authSvc:  svcs.Auth,
		resetter: svcs.Resetter,
		metrics:  m,
		gatherer: gatherer,
		now:      time.Now,
	}
}

// WithoutAuth disables session checks. Used by tests and single-user setups.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithClock overrides the clock used to derive today's date.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) today() string {
	return domain.LocalDay(s.now())
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("POST /login", s.handleLogin)
	api.HandleFunc("POST /logout", s.handleLogout)
	api.HandleFunc("POST /setup", s.handleSetupUser)
	api.HandleFunc("GET /config", s.handleConfig)
	api.HandleFunc("GET /sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /sso/callback", s.handleSSOCallback)

	api.Handle("GET /today", s.protect(s.handleToday))
	api.Handle("POST /finalize", s.protect(s.handleFinalize))
	api.Handle("GET /history", s.protect(s.handleHistory))
	api.Handle("GET /timeline", s.protect(s.handleTimeline))
	api.Handle("DELETE /data", s.protect(s.handleResetData))

	api.Handle("GET /workouts", s.protect(s.handleWorkoutList))
	api.Handle("POST /workouts", s.protect(s.handleWorkoutCreate))
	api.Handle("GET /workouts/{id}", s.protect(s.handleWorkoutGet))
	api.Handle("PUT /workouts/{id}", s.protect(s.handleWorkoutUpdate))
	api.Handle("DELETE /workouts/{id}", s.protect(s.handleWorkoutDelete))

	api.Handle("PUT /days/{date}/rest", s.protect(s.handleRestDay))
	api.Handle("GET /settings/rest-days", s.protect(s.handleFixedRestDaysGet))
	api.Handle("PUT /settings/rest-days", s.protect(s.handleFixedRestDaysPut))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.gatherer != nil {
		root.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = withNoCache(root)
	h = s.loggingMiddleware(h)
	h = s.requestMetrics(h)
	h = s.panicRecovery(h)
	return h
}

func (s *Server) protect(h http.HandlerFunc) http.Handler {
	return s.authMiddleware(h)
}
