package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"fitlevel/internal/domain"

	log "github.com/sirupsen/logrus"
)

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	view, err := s.history.Today(r.Context(), s.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	res, err := s.levels.FinalizePreviousDays(r.Context(), s.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(time.Local)
	year := intQuery(r, "year", now.Year())
	month := intQuery(r, "month", int(now.Month()))
	if month > 12 {
		writeError(w, http.StatusBadRequest, errors.New("month must be 1-12"))
		return
	}

	view, err := s.history.Month(r.Context(), year, time.Month(month), s.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	defaultFrom, err := domain.AddDays(today, -29)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	from, err := dayQuery(r, "from", defaultFrom)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	to, err := dayQuery(r, "to", today)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := s.history.Timeline(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "items": items})
}

func (s *Server) handleResetData(w http.ResponseWriter, r *http.Request) {
	if err := s.resetter.ResetAll(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	entry := log.WithField("op", "reset")
	if u := userFromContext(r.Context()); u != nil {
		entry = entry.WithField("user", u.Username)
	}
	entry.Warn("all workouts and day states deleted")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
