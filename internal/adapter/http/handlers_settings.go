package adapthttp

import (
	"net/http"
)

func (s *Server) handleRestDay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rest bool `json:"rest"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := s.settings.SetRestDay(r.Context(), r.PathValue("date"), body.Rest, s.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleFixedRestDaysGet(w http.ResponseWriter, r *http.Request) {
	days, err := s.settings.FixedRestDays(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleFixedRestDaysPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Days []int `json:"days"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	days, err := s.settings.SetFixedRestDays(r.Context(), body.Days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}
