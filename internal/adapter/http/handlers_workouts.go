package adapthttp

import (
	"net/http"

	"fitlevel/internal/domain"
)

type workoutBody struct {
	Date     string                  `json:"date"`
	Type     domain.WorkoutType      `json:"type"`
	Title    string                  `json:"title"`
	Note     string                  `json:"note"`
	Strength *domain.StrengthDetails `json:"strength"`
	Cardio   *domain.CardioDetails   `json:"cardio"`
	Light    *domain.LightDetails    `json:"light"`
}

func (b workoutBody) toWorkout(id, today string) domain.Workout {
	date := b.Date
	if date == "" {
		date = today
	}
	return domain.Workout{
		ID:       id,
		Date:     date,
		Type:     b.Type,
		Title:    b.Title,
		Note:     b.Note,
		Strength: b.Strength,
		Cardio:   b.Cardio,
		Light:    b.Light,
	}
}

func (s *Server) handleWorkoutList(w http.ResponseWriter, r *http.Request) {
	date, err := dayQuery(r, "date", s.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items, err := s.workouts.ListByDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "items": items})
}

func (s *Server) handleWorkoutCreate(w http.ResponseWriter, r *http.Request) {
	var body workoutBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	today := s.today()
	created, err := s.workouts.Create(r.Context(), body.toWorkout("", today), today)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleWorkoutGet(w http.ResponseWriter, r *http.Request) {
	item, err := s.workouts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleWorkoutUpdate(w http.ResponseWriter, r *http.Request) {
	var body workoutBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	today := s.today()
	updated, err := s.workouts.Update(r.Context(), body.toWorkout(r.PathValue("id"), today), today)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleWorkoutDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.workouts.Delete(r.Context(), r.PathValue("id"), s.today()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
