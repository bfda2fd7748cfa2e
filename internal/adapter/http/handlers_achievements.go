package adapthttp

import (
	"net/http"

	"mealtrack/internal/domain"
)

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u := requireUser(w, r)
	if u == nil {
		return
	}

	progress, err := s.stats.Achievements(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	earned := 0
	for _, p := range progress {
		if p.Earned {
			earned++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badges": progress,
		"earned": earned,
		"total":  len(progress),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u := requireUser(w, r)
	if u == nil {
		return
	}

	profile, err := s.stats.Profile(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u := requireUser(w, r)
	if u == nil {
		return
	}

	var goals domain.Goals
	if err := parseJSON(r, &goals); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.stats.UpdateGoals(r.Context(), u.ID, goals); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "goals": goals})
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u := requireUser(w, r)
	if u == nil {
		return
	}

	res, err := s.migration.Migrate(r.Context(), u.ID)
	if err != nil {
		// Already-written records stay; the client may retry and the
		// timestamp dedup keeps the rerun safe.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    err.Error(),
			"migrated": res.Migrated,
			"skipped":  res.Skipped,
		})
		return
	}

	if res.Migrated > 0 {
		if _, err := s.stats.Recompute(r.Context(), u.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}
