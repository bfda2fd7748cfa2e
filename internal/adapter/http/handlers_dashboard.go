package adapthttp

import (
	"net/http"
	"time"

	"mealtrack/internal/domain"
)

func (s *Server) handleDashboardToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sc := storageContext(r)

	items, err := s.meals.TodayMeals(ctx, sc, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := map[string]any{
		"totals": domain.DailyTotals(items),
		"meals":  items,
	}
	if u := currentUser(r); u != nil {
		profile, err := s.stats.Profile(ctx, u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp["goals"] = profile.Goals
		resp["stats"] = profile.Stats
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboardWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	avg, err := s.meals.WeeklyAverage(r.Context(), storageContext(r), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"average": avg})
}
