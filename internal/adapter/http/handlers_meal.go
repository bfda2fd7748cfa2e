package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"mealtrack/internal/domain"
)

type mealRequest struct {
	MealType  string            `json:"mealType"`
	Foods     []domain.FoodItem `json:"foods"`
	Timestamp time.Time         `json:"timestamp"`
	HasPhoto  bool              `json:"hasPhoto"`
}

func (s *Server) handleMeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc := storageContext(r)

	switch r.Method {
	case http.MethodPost:
		var body mealRequest
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		m := &domain.MealRecord{
			MealType:  domain.MealType(body.MealType),
			Foods:     body.Foods,
			Timestamp: body.Timestamp,
			HasPhoto:  body.HasPhoto,
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}

		id, newBadges, err := s.stats.RecordMeal(ctx, sc, m)
		if err != nil && id == "" {
			// Validation rejections are the client's fault; anything else
			// is a store fault.
			if errors.Is(err, domain.ErrInvalidRecord) {
				writeError(w, http.StatusBadRequest, err)
			} else {
				writeError(w, http.StatusInternalServerError, err)
			}
			return
		}
		resp := map[string]any{"id": id, "meal": m, "newBadges": newBadges}
		if err != nil {
			// Saved, but the stats pass failed; the client may retry a
			// dashboard refresh later.
			resp["statsError"] = err.Error()
		}
		writeJSON(w, http.StatusCreated, resp)

	case http.MethodGet:
		limit := intQuery(r, "limit", 50)
		items, err := s.meals.History(ctx, sc, domain.MealQuery{Limit: limit})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMealsToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.meals.TodayMeals(r.Context(), storageContext(r), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "totals": domain.DailyTotals(items)})
}

func (s *Server) handleMealDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sc := storageContext(r)
	if err := s.meals.Delete(r.Context(), sc, body.ID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Deletions shift the derived stats too.
	if !sc.IsLocal() {
		if _, err := s.stats.Recompute(r.Context(), sc.OwnerID); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleHistoryDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	days, err := s.meals.HistoryByDay(r.Context(), storageContext(r), domain.MealQuery{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}
