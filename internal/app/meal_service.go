// Package app holds the application services and business logic.
package app

import (
	"context"
	"sort"
	"time"

	"mealtrack/internal/domain"
)

// MealService encapsulates meal-logging use cases. The storage backend is
// chosen per call from the StorageContext the caller passes in: guest
// contexts hit the process-local cache, authenticated contexts the remote
// store.
type MealService struct {
	local  domain.MealRepository
	remote domain.MealRepository
	loc    *time.Location
}

// NewMealService creates a MealService backed by the given repositories.
func NewMealService(local, remote domain.MealRepository, loc *time.Location) *MealService {
	return &MealService{local: local, remote: remote, loc: loc}
}

func (s *MealService) repoFor(sc domain.StorageContext) domain.MealRepository {
	if sc.IsLocal() {
		return s.local
	}
	return s.remote
}

// Save normalizes and persists a meal record, returning the assigned id.
func (s *MealService) Save(ctx context.Context, sc domain.StorageContext, m *domain.MealRecord) (string, error) {
	if sc.IsLocal() {
		m.OwnerID = domain.GuestOwnerID
	} else {
		m.OwnerID = sc.OwnerID
	}
	if err := domain.NormalizeMeal(m); err != nil {
		return "", err
	}
	return s.repoFor(sc).Save(ctx, m)
}

// TodayMeals returns the meals logged on now's calendar day, newest first.
func (s *MealService) TodayMeals(ctx context.Context, sc domain.StorageContext, now time.Time) ([]domain.MealRecord, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", domain.DayKey(now, s.loc), s.loc)
	if err != nil {
		return nil, err
	}
	return s.repoFor(sc).QueryByOwner(ctx, sc.OwnerID, domain.MealQuery{
		Since: dayStart,
		Until: dayStart.Add(24 * time.Hour),
	})
}

// History returns records matching the query, newest first.
func (s *MealService) History(ctx context.Context, sc domain.StorageContext, q domain.MealQuery) ([]domain.MealRecord, error) {
	return s.repoFor(sc).QueryByOwner(ctx, sc.OwnerID, q)
}

// DaySummary is one calendar day of history with its summed totals.
type DaySummary struct {
	Day    string              `json:"day"`
	Totals domain.MacroTotals  `json:"totals"`
	Meals  []domain.MealRecord `json:"meals"`
}

// HistoryByDay groups the owner's records by calendar day, newest day first.
func (s *MealService) HistoryByDay(ctx context.Context, sc domain.StorageContext, q domain.MealQuery) ([]DaySummary, error) {
	meals, err := s.repoFor(sc).QueryByOwner(ctx, sc.OwnerID, q)
	if err != nil {
		return nil, err
	}

	groups := domain.GroupByDay(meals, s.loc)
	out := make([]DaySummary, 0, len(groups))
	for day, dayMeals := range groups {
		out = append(out, DaySummary{Day: day, Totals: domain.DailyTotals(dayMeals), Meals: dayMeals})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

// WeeklyAverage returns the per-day average totals for the trailing seven
// days ending at now.
func (s *MealService) WeeklyAverage(ctx context.Context, sc domain.StorageContext, now time.Time) (domain.MacroTotals, error) {
	meals, err := s.repoFor(sc).QueryByOwner(ctx, sc.OwnerID, domain.MealQuery{Since: now.AddDate(0, 0, -7)})
	if err != nil {
		return domain.MacroTotals{}, err
	}
	return domain.WeeklyAverage(meals, now), nil
}

// Delete removes a record by id. Missing ids surface ErrRecordNotFound.
func (s *MealService) Delete(ctx context.Context, sc domain.StorageContext, id string) error {
	return s.repoFor(sc).Delete(ctx, sc.OwnerID, id)
}
