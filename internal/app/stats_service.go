package app

import (
	"context"
	"fmt"
	"time"

	"mealtrack/internal/domain"
)

// StatsService orchestrates the recomputation of a user's stats document
// after each meal write. Numeric and logical work is delegated to the
// domain engines; this layer only orders the steps.
type StatsService struct {
	meals    *MealService
	remote   domain.MealRepository
	profiles domain.ProfileRepository
	catalog  *domain.BadgeCatalog
	loc      *time.Location
	now      func() time.Time
}

// NewStatsService creates a StatsService. The badge catalog is loaded once
// at process start and injected here; it is never mutated at runtime.
func NewStatsService(meals *MealService, remote domain.MealRepository, profiles domain.ProfileRepository, catalog *domain.BadgeCatalog, loc *time.Location) *StatsService {
	return &StatsService{
		meals:    meals,
		remote:   remote,
		profiles: profiles,
		catalog:  catalog,
		loc:      loc,
		now:      time.Now,
	}
}

// RecordMeal persists a meal and, for authenticated owners, recomputes the
// stats document and evaluates badges. Guest saves skip the stats pass
// entirely since no profile exists. Newly earned badge ids are returned.
func (s *StatsService) RecordMeal(ctx context.Context, sc domain.StorageContext, m *domain.MealRecord) (string, []string, error) {
	id, err := s.meals.Save(ctx, sc, m)
	if err != nil {
		return "", nil, err
	}
	if sc.IsLocal() {
		return id, nil, nil
	}

	newBadges, err := s.Recompute(ctx, sc.OwnerID)
	if err != nil {
		// The meal is saved; a stats failure is reported but must not
		// undo the write or crash the caller.
		return id, nil, fmt.Errorf("stats update after save: %w", err)
	}
	return id, newBadges, nil
}

// Recompute refreshes the owner's stats from the full record set, persists
// them, then evaluates the badge catalog against the refreshed profile and
// persists any newly earned badges. Returns the new badge ids.
func (s *StatsService) Recompute(ctx context.Context, ownerID string) (newBadges []string, err error) {
	// Collaborator faults must not take down the process; they surface as
	// an error and the stats write becomes a no-op.
	defer func() {
		if r := recover(); r != nil {
			newBadges = nil
			err = fmt.Errorf("stats recompute: %v", r)
		}
	}()

	records, err := s.remote.QueryByOwner(ctx, ownerID, domain.MealQuery{})
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	streak := domain.ComputeStreak(records, s.now(), s.loc)
	profile.Stats.TotalMeals = len(records)
	profile.Stats.CurrentStreak = streak.Current
	if streak.Longest > profile.Stats.LongestStreak {
		profile.Stats.LongestStreak = streak.Longest
	}
	if profile.Stats.CurrentStreak > profile.Stats.LongestStreak {
		profile.Stats.LongestStreak = profile.Stats.CurrentStreak
	}

	facts := domain.FactsFromMeals(records, profile.Goals, s.loc)
	newBadges = domain.EvaluateBadges(profile, s.catalog, facts)
	profile.Stats.AddBadges(newBadges)

	if err := s.profiles.UpdateStats(ctx, ownerID, profile.Stats); err != nil {
		return nil, err
	}
	return newBadges, nil
}

// Achievements returns per-badge progress for the owner's profile.
func (s *StatsService) Achievements(ctx context.Context, ownerID string) ([]domain.BadgeProgress, error) {
	profile, err := s.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	records, err := s.remote.QueryByOwner(ctx, ownerID, domain.MealQuery{})
	if err != nil {
		return nil, err
	}
	facts := domain.FactsFromMeals(records, profile.Goals, s.loc)
	return domain.Progress(profile, s.catalog, facts), nil
}

// Profile returns the owner's profile document.
func (s *StatsService) Profile(ctx context.Context, ownerID string) (*domain.UserProfile, error) {
	return s.profiles.GetProfile(ctx, ownerID)
}

// UpdateGoals validates and persists new daily goals.
func (s *StatsService) UpdateGoals(ctx context.Context, ownerID string, goals domain.Goals) error {
	if goals.Calories <= 0 || goals.Protein <= 0 || goals.Carbs <= 0 || goals.Fats <= 0 {
		return fmt.Errorf("goals must be positive")
	}
	return s.profiles.UpdateGoals(ctx, ownerID, goals)
}
