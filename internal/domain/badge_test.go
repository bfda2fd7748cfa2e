package domain_test

import (
	"testing"
	"time"

	"mealtrack/internal/domain"
)

func testCatalog(t *testing.T) *domain.BadgeCatalog {
	t.Helper()
	c, err := domain.NewBadgeCatalog([]domain.BadgeDefinition{
		{ID: "first-bite", Name: "First Bite", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 1}, Rarity: domain.RarityCommon},
		{ID: "ten-meals", Name: "Ten Meals", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 10}, Rarity: domain.RarityCommon},
		{ID: "week-streak", Name: "Week Streak", Requirement: domain.Requirement{Type: domain.ReqStreakDays, Value: 7}, Rarity: domain.RarityRare},
		{ID: "shutterbug", Name: "Shutterbug", Requirement: domain.Requirement{Type: domain.ReqPhotoLogs, Value: 2}, Rarity: domain.RarityRare},
		{ID: "early-bird", Name: "Early Bird", Requirement: domain.Requirement{Type: domain.ReqEarlyBreakfast, Value: 1}, Rarity: domain.RarityCommon},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func TestNewBadgeCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []domain.BadgeDefinition
	}{
		{
			"missing id",
			[]domain.BadgeDefinition{{Name: "x", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 1}}},
		},
		{
			"duplicate id",
			[]domain.BadgeDefinition{
				{ID: "a", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 1}, Rarity: domain.RarityCommon},
				{ID: "a", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 2}, Rarity: domain.RarityCommon},
			},
		},
		{
			"unknown requirement type",
			[]domain.BadgeDefinition{{ID: "a", Requirement: domain.Requirement{Type: "water_logged", Value: 1}}},
		},
		{
			"non-positive value",
			[]domain.BadgeDefinition{{ID: "a", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 0}}},
		},
		{
			"unknown rarity",
			[]domain.BadgeDefinition{{ID: "a", Requirement: domain.Requirement{Type: domain.ReqMealsLogged, Value: 1}, Rarity: "mythic"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := domain.NewBadgeCatalog(tc.defs); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEvaluateBadges(t *testing.T) {
	catalog := testCatalog(t)

	t.Run("first meal earns first badge", func(t *testing.T) {
		p := &domain.UserProfile{Stats: domain.Stats{TotalMeals: 1}}
		got := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{})
		if len(got) != 1 || got[0] != "first-bite" {
			t.Fatalf("earned = %v; want [first-bite]", got)
		}
	})

	t.Run("already earned is skipped", func(t *testing.T) {
		p := &domain.UserProfile{Stats: domain.Stats{TotalMeals: 5, Badges: []string{"first-bite"}}}
		if got := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{}); len(got) != 0 {
			t.Fatalf("earned = %v; want none", got)
		}
	})

	t.Run("multiple thresholds crossed in catalog order", func(t *testing.T) {
		p := &domain.UserProfile{Stats: domain.Stats{TotalMeals: 12, CurrentStreak: 8}}
		got := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{PhotoLogs: 3})
		want := []string{"first-bite", "ten-meals", "week-streak", "shutterbug"}
		if len(got) != len(want) {
			t.Fatalf("earned = %v; want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("earned = %v; want %v", got, want)
			}
		}
	})

	t.Run("pure without persistence", func(t *testing.T) {
		p := &domain.UserProfile{Stats: domain.Stats{TotalMeals: 1}}
		first := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{})
		second := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{})
		if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
			t.Fatal("evaluation should be repeatable until the result is persisted")
		}
		p.Stats.AddBadges(first)
		if got := domain.EvaluateBadges(p, catalog, domain.BadgeFacts{}); len(got) != 0 {
			t.Fatalf("after persisting, earned = %v; want none", got)
		}
	})
}

func TestFactsFromMeals(t *testing.T) {
	loc := time.UTC
	goals := domain.Goals{Calories: 2000, Protein: 100, Carbs: 250, Fats: 65}

	breakfast := mealAt(time.Date(2026, 8, 30, 7, 30, 0, 0, loc), domain.MacroTotals{Calories: 400, Protein: 20})
	breakfast.MealType = domain.MealBreakfast

	lateBreakfast := mealAt(time.Date(2026, 8, 29, 10, 0, 0, 0, loc), domain.MacroTotals{Calories: 2200, Protein: 120})
	lateBreakfast.MealType = domain.MealBreakfast

	photoMeal := mealAt(time.Date(2026, 8, 30, 13, 0, 0, 0, loc), domain.MacroTotals{Calories: 700, Protein: 90})
	photoMeal.HasPhoto = true

	facts := domain.FactsFromMeals([]domain.MealRecord{breakfast, lateBreakfast, photoMeal}, goals, loc)

	if facts.PhotoLogs != 1 {
		t.Errorf("PhotoLogs = %d; want 1", facts.PhotoLogs)
	}
	if facts.EarlyBreakfasts != 1 {
		t.Errorf("EarlyBreakfasts = %d; want 1", facts.EarlyBreakfasts)
	}
	// Aug 30: 1100 kcal and 110g protein, so it is both a goal day and a
	// protein day. Aug 29: 2200 kcal and 120g protein, a protein day only.
	if facts.GoalDays != 1 {
		t.Errorf("GoalDays = %d; want 1", facts.GoalDays)
	}
	if facts.ProteinDays != 2 {
		t.Errorf("ProteinDays = %d; want 2", facts.ProteinDays)
	}
}

func TestFactsFromMealsCountsEarlyBreakfastDays(t *testing.T) {
	loc := time.UTC

	early := func(ts time.Time) domain.MealRecord {
		m := mealAt(ts, domain.MacroTotals{})
		m.MealType = domain.MealBreakfast
		return m
	}
	meals := []domain.MealRecord{
		early(time.Date(2026, 8, 30, 6, 0, 0, 0, loc)),
		early(time.Date(2026, 8, 30, 8, 30, 0, 0, loc)), // same day, no extra credit
		early(time.Date(2026, 8, 29, 7, 0, 0, 0, loc)),
	}

	facts := domain.FactsFromMeals(meals, domain.DefaultGoals(), loc)
	if facts.EarlyBreakfasts != 2 {
		t.Errorf("EarlyBreakfasts = %d; want 2 distinct days", facts.EarlyBreakfasts)
	}
}

func TestProgress(t *testing.T) {
	catalog := testCatalog(t)
	p := &domain.UserProfile{Stats: domain.Stats{TotalMeals: 25, CurrentStreak: 3, Badges: []string{"first-bite", "ten-meals"}}}

	progress := domain.Progress(p, catalog, domain.BadgeFacts{PhotoLogs: 1})
	if len(progress) != catalog.Len() {
		t.Fatalf("expected %d entries, got %d", catalog.Len(), len(progress))
	}

	byID := make(map[string]domain.BadgeProgress, len(progress))
	for _, bp := range progress {
		byID[bp.Badge.ID] = bp
	}

	if bp := byID["ten-meals"]; !bp.Earned || bp.Current != 10 {
		t.Errorf("ten-meals = %+v; want earned with current capped at 10", bp)
	}
	if bp := byID["week-streak"]; bp.Earned || bp.Current != 3 || bp.Required != 7 {
		t.Errorf("week-streak = %+v; want unearned 3/7", bp)
	}
	if bp := byID["shutterbug"]; bp.Current != 1 {
		t.Errorf("shutterbug current = %d; want 1", bp.Current)
	}
}
