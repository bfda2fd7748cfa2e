package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealtrack/internal/app"
	"mealtrack/internal/domain"
)

func TestMigrateEmptyCache(t *testing.T) {
	local := &mockMealRepo{queryFn: func(_ context.Context, _ string, _ domain.MealQuery) ([]domain.MealRecord, error) {
		return nil, nil
	}}
	remote := &mockMealRepo{timestampsFn: func(_ context.Context, _ string) (map[string]struct{}, error) {
		t.Fatal("empty cache should not read remote timestamps")
		return nil, nil
	}}
	svc := app.NewMigrationService(local, remote)

	res, err := svc.Migrate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Migrated != 0 || res.Skipped != 0 {
		t.Fatalf("result = %+v; want zero", res)
	}
}

func TestMigrateCopiesAndClears(t *testing.T) {
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	guestMeals := []domain.MealRecord{
		{ID: "g1", OwnerID: domain.GuestOwnerID, Timestamp: base},
		{ID: "g2", OwnerID: domain.GuestOwnerID, Timestamp: base.Add(time.Hour)},
	}

	local := &mockMealRepo{queryFn: func(_ context.Context, _ string, _ domain.MealQuery) ([]domain.MealRecord, error) {
		return guestMeals, nil
	}}
	var saved []domain.MealRecord
	remote := &mockMealRepo{saveFn: func(_ context.Context, m *domain.MealRecord) (string, error) {
		saved = append(saved, *m)
		return "r" + m.ID, nil
	}}
	var cleared bool
	local.clearFn = func(_ context.Context, ownerID string) error {
		if ownerID != domain.GuestOwnerID {
			t.Fatalf("cleared owner %q; want guest", ownerID)
		}
		cleared = true
		return nil
	}
	svc := app.NewMigrationService(local, remote)

	res, err := svc.Migrate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Migrated != 2 || res.Skipped != 0 {
		t.Fatalf("result = %+v; want 2 migrated", res)
	}
	if !cleared {
		t.Fatal("cache should be cleared after a clean run")
	}
	for _, m := range saved {
		if m.OwnerID != "u1" {
			t.Errorf("saved owner = %q; want u1", m.OwnerID)
		}
		if m.ID != "" {
			t.Errorf("saved id = %q; want empty so the store assigns one", m.ID)
		}
		if !m.MigratedFromLocal {
			t.Error("migrated record should be tagged MigratedFromLocal")
		}
	}
}

func TestMigrateSkipsDuplicates(t *testing.T) {
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	local := &mockMealRepo{queryFn: func(_ context.Context, _ string, _ domain.MealQuery) ([]domain.MealRecord, error) {
		return []domain.MealRecord{
			{Timestamp: base},
			{Timestamp: base.Add(time.Hour)},
		}, nil
	}}
	var saves int
	remote := &mockMealRepo{
		timestampsFn: func(_ context.Context, _ string) (map[string]struct{}, error) {
			return map[string]struct{}{domain.TimestampKey(base): {}}, nil
		},
		saveFn: func(_ context.Context, _ *domain.MealRecord) (string, error) {
			saves++
			return "r1", nil
		},
	}
	svc := app.NewMigrationService(local, remote)

	res, err := svc.Migrate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Migrated != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v; want 1 migrated 1 skipped", res)
	}
	if saves != 1 {
		t.Fatalf("saves = %d; want 1", saves)
	}
}

func TestMigratePartialFailureKeepsCache(t *testing.T) {
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	var cleared bool
	local := &mockMealRepo{
		queryFn: func(_ context.Context, _ string, _ domain.MealQuery) ([]domain.MealRecord, error) {
			return []domain.MealRecord{
				{Timestamp: base},
				{Timestamp: base.Add(time.Hour)},
			}, nil
		},
		clearFn: func(_ context.Context, _ string) error {
			cleared = true
			return nil
		},
	}
	var saves int
	remote := &mockMealRepo{saveFn: func(_ context.Context, _ *domain.MealRecord) (string, error) {
		saves++
		if saves == 2 {
			return "", errors.New("connection reset")
		}
		return "r1", nil
	}}
	svc := app.NewMigrationService(local, remote)

	res, err := svc.Migrate(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected error from failed save")
	}
	if res.Migrated != 1 {
		t.Fatalf("Migrated = %d; want 1 before the failure", res.Migrated)
	}
	if cleared {
		t.Fatal("cache must not be cleared after a failed run")
	}
}

func TestMigrateRerunAfterFailureDeduplicates(t *testing.T) {
	// After a partial failure the cache still holds everything; the second
	// run skips the record that already landed remotely.
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	local := &mockMealRepo{queryFn: func(_ context.Context, _ string, _ domain.MealQuery) ([]domain.MealRecord, error) {
		return []domain.MealRecord{
			{Timestamp: base},
			{Timestamp: base.Add(time.Hour)},
		}, nil
	}}
	remote := &mockMealRepo{timestampsFn: func(_ context.Context, _ string) (map[string]struct{}, error) {
		return map[string]struct{}{domain.TimestampKey(base): {}}, nil
	}}
	svc := app.NewMigrationService(local, remote)

	res, err := svc.Migrate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Migrated != 1 {
		t.Fatalf("result = %+v; want 1 skipped 1 migrated", res)
	}
}
