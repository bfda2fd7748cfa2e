package app

import (
	"context"
	"fmt"

	"mealtrack/internal/domain"
)

// MigrationService drains the process-local guest cache into the remote
// store once a user authenticates. Records are deduplicated by their exact
// timestamp instant; delivery is at-least-once, with the dedup as the
// safety net against re-runs.
type MigrationService struct {
	local  domain.MealRepository
	remote domain.MealRepository
}

// NewMigrationService creates a MigrationService over the two backends.
func NewMigrationService(local, remote domain.MealRepository) *MigrationService {
	return &MigrationService{local: local, remote: remote}
}

// MigrationResult reports what one migration run did.
type MigrationResult struct {
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

// Migrate copies guest records to the remote store under ownerID, skipping
// records whose timestamp instant already exists remotely. The cache is
// cleared only when the run completes without error and at least one record
// was written; a mid-batch failure leaves earlier writes in place with no
// rollback.
func (s *MigrationService) Migrate(ctx context.Context, ownerID string) (MigrationResult, error) {
	var res MigrationResult

	locals, err := s.local.QueryByOwner(ctx, domain.GuestOwnerID, domain.MealQuery{})
	if err != nil {
		return res, fmt.Errorf("migrate: reading local cache: %w", err)
	}
	if len(locals) == 0 {
		return res, nil
	}

	existing, err := s.remote.DistinctTimestamps(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("migrate: reading remote timestamps: %w", err)
	}

	for _, rec := range locals {
		if _, dup := existing[domain.TimestampKey(rec.Timestamp)]; dup {
			res.Skipped++
			continue
		}

		copied := rec
		copied.ID = ""
		copied.OwnerID = ownerID
		copied.MigratedFromLocal = true
		if _, err := s.remote.Save(ctx, &copied); err != nil {
			return res, fmt.Errorf("migrate: after %d records: %w", res.Migrated, err)
		}
		res.Migrated++
	}

	if res.Migrated > 0 {
		if err := s.local.Clear(ctx, domain.GuestOwnerID); err != nil {
			return res, fmt.Errorf("migrate: clearing local cache: %w", err)
		}
	}
	return res, nil
}
