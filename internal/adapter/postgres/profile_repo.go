package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mealtrack/internal/domain"
)

var _ domain.ProfileRepository = (*DB)(nil)

// GetProfile retrieves a profile by user ID.
func (d *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var badges []byte
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_id, email, name, calorie_goal, protein_goal, carbs_goal, fats_goal,
		        total_meals, current_streak, longest_streak, badges, created_at
		 FROM profiles WHERE user_id = $1;`, userID,
	).Scan(&p.UserID, &p.Email, &p.Name,
		&p.Goals.Calories, &p.Goals.Protein, &p.Goals.Carbs, &p.Goals.Fats,
		&p.Stats.TotalMeals, &p.Stats.CurrentStreak, &p.Stats.LongestStreak,
		&badges, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(badges, &p.Stats.Badges); err != nil {
		return nil, fmt.Errorf("profiles: decoding badges for %s: %w", userID, err)
	}
	return &p, nil
}

// CreateProfile stores a new profile.
func (d *DB) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	badges, err := json.Marshal(p.Stats.Badges)
	if err != nil {
		return err
	}
	if p.Stats.Badges == nil {
		badges = []byte("[]")
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO profiles(user_id, email, name, calorie_goal, protein_goal, carbs_goal, fats_goal,
		                      total_meals, current_streak, longest_streak, badges, created_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		p.UserID, p.Email, p.Name,
		p.Goals.Calories, p.Goals.Protein, p.Goals.Carbs, p.Goals.Fats,
		p.Stats.TotalMeals, p.Stats.CurrentStreak, p.Stats.LongestStreak,
		badges, p.CreatedAt)
	return err
}

// UpdateStats replaces the stats document of a profile.
func (d *DB) UpdateStats(ctx context.Context, userID string, stats domain.Stats) error {
	badges, err := json.Marshal(stats.Badges)
	if err != nil {
		return err
	}
	if stats.Badges == nil {
		badges = []byte("[]")
	}
	res, err := d.sql.ExecContext(ctx,
		`UPDATE profiles SET total_meals=$1, current_streak=$2, longest_streak=$3, badges=$4
		 WHERE user_id=$5;`,
		stats.TotalMeals, stats.CurrentStreak, stats.LongestStreak, badges, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// UpdateGoals replaces the goals of a profile.
func (d *DB) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE profiles SET calorie_goal=$1, protein_goal=$2, carbs_goal=$3, fats_goal=$4
		 WHERE user_id=$5;`,
		goals.Calories, goals.Protein, goals.Carbs, goals.Fats, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
