package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"mealtrack/internal/domain"

	"github.com/rs/xid"
)

var _ domain.MealRepository = (*DB)(nil)

// Save inserts a meal record, assigning its id and creation time.
func (d *DB) Save(ctx context.Context, m *domain.MealRecord) (string, error) {
	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()

	foods, err := json.Marshal(m.Foods)
	if err != nil {
		return "", fmt.Errorf("meals: encoding foods: %w", err)
	}

	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO meals(id, owner_id, meal_type, foods, calories, protein, carbs, fats, ts, created_at, has_photo, migrated_from_local)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		m.ID, m.OwnerID, string(m.MealType), foods,
		m.Totals.Calories, m.Totals.Protein, m.Totals.Carbs, m.Totals.Fats,
		m.Timestamp.UTC(), m.CreatedAt, m.HasPhoto, m.MigratedFromLocal,
	)
	if err != nil {
		return "", fmt.Errorf("meals: insert: %w", err)
	}
	return m.ID, nil
}

// QueryByOwner returns the owner's records newest-first by timestamp.
func (d *DB) QueryByOwner(ctx context.Context, ownerID string, q domain.MealQuery) ([]domain.MealRecord, error) {
	query := `SELECT id, owner_id, meal_type, foods, calories, protein, carbs, fats, ts, created_at, has_photo, migrated_from_local
		 FROM meals WHERE owner_id = $1`
	args := []any{ownerID}

	if !q.Since.IsZero() {
		args = append(args, q.Since.UTC())
		query += " AND ts >= $" + strconv.Itoa(len(args))
	}
	if !q.Until.IsZero() {
		args = append(args, q.Until.UTC())
		query += " AND ts < $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY ts DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := d.sql.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("meals: query: %w", err)
	}
	defer rows.Close()

	var out []domain.MealRecord
	for rows.Next() {
		var m domain.MealRecord
		var foods []byte
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.MealType, &foods,
			&m.Totals.Calories, &m.Totals.Protein, &m.Totals.Carbs, &m.Totals.Fats,
			&m.Timestamp, &m.CreatedAt, &m.HasPhoto, &m.MigratedFromLocal); err != nil {
			return nil, fmt.Errorf("meals: scan: %w", err)
		}
		if err := json.Unmarshal(foods, &m.Foods); err != nil {
			return nil, fmt.Errorf("meals: decoding foods for %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a record by id, scoped to the owner.
func (d *DB) Delete(ctx context.Context, ownerID, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM meals WHERE id=$1 AND owner_id=$2;", id, ownerID)
	if err != nil {
		return fmt.Errorf("meals: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// DistinctTimestamps returns the set of stored meal instants for the owner.
func (d *DB) DistinctTimestamps(ctx context.Context, ownerID string) (map[string]struct{}, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT ts FROM meals WHERE owner_id=$1;", ownerID)
	if err != nil {
		return nil, fmt.Errorf("meals: timestamps: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out[domain.TimestampKey(ts)] = struct{}{}
	}
	return out, rows.Err()
}

// Clear removes every record owned by ownerID.
func (d *DB) Clear(ctx context.Context, ownerID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM meals WHERE owner_id=$1;", ownerID)
	return err
}
