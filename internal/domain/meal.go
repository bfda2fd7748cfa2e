// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// GuestOwnerID marks records that belong to the process-local guest cache
// rather than an authenticated user.
const GuestOwnerID = "guest"

// ErrRecordNotFound indicates that a meal record does not exist.
var ErrRecordNotFound = errors.New("meal record not found")

// ErrInvalidRecord marks validation failures at the store boundary, as
// opposed to faults from the store itself.
var ErrInvalidRecord = errors.New("invalid meal record")

// MealType classifies a logged meal.
type MealType string

// Recognised meal types.
const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Valid reports whether t is one of the recognised meal types.
func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// FoodItem is one itemised food within a meal. Macro values are per single
// portion; Portion scales them when totals are computed.
type FoodItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Portion  float64 `json:"portion"`
}

// MacroTotals is a calorie/protein/carb/fat sum for a meal or an
// aggregation window. Values are whole units.
type MacroTotals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fats     int `json:"fats"`
}

// Add returns the element-wise sum of two totals.
func (t MacroTotals) Add(o MacroTotals) MacroTotals {
	return MacroTotals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fats:     t.Fats + o.Fats,
	}
}

// MealRecord is one logged eating event. Records are immutable after
// creation except for deletion.
type MealRecord struct {
	ID                string      `json:"id"`
	OwnerID           string      `json:"ownerId"`
	MealType          MealType    `json:"mealType"`
	Foods             []FoodItem  `json:"foods"`
	Totals            MacroTotals `json:"totals"`
	Timestamp         time.Time   `json:"timestamp"`
	CreatedAt         time.Time   `json:"createdAt"`
	HasPhoto          bool        `json:"hasPhoto"`
	MigratedFromLocal bool        `json:"migratedFromLocal,omitempty"`
}

// ComputeTotals sums the foods scaled by their portion multipliers, rounding
// each macro to the nearest whole unit.
func ComputeTotals(foods []FoodItem) MacroTotals {
	var cal, prot, carb, fat float64
	for _, f := range foods {
		cal += f.Calories * f.Portion
		prot += f.Protein * f.Portion
		carb += f.Carbs * f.Portion
		fat += f.Fats * f.Portion
	}
	return MacroTotals{
		Calories: int(math.Round(cal)),
		Protein:  int(math.Round(prot)),
		Carbs:    int(math.Round(carb)),
		Fats:     int(math.Round(fat)),
	}
}

// NormalizeMeal validates a record at the store boundary and fills in its
// denormalized totals. Malformed records are rejected on write rather than
// tolerated at every read site. All failures wrap ErrInvalidRecord.
func NormalizeMeal(m *MealRecord) error {
	if !m.MealType.Valid() {
		return fmt.Errorf("%w: invalid meal type %q", ErrInvalidRecord, m.MealType)
	}
	if len(m.Foods) == 0 {
		return fmt.Errorf("%w: meal must contain at least one food", ErrInvalidRecord)
	}
	for i := range m.Foods {
		f := &m.Foods[i]
		if f.Name == "" {
			return fmt.Errorf("%w: food %d: name is required", ErrInvalidRecord, i)
		}
		if f.Portion <= 0 {
			return fmt.Errorf("%w: food %q: portion must be > 0", ErrInvalidRecord, f.Name)
		}
		if f.Calories < 0 || f.Protein < 0 || f.Carbs < 0 || f.Fats < 0 {
			return fmt.Errorf("%w: food %q: macros must be >= 0", ErrInvalidRecord, f.Name)
		}
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidRecord)
	}
	m.Totals = ComputeTotals(m.Foods)
	return nil
}

// MealQuery narrows a QueryByOwner call. Zero-value fields are ignored.
type MealQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// MealRepository is the port for meal persistence. Implementations return
// records ordered newest-first by Timestamp.
type MealRepository interface {
	Save(ctx context.Context, m *MealRecord) (string, error)
	QueryByOwner(ctx context.Context, ownerID string, q MealQuery) ([]MealRecord, error)
	Delete(ctx context.Context, ownerID, id string) error
	// DistinctTimestamps returns the set of exact meal instants already
	// stored for the owner, keyed by UTC RFC 3339 with nanoseconds.
	DistinctTimestamps(ctx context.Context, ownerID string) (map[string]struct{}, error)
	// Clear removes every record owned by ownerID.
	Clear(ctx context.Context, ownerID string) error
}

// TimestampKey is the canonical identity of a meal instant used for
// migration deduplication. Exact instant equality, not calendar date.
func TimestampKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// StorageContext selects which backend a store call operates on. The caller
// decides: guest requests use the local cache, authenticated requests the
// remote store. There is no ambient auth read inside the store layer.
type StorageContext struct {
	OwnerID string
}

// Local is the storage context for unauthenticated guest use.
func Local() StorageContext {
	return StorageContext{OwnerID: GuestOwnerID}
}

// Remote is the storage context for an authenticated owner.
func Remote(ownerID string) StorageContext {
	return StorageContext{OwnerID: ownerID}
}

// IsLocal reports whether the context targets the guest cache.
func (c StorageContext) IsLocal() bool {
	return c.OwnerID == GuestOwnerID || c.OwnerID == ""
}
