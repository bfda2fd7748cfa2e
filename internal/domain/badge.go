package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Rarity ranks how hard a badge is to earn.
type Rarity string

// Badge rarities.
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// RequirementType names the statistic a badge requirement is tested against.
type RequirementType string

// Supported requirement types.
const (
	ReqMealsLogged    RequirementType = "meals_logged"
	ReqStreakDays     RequirementType = "streak_days"
	ReqPhotoLogs      RequirementType = "photo_logs"
	ReqGoalDays       RequirementType = "goal_days"
	ReqProteinDay     RequirementType = "protein_day"
	ReqEarlyBreakfast RequirementType = "early_breakfast"
)

// Requirement is the unlock condition of a badge.
type Requirement struct {
	Type  RequirementType `json:"type"`
	Value int             `json:"value"`
}

// BadgeDefinition is one entry of the static badge catalog.
type BadgeDefinition struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Requirement Requirement `json:"requirement"`
	Rarity      Rarity      `json:"rarity"`
}

// BadgeCatalog is the immutable badge configuration, loaded once at process
// start and passed explicitly to whoever evaluates it.
type BadgeCatalog struct {
	badges []BadgeDefinition
}

// NewBadgeCatalog validates definitions and builds a catalog. Unknown
// requirement types and rarity tiers are rejected here so no badge can
// ship as silently unearnable or mislabelled.
func NewBadgeCatalog(defs []BadgeDefinition) (*BadgeCatalog, error) {
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("badge %q: id is required", d.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("badge %q: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}
		switch d.Requirement.Type {
		case ReqMealsLogged, ReqStreakDays, ReqPhotoLogs, ReqGoalDays, ReqProteinDay, ReqEarlyBreakfast:
		default:
			return nil, fmt.Errorf("badge %q: unknown requirement type %q", d.ID, d.Requirement.Type)
		}
		if d.Requirement.Value <= 0 {
			return nil, fmt.Errorf("badge %q: requirement value must be > 0", d.ID)
		}
		switch d.Rarity {
		case RarityCommon, RarityUncommon, RarityRare, RarityLegendary:
		default:
			return nil, fmt.Errorf("badge %q: unknown rarity %q", d.ID, d.Rarity)
		}
	}
	return &BadgeCatalog{badges: defs}, nil
}

// LoadBadgeCatalog reads and validates a catalog from a JSON file.
func LoadBadgeCatalog(path string) (*BadgeCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("badge catalog: %w", err)
	}
	var defs []BadgeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("badge catalog %s: %w", path, err)
	}
	return NewBadgeCatalog(defs)
}

// Badges returns the catalog entries in definition order.
func (c *BadgeCatalog) Badges() []BadgeDefinition {
	return c.badges
}

// Len returns the number of badges in the catalog.
func (c *BadgeCatalog) Len() int {
	return len(c.badges)
}

// BadgeFacts carries the counts a badge evaluation needs beyond the stats
// document. They require a full record snapshot, so the caller supplies
// them rather than the evaluator querying a store.
type BadgeFacts struct {
	PhotoLogs       int
	GoalDays        int
	ProteinDays     int
	EarlyBreakfasts int
}

// FactsFromMeals derives badge facts from a fetched record snapshot and the
// owner's goals. A goal day stays within the calorie goal with at least one
// meal logged; a protein day meets the protein goal; an early-breakfast day
// has a breakfast logged before 09:00 in loc. The day-based counts are over
// distinct calendar dates, so logging twice on one day earns no extra credit.
func FactsFromMeals(meals []MealRecord, goals Goals, loc *time.Location) BadgeFacts {
	var facts BadgeFacts
	earlyDays := make(map[string]struct{})
	for _, m := range meals {
		if m.HasPhoto {
			facts.PhotoLogs++
		}
		if m.MealType == MealBreakfast && m.Timestamp.In(loc).Hour() < 9 {
			earlyDays[DayKey(m.Timestamp, loc)] = struct{}{}
		}
	}
	facts.EarlyBreakfasts = len(earlyDays)
	for _, day := range GroupByDay(meals, loc) {
		totals := DailyTotals(day)
		if totals.Calories <= goals.Calories {
			facts.GoalDays++
		}
		if totals.Protein >= goals.Protein {
			facts.ProteinDays++
		}
	}
	return facts
}

// EvaluateBadges returns the IDs of badges newly earned by the profile, in
// catalog order, each at most once. Pure predicate evaluation: persisting
// the result is the caller's job, so calling twice without persisting
// returns the same list twice.
func EvaluateBadges(profile *UserProfile, catalog *BadgeCatalog, facts BadgeFacts) []string {
	var earned []string
	for _, b := range catalog.Badges() {
		if profile.Stats.HasBadge(b.ID) {
			continue
		}
		var have int
		switch b.Requirement.Type {
		case ReqMealsLogged:
			have = profile.Stats.TotalMeals
		case ReqStreakDays:
			have = profile.Stats.CurrentStreak
		case ReqPhotoLogs:
			have = facts.PhotoLogs
		case ReqGoalDays:
			have = facts.GoalDays
		case ReqProteinDay:
			have = facts.ProteinDays
		case ReqEarlyBreakfast:
			have = facts.EarlyBreakfasts
		default:
			continue
		}
		if have >= b.Requirement.Value {
			earned = append(earned, b.ID)
		}
	}
	return earned
}

// BadgeProgress reports how far a profile is toward one badge.
type BadgeProgress struct {
	Badge    BadgeDefinition `json:"badge"`
	Earned   bool            `json:"earned"`
	Current  int             `json:"current"`
	Required int             `json:"required"`
}

// Progress returns per-badge progress for the whole catalog, for display.
func Progress(profile *UserProfile, catalog *BadgeCatalog, facts BadgeFacts) []BadgeProgress {
	out := make([]BadgeProgress, 0, catalog.Len())
	for _, b := range catalog.Badges() {
		var have int
		switch b.Requirement.Type {
		case ReqMealsLogged:
			have = profile.Stats.TotalMeals
		case ReqStreakDays:
			have = profile.Stats.CurrentStreak
		case ReqPhotoLogs:
			have = facts.PhotoLogs
		case ReqGoalDays:
			have = facts.GoalDays
		case ReqProteinDay:
			have = facts.ProteinDays
		case ReqEarlyBreakfast:
			have = facts.EarlyBreakfasts
		}
		if have > b.Requirement.Value {
			have = b.Requirement.Value
		}
		out = append(out, BadgeProgress{
			Badge:    b,
			Earned:   profile.Stats.HasBadge(b.ID),
			Current:  have,
			Required: b.Requirement.Value,
		})
	}
	return out
}
