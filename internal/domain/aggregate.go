package domain

import (
	"math"
	"time"
)

const dayFormat = "2006-01-02"

// DayKey formats t as a canonical YYYY-MM-DD calendar date in loc. One
// location is applied uniformly to grouping, streaks and weekly averages so
// records never shift buckets near midnight.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayFormat)
}

// DailyTotals sums the totals of the given records. Empty input yields
// all-zero totals. The sum is commutative: record order never matters.
func DailyTotals(meals []MealRecord) MacroTotals {
	var acc MacroTotals
	for _, m := range meals {
		acc = acc.Add(m.Totals)
	}
	return acc
}

// GroupByDay buckets records by the calendar date of their timestamp in loc.
func GroupByDay(meals []MealRecord, loc *time.Location) map[string][]MealRecord {
	groups := make(map[string][]MealRecord)
	for _, m := range meals {
		key := DayKey(m.Timestamp, loc)
		groups[key] = append(groups[key], m)
	}
	return groups
}

// WeeklyAverage computes the per-day average totals over the trailing seven
// days ending at now. The divisor is a fixed 7, not the number of active
// days, so sparse weeks average low rather than skipping empty days.
func WeeklyAverage(meals []MealRecord, now time.Time) MacroTotals {
	cutoff := now.AddDate(0, 0, -7)

	var window []MealRecord
	for _, m := range meals {
		if m.Timestamp.After(cutoff) && !m.Timestamp.After(now) {
			window = append(window, m)
		}
	}

	sum := DailyTotals(window)
	return MacroTotals{
		Calories: roundDiv(sum.Calories, 7),
		Protein:  roundDiv(sum.Protein, 7),
		Carbs:    roundDiv(sum.Carbs, 7),
		Fats:     roundDiv(sum.Fats, 7),
	}
}

func roundDiv(v, by int) int {
	return int(math.Round(float64(v) / float64(by)))
}
