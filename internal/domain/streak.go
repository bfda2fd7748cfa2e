package domain

import "time"

// Streak holds consecutive-day logging runs. Current counts back from
// today; Longest is the longest run found anywhere in history.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreak derives streaks from the set of distinct calendar dates
// present in meals, canonicalized in loc. The result depends only on that
// set: record order, meals per day and meal content are irrelevant.
//
// Current walks backward from today and stops at the first day without a
// meal. A day with no meal yet today means Current is 0; yesterday's run
// earns no partial credit. Longest scans every historical run, so a long
// streak broken last month still counts.
func ComputeStreak(meals []MealRecord, today time.Time, loc *time.Location) Streak {
	days := make(map[string]struct{}, len(meals))
	for _, m := range meals {
		days[DayKey(m.Timestamp, loc)] = struct{}{}
	}
	if len(days) == 0 {
		return Streak{}
	}

	day := today.In(loc)
	current := 0
	for {
		if _, ok := days[day.Format(dayFormat)]; !ok {
			break
		}
		current++
		day = day.AddDate(0, 0, -1)
	}

	return Streak{Current: current, Longest: longestRun(days, loc)}
}

// longestRun finds the longest chain of consecutive dates in the set.
func longestRun(days map[string]struct{}, loc *time.Location) int {
	longest := 0
	for key := range days {
		start, err := time.ParseInLocation(dayFormat, key, loc)
		if err != nil {
			continue
		}
		// Only count runs from their first day.
		prev := start.AddDate(0, 0, -1)
		if _, ok := days[prev.Format(dayFormat)]; ok {
			continue
		}

		run := 0
		for d := start; ; d = d.AddDate(0, 0, 1) {
			if _, ok := days[d.Format(dayFormat)]; !ok {
				break
			}
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
