package rundomain

import (
	"fmt"
	"time"
)

// PeriodKey maps a point in time to the identifier of the most recently
// completed recurring reset boundary, formatted as "YYYY-Www" with a
// Monday-based week-of-year. A timestamp on the reset day but before the
// reset hour still belongs to the previous period.
func PeriodKey(t time.Time, resetDay time.Weekday, resetHourUTC int) string {
	t = t.UTC()

	// Monday-indexed weekdays so the arithmetic matches the game's weekly
	// reset cycle regardless of what Go considers the first day of the week.
	weekday := mondayIndex(t.Weekday())
	reset := mondayIndex(resetDay)

	daysSinceReset := (weekday - reset + 7) % 7

	var resetDate time.Time
	if daysSinceReset == 0 && t.Hour() < resetHourUTC {
		resetDate = t.AddDate(0, 0, -7)
	} else {
		resetDate = t.AddDate(0, 0, -daysSinceReset)
	}

	return fmt.Sprintf("%d-W%02d", resetDate.Year(), mondayWeekOfYear(resetDate))
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// mondayWeekOfYear is the week number with Monday as the first day of the
// week; days before the year's first Monday fall in week 0.
func mondayWeekOfYear(t time.Time) int {
	yday := t.YearDay() - 1
	return (yday + 7 - mondayIndex(t.Weekday())) / 7
}
