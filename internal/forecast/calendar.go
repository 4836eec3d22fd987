package forecast

import (
	"time"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// TargetDate is the resolved next delivery date.
type TargetDate struct {
	Date        time.Time
	Weekday     Weekday
	DaysSkipped int
}

// maxDateScan bounds the forward walk: one full week covers every possible
// holiday-rule configuration.
const maxDateScan = 7

// ResolveTargetDate walks forward from tomorrow, skipping weekdays marked
// non-working by the holiday rules, and returns the first working date. If
// every candidate in a full week is non-working the last examined candidate
// is returned anyway, so the resolver never blocks the pipeline.
func ResolveTargetDate(now time.Time, rules []models.HolidayRule) TargetDate {
	nonWorking := make(map[Weekday]bool, len(rules))
	for _, r := range rules {
		if r.IsNonWorking {
			nonWorking[FromISO(r.Weekday)] = true
		}
	}

	candidate := truncateToDate(now).AddDate(0, 0, 1)
	skipped := 0
	for i := 0; i < maxDateScan; i++ {
		if !nonWorking[WeekdayOf(candidate)] {
			break
		}
		skipped++
		if i < maxDateScan-1 {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}

	return TargetDate{
		Date:        candidate,
		Weekday:     WeekdayOf(candidate),
		DaysSkipped: skipped,
	}
}

// truncateToDate drops the time-of-day component, keeping the UTC calendar date.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
