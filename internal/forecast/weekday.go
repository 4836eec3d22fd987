package forecast

import "time"

// Weekday is the canonical weekday numbering used everywhere inside the
// forecaster: 0=Sunday .. 6=Saturday, aligned with time.Weekday. The holiday
// rule table and the weekday-restricted ledger query speak ISO numbering
// (1=Monday .. 7=Sunday); all joins against those go through FromISO/ISO.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayLabels = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// WeekdayOf returns the canonical weekday of a calendar date.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// FromISO converts an ISO weekday number (1=Monday .. 7=Sunday) to the
// canonical numbering. Out-of-range input is normalized modulo 7.
func FromISO(iso int) Weekday {
	return Weekday(((iso % 7) + 7) % 7)
}

// ISO converts the canonical weekday to ISO numbering (1=Monday .. 7=Sunday).
func (w Weekday) ISO() int {
	if w == Sunday {
		return 7
	}
	return int(w)
}

// Label returns the English weekday name.
func (w Weekday) Label() string {
	if w < 0 || w > 6 {
		return "Unknown"
	}
	return weekdayLabels[w]
}

func (w Weekday) String() string {
	return w.Label()
}
