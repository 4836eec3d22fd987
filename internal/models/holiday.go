package models

// HolidayRule marks a weekday as a recurring non-delivery day.
// Weekday uses the ISO convention (1=Monday .. 7=Sunday), matching the
// holiday_rules table. A weekday without a rule is a working day.
type HolidayRule struct {
	Weekday      int  `json:"weekday"`
	IsNonWorking bool `json:"is_non_working"`
}
