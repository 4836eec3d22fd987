package forecast

import (
	"math"
	"sort"
	"time"
)

// ScoredCustomer is one shortlisted customer with its propensity breakdown.
type ScoredCustomer struct {
	CustomerID         int64
	CustomerName       string
	Score              float64
	WeekdayFrequency   float64
	CycleDays          float64
	DaysSinceLastOrder float64
	SameWeekdayOrders  int
	TotalOrders        int
	LastOrderDate      time.Time
}

// ScoreCustomers converts per-customer statistics into propensity scores,
// drops customers below the qualification thresholds, and returns the top
// candidates sorted by score. Ties are broken by customer id so repeated runs
// over the same ledger produce identical output.
func ScoreCustomers(stats []CustomerStats, p Params) []ScoredCustomer {
	scored := make([]ScoredCustomer, 0, len(stats))
	for _, s := range stats {
		if s.TotalOrders == 0 {
			continue
		}
		freq := float64(s.SameWeekdayOrders) / float64(s.TotalOrders)
		score := freq * recencyMultiplier(s, p)
		if s.TotalOrders >= p.EstablishedOrders {
			score *= p.EstablishedBonus
		}

		if score < p.MinScore ||
			s.SameWeekdayOrders < p.MinSameWeekdayOrders ||
			s.TotalOrders < p.MinTotalOrders {
			continue
		}

		scored = append(scored, ScoredCustomer{
			CustomerID:         s.CustomerID,
			CustomerName:       s.CustomerName,
			Score:              score,
			WeekdayFrequency:   freq,
			CycleDays:          s.CycleDays,
			DaysSinceLastOrder: s.DaysSinceLastOrder,
			SameWeekdayOrders:  s.SameWeekdayOrders,
			TotalOrders:        s.TotalOrders,
			LastOrderDate:      s.LastOrderDate,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].CustomerID < scored[j].CustomerID
	})

	if len(scored) > p.MaxCustomers {
		scored = scored[:p.MaxCustomers]
	}
	return scored
}

// recencyMultiplier rewards customers whose silence matches their ordering
// cycle, then falls back to plain recency bands. Precedence matters: a cycle
// match wins even when the customer also ordered within the last week.
func recencyMultiplier(s CustomerStats, p Params) float64 {
	if math.Abs(s.DaysSinceLastOrder-s.CycleDays) <= p.CycleTolerance {
		return 2.0
	}
	switch {
	case s.DaysSinceLastOrder <= 7:
		return 1.5
	case s.DaysSinceLastOrder <= 14:
		return 1.2
	default:
		return 0.5
	}
}
