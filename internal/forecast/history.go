package forecast

import (
	"time"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// CustomerStats holds the per-customer cadence and recency statistics derived
// from the order ledger for one forecast run.
type CustomerStats struct {
	CustomerID         int64
	CustomerName       string
	TotalOrders        int
	SameWeekdayOrders  int
	LastOrderDate      time.Time
	UniqueOrderDates   int
	CycleDays          float64
	DaysSinceLastOrder float64
}

type historyAccumulator struct {
	name    string
	total   int
	sameDay int
	dates   map[time.Time]struct{}
	first   time.Time
	last    time.Time
}

// AggregateCustomerHistory scans the full ledger and derives one CustomerStats
// per customer, relative to the target weekday and the run timestamp. Orders
// without a customer or delivery date are expected to be filtered out by the
// data source. Customers with fewer than two distinct order dates get the
// default cycle length (assume weekly).
func AggregateCustomerHistory(orders []models.Order, target Weekday, now time.Time, defaultCycleDays float64) []CustomerStats {
	accs := make(map[int64]*historyAccumulator)
	var order []int64 // first-seen scan order, kept for deterministic output

	for _, o := range orders {
		date := truncateToDate(o.DeliveryDate)
		acc, ok := accs[o.CustomerID]
		if !ok {
			acc = &historyAccumulator{
				name:  o.CustomerName,
				dates: make(map[time.Time]struct{}),
				first: date,
				last:  date,
			}
			accs[o.CustomerID] = acc
			order = append(order, o.CustomerID)
		}
		acc.total++
		if WeekdayOf(date) == target {
			acc.sameDay++
		}
		acc.dates[date] = struct{}{}
		if date.Before(acc.first) {
			acc.first = date
		}
		if date.After(acc.last) {
			acc.last = date
		}
	}

	nowDate := truncateToDate(now)
	stats := make([]CustomerStats, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		cycle := defaultCycleDays
		if n := len(acc.dates); n >= 2 {
			cycle = acc.last.Sub(acc.first).Hours() / 24 / float64(n-1)
		}
		stats = append(stats, CustomerStats{
			CustomerID:         id,
			CustomerName:       acc.name,
			TotalOrders:        acc.total,
			SameWeekdayOrders:  acc.sameDay,
			LastOrderDate:      acc.last,
			UniqueOrderDates:   len(acc.dates),
			CycleDays:          cycle,
			DaysSinceLastOrder: nowDate.Sub(acc.last).Hours() / 24,
		})
	}
	return stats
}
