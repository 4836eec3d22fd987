package forecast

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// DataSource is the read-only view of the order ledger the forecaster needs.
// Implementations must return orders with a customer and a delivery date for
// OrdersWithCustomer, and include line items for the other two order queries.
type DataSource interface {
	OrdersWithCustomer() ([]models.Order, error)
	OrdersByCustomers(ids []int64) ([]models.Order, error)
	OrdersOnWeekday(wd Weekday) ([]models.Order, error)
	HolidayRules() ([]models.HolidayRule, error)
}

// WeekdayInfo labels the target weekday in the result.
type WeekdayInfo struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Thresholds echoes the qualification filters applied during a run.
type Thresholds struct {
	MinScore               float64 `json:"minScore"`
	MinSameWeekdayOrders   int     `json:"minSameWeekdayOrders"`
	MinTotalOrders         int     `json:"minTotalOrders"`
	MaxCustomers           int     `json:"maxCustomers"`
	MaxProductsPerCustomer int     `json:"maxProductsPerCustomer"`
}

// Result is the complete next-delivery forecast.
type Result struct {
	TargetDate                    time.Time            `json:"targetDate"`
	Weekday                       WeekdayInfo          `json:"weekday"`
	DaysSkipped                   int                  `json:"daysSkipped"`
	CustomerPredictions           []CustomerPrediction `json:"customerPredictions"`
	OverallProductDemand          []ProductDemand      `json:"overallProductDemand"`
	TotalCustomersWithPredictions int                  `json:"totalCustomersWithPredictions"`
	Thresholds                    Thresholds           `json:"thresholds"`
}

// Forecaster runs the next-delivery demand forecast pipeline. It holds no
// state between runs; every invocation reads a fresh ledger snapshot.
type Forecaster struct {
	source DataSource
	params Params
	log    *logrus.Logger
}

// NewForecaster initializes a forecaster over a data source.
func NewForecaster(source DataSource, params Params, log *logrus.Logger) *Forecaster {
	return &Forecaster{source: source, params: params, log: log}
}

// Run executes the full pipeline for the next working day after now. A data
// access failure aborts the run; degenerate ledgers (empty, nobody
// qualifying) produce a well-formed result with empty lists.
func (f *Forecaster) Run(now time.Time) (*Result, error) {
	rules, err := f.source.HolidayRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday rules: %w", err)
	}
	target := ResolveTargetDate(now, rules)
	f.log.Debugf("Forecast target %s (%s), %d holiday days skipped",
		target.Date.Format("2006-01-02"), target.Weekday.Label(), target.DaysSkipped)

	orders, err := f.source.OrdersWithCustomer()
	if err != nil {
		return nil, fmt.Errorf("failed to load order ledger: %w", err)
	}
	stats := AggregateCustomerHistory(orders, target.Weekday, now, f.params.DefaultCycleDays)
	shortlist := ScoreCustomers(stats, f.params)
	f.log.Debugf("Shortlisted %d of %d customers", len(shortlist), len(stats))

	predictions := make(map[int64][]ProductPrediction)
	if len(shortlist) > 0 {
		ids := make([]int64, len(shortlist))
		for i, c := range shortlist {
			ids[i] = c.CustomerID
		}
		detailed, err := f.source.OrdersByCustomers(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load shortlist orders: %w", err)
		}
		predictions = PredictProducts(groupByCustomer(detailed), target.Weekday, f.params)
	}

	weekdayOrders, err := f.source.OrdersOnWeekday(target.Weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekday history: %w", err)
	}

	customers := ComposeCustomerPredictions(shortlist, predictions)
	demand := ComposeProductDemand(shortlist, predictions, weekdayOrders, f.params)

	return &Result{
		TargetDate:                    target.Date,
		Weekday:                       WeekdayInfo{Index: int(target.Weekday), Label: target.Weekday.Label()},
		DaysSkipped:                   target.DaysSkipped,
		CustomerPredictions:           customers,
		OverallProductDemand:          demand,
		TotalCustomersWithPredictions: len(customers),
		Thresholds: Thresholds{
			MinScore:               f.params.MinScore,
			MinSameWeekdayOrders:   f.params.MinSameWeekdayOrders,
			MinTotalOrders:         f.params.MinTotalOrders,
			MaxCustomers:           f.params.MaxCustomers,
			MaxProductsPerCustomer: f.params.MaxProductsPerCustomer,
		},
	}, nil
}

func groupByCustomer(orders []models.Order) map[int64][]models.Order {
	grouped := make(map[int64][]models.Order)
	for _, o := range orders {
		grouped[o.CustomerID] = append(grouped[o.CustomerID], o)
	}
	return grouped
}
