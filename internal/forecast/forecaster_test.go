package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// fakeLedger serves a fixed order set through the DataSource queries.
type fakeLedger struct {
	orders []models.Order
	rules  []models.HolidayRule
	err    error
}

func (f *fakeLedger) OrdersWithCustomer() ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeLedger) OrdersByCustomers(ids []int64) ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Order
	for _, o := range f.orders {
		if want[o.CustomerID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeLedger) OrdersOnWeekday(wd Weekday) ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Order
	for _, o := range f.orders {
		if WeekdayOf(o.DeliveryDate) == wd {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeLedger) HolidayRules() ([]models.HolidayRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newForecaster(ledger *fakeLedger) *Forecaster {
	return NewForecaster(ledger, DefaultParams(), testLogger())
}

// tuesdayLedger builds a ledger where Alice reliably orders on Tuesdays and
// Bob has too little history to qualify but enough to feed the population
// backfill. The run timestamp is a Monday, so the target is Tuesday.
func tuesdayLedger() (*fakeLedger, time.Time) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) // Monday

	var orders []models.Order
	// Alice: six consecutive Tuesdays, tomatoes every week, cucumbers in the
	// last three.
	start := date(2025, 4, 22)
	for i := 0; i < 6; i++ {
		items := []models.OrderLine{line(10, "Tomatoes", 3)}
		if i >= 3 {
			items = append(items, line(11, "Cucumbers", 2))
		}
		o := order(1, "Alice", start.AddDate(0, 0, 7*i), items...)
		o.ID = int64(i + 1)
		orders = append(orders, o)
	}
	// Bob: three Tuesdays of potatoes, not enough total orders to qualify.
	for i := 0; i < 3; i++ {
		o := order(2, "Bob", start.AddDate(0, 0, 7*i), line(12, "Potatoes", 5))
		o.ID = int64(100 + i)
		orders = append(orders, o)
	}

	return &fakeLedger{orders: orders}, now
}

func TestForecaster_EmptyLedger(t *testing.T) {
	result, err := newForecaster(&fakeLedger{}).Run(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Empty(t, result.CustomerPredictions)
	assert.Empty(t, result.OverallProductDemand)
	assert.Zero(t, result.TotalCustomersWithPredictions)
	assert.Equal(t, "Tuesday", result.Weekday.Label)
}

func TestForecaster_FullPipeline(t *testing.T) {
	ledger, now := tuesdayLedger()
	result, err := newForecaster(ledger).Run(now)
	require.NoError(t, err)

	assert.Equal(t, date(2025, 6, 3), result.TargetDate)
	assert.Equal(t, 0, result.DaysSkipped)
	assert.Equal(t, WeekdayInfo{Index: 2, Label: "Tuesday"}, result.Weekday)

	// Only Alice qualifies: perfect Tuesday cadence, cycle match, bonus.
	require.Len(t, result.CustomerPredictions, 1)
	alice := result.CustomerPredictions[0]
	assert.Equal(t, "Alice", alice.CustomerName)
	assert.Equal(t, 240, alice.ScorePercent)
	assert.Equal(t, 6, alice.TotalOrders)
	assert.Equal(t, 6, alice.SameWeekdayHistoricalOrders)
	assert.Equal(t, 7.0, alice.CycleDays)
	assert.Equal(t, 6, alice.DaysSinceLastOrder)

	require.Len(t, alice.Predictions, 2)
	assert.Equal(t, int64(10), alice.Predictions[0].ProductID)
	assert.Equal(t, 3.0, alice.Predictions[0].PredictedQuantity)
	assert.Equal(t, int64(11), alice.Predictions[1].ProductID)
	assert.Equal(t, 2.0, alice.Predictions[1].PredictedQuantity)
	assert.Equal(t, 5.0, alice.TotalPredictedQuantity)

	// Demand: Alice's products plus the potato backfill from Bob's history.
	require.Len(t, result.OverallProductDemand, 3)
	assert.Equal(t, int64(10), result.OverallProductDemand[0].ProductID)
	assert.Equal(t, 3.0, result.OverallProductDemand[0].PredictedQuantity)
	assert.Equal(t, int64(11), result.OverallProductDemand[1].ProductID)

	potatoes := result.OverallProductDemand[2]
	assert.Equal(t, int64(12), potatoes.ProductID)
	assert.True(t, potatoes.IsHistoricalEstimate)
	assert.Equal(t, 1.5, potatoes.PredictedQuantity)
	assert.Equal(t, 0, potatoes.CustomerCount)
	assert.InDelta(t, 5.0, potatoes.HistoricalAvgPerDate, 1e-9)

	assert.Equal(t, 1, result.TotalCustomersWithPredictions)
	assert.Equal(t, Thresholds{
		MinScore:               0.15,
		MinSameWeekdayOrders:   2,
		MinTotalOrders:         5,
		MaxCustomers:           8,
		MaxProductsPerCustomer: 5,
	}, result.Thresholds)
}

func TestForecaster_SkipsHolidayWeekday(t *testing.T) {
	ledger, now := tuesdayLedger()
	ledger.rules = []models.HolidayRule{{Weekday: Tuesday.ISO(), IsNonWorking: true}}

	result, err := newForecaster(ledger).Run(now)
	require.NoError(t, err)

	assert.Equal(t, date(2025, 6, 4), result.TargetDate)
	assert.Equal(t, 1, result.DaysSkipped)
	assert.Equal(t, "Wednesday", result.Weekday.Label)
	// Nobody orders on Wednesdays, so the shortlist is empty.
	assert.Empty(t, result.CustomerPredictions)
}

func TestForecaster_Idempotent(t *testing.T) {
	ledger, now := tuesdayLedger()
	f := newForecaster(ledger)

	first, err := f.Run(now)
	require.NoError(t, err)
	second, err := f.Run(now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestForecaster_DataAccessFailureAborts(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("connection refused")}

	result, err := newForecaster(ledger).Run(time.Now())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "connection refused")
}

func TestForecaster_ResultProperties(t *testing.T) {
	ledger, now := tuesdayLedger()
	result, err := newForecaster(ledger).Run(now)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.CustomerPredictions), 8)
	assert.LessOrEqual(t, len(result.OverallProductDemand), 15)
	for _, c := range result.CustomerPredictions {
		assert.GreaterOrEqual(t, c.ScorePercent, 15)
		assert.GreaterOrEqual(t, c.SameWeekdayHistoricalOrders, 2)
		assert.GreaterOrEqual(t, c.TotalOrders, 5)
		assert.LessOrEqual(t, len(c.Predictions), 5)
		for _, p := range c.Predictions {
			// Quantities land on half-unit steps.
			assert.Zero(t, math.Mod(p.PredictedQuantity*2, 1))
			assert.GreaterOrEqual(t, p.PredictedQuantity, 0.0)
		}
	}
	for _, d := range result.OverallProductDemand {
		if d.IsHistoricalEstimate {
			assert.GreaterOrEqual(t, d.PredictedQuantity, 0.5)
			assert.Zero(t, d.CustomerCount)
		}
	}
}
