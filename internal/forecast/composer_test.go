package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Janescience/deliback-sub000/internal/models"
)

func TestComposeCustomerPredictions_RollUp(t *testing.T) {
	shortlist := []ScoredCustomer{
		{CustomerID: 1, CustomerName: "Alice", Score: 1.2, WeekdayFrequency: 0.5, CycleDays: 6.66, DaysSinceLastOrder: 7, SameWeekdayOrders: 3, TotalOrders: 6},
	}
	predictions := map[int64][]ProductPrediction{
		1: {
			{ProductID: 10, ProductName: "Tomatoes", PredictedQuantity: 3.5, Score: 0.75},
			{ProductID: 11, ProductName: "Cucumbers", PredictedQuantity: 2.0, Score: 0.5},
		},
	}

	got := ComposeCustomerPredictions(shortlist, predictions)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, 120, c.ScorePercent)
	assert.Equal(t, 50, c.WeekdayFrequencyPercent)
	assert.Equal(t, 6.7, c.CycleDays)
	assert.Equal(t, 5.5, c.TotalPredictedQuantity)
	require.Len(t, c.Predictions, 2)
	assert.Equal(t, 75, c.Predictions[0].ScorePercent)
}

func TestComposeCustomerPredictions_ShortlistedWithoutProducts(t *testing.T) {
	shortlist := []ScoredCustomer{{CustomerID: 9, CustomerName: "Quiet", Score: 0.5}}

	got := ComposeCustomerPredictions(shortlist, map[int64][]ProductPrediction{})
	require.Len(t, got, 1)
	assert.Zero(t, got[0].TotalPredictedQuantity)
	assert.Empty(t, got[0].Predictions)
}

func TestComposeProductDemand_MergesCustomers(t *testing.T) {
	shortlist := []ScoredCustomer{
		{CustomerID: 1, CustomerName: "Alice"},
		{CustomerID: 2, CustomerName: "Bob"},
	}
	predictions := map[int64][]ProductPrediction{
		1: {{ProductID: 10, ProductName: "Tomatoes", PredictedQuantity: 3.5, Score: 0.8}},
		2: {{ProductID: 10, ProductName: "Tomatoes", PredictedQuantity: 2.0, Score: 0.4}},
	}

	got := ComposeProductDemand(shortlist, predictions, nil, DefaultParams())
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, 5.5, d.PredictedQuantity)
	assert.Equal(t, 2, d.CustomerCount)
	assert.False(t, d.IsHistoricalEstimate)
	require.Len(t, d.Customers, 2)
	assert.Equal(t, "Alice", d.Customers[0].CustomerName)
	assert.Equal(t, 3.5, d.Customers[0].Quantity)
}

func TestComposeProductDemand_PopulationBackfill(t *testing.T) {
	shortlist := []ScoredCustomer{{CustomerID: 1, CustomerName: "Alice"}}
	predictions := map[int64][]ProductPrediction{
		1: {{ProductID: 10, ProductName: "Tomatoes", PredictedQuantity: 3.0, Score: 1}},
	}
	// Monday history across the whole customer base:
	// - Tomatoes: covered by Alice, never backfilled.
	// - Potatoes: 3 orders, 15 kg over 3 dates -> 5.0 avg -> 1.5 estimate.
	// - Herbs: 3 orders, 3 kg over 3 dates -> 1.0 avg -> 0.3, below cutoff.
	// - Leeks: only 2 orders, below the order floor.
	weekdayOrders := []models.Order{
		order(1, "Alice", date(2025, 1, 6), line(10, "Tomatoes", 3), line(12, "Potatoes", 5), line(13, "Herbs", 1), line(14, "Leeks", 4)),
		order(2, "Bob", date(2025, 1, 13), line(12, "Potatoes", 5), line(13, "Herbs", 1), line(14, "Leeks", 4)),
		order(3, "Cara", date(2025, 1, 20), line(12, "Potatoes", 5), line(13, "Herbs", 1)),
	}

	got := ComposeProductDemand(shortlist, predictions, weekdayOrders, DefaultParams())
	require.Len(t, got, 2)

	assert.Equal(t, int64(10), got[0].ProductID)
	assert.Equal(t, 3.0, got[0].PredictedQuantity)

	backfill := got[1]
	assert.Equal(t, int64(12), backfill.ProductID)
	assert.Equal(t, 1.5, backfill.PredictedQuantity)
	assert.True(t, backfill.IsHistoricalEstimate)
	assert.Equal(t, 0, backfill.CustomerCount)
	assert.InDelta(t, 5.0, backfill.HistoricalAvgPerDate, 1e-9)
}

func TestComposeProductDemand_SortedAndTruncated(t *testing.T) {
	shortlist := []ScoredCustomer{{CustomerID: 1, CustomerName: "Alice"}}
	var products []ProductPrediction
	for p := int64(1); p <= 20; p++ {
		products = append(products, ProductPrediction{
			ProductID:         p,
			ProductName:       "Product",
			PredictedQuantity: float64(p),
		})
	}
	predictions := map[int64][]ProductPrediction{1: products}

	got := ComposeProductDemand(shortlist, predictions, nil, DefaultParams())
	require.Len(t, got, 15)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].PredictedQuantity, got[i].PredictedQuantity)
	}
	assert.Equal(t, 20.0, got[0].PredictedQuantity)
}

func TestComposeProductDemand_EmptyInputs(t *testing.T) {
	got := ComposeProductDemand(nil, nil, nil, DefaultParams())
	assert.Empty(t, got)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 5.5, round1(5.54))
	assert.Equal(t, 5.6, round1(5.56))
	assert.Equal(t, 0.0, round1(0.04))
}
