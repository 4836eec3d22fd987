package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// CustomerPrediction is the per-customer block of the forecast result.
type CustomerPrediction struct {
	CustomerID                  int64              `json:"customerId"`
	CustomerName                string             `json:"customerName"`
	ScorePercent                int                `json:"scorePercent"`
	WeekdayFrequencyPercent     int                `json:"weekdayFrequencyPercent"`
	CycleDays                   float64            `json:"cycleDays"`
	DaysSinceLastOrder          int                `json:"daysSinceLastOrder"`
	SameWeekdayHistoricalOrders int                `json:"sameWeekdayHistoricalOrders"`
	TotalOrders                 int                `json:"totalOrders"`
	LastOrderDate               time.Time          `json:"lastOrderDate"`
	TotalPredictedQuantity      float64            `json:"totalPredictedQuantity"`
	Predictions                 []PredictedProduct `json:"predictions"`
}

// PredictedProduct is one product line inside a customer prediction.
type PredictedProduct struct {
	ProductID         int64     `json:"productId"`
	ProductName       string    `json:"productName"`
	PredictedQuantity float64   `json:"predictedQuantity"`
	ScorePercent      int       `json:"scorePercent"`
	SameWeekdayOrders int       `json:"sameWeekdayOrders"`
	TotalOrders       int       `json:"totalOrders"`
	LastOrderDate     time.Time `json:"lastOrderDate"`
}

// ProductDemand is one product bucket of the global demand list.
type ProductDemand struct {
	ProductID            int64                `json:"productId"`
	ProductName          string               `json:"productName"`
	PredictedQuantity    float64              `json:"predictedQuantity"`
	CustomerCount        int                  `json:"customerCount"`
	Customers            []DemandContribution `json:"customers"`
	IsHistoricalEstimate bool                 `json:"isHistoricalEstimate,omitempty"`
	HistoricalAvgPerDate float64              `json:"historicalAvgPerDate,omitempty"`
}

// DemandContribution attributes part of a demand bucket to one customer.
type DemandContribution struct {
	CustomerName string  `json:"customerName"`
	Quantity     float64 `json:"quantity"`
	ScorePercent int     `json:"scorePercent"`
}

type demandBucket struct {
	productID int64
	name      string
	quantity  float64
	contribs  []DemandContribution
}

type populationStats struct {
	name       string
	totalQty   float64
	orderCount int
	dates      map[time.Time]struct{}
}

// ComposeCustomerPredictions rolls each shortlisted customer's product
// predictions into its final output block, in shortlist rank order.
func ComposeCustomerPredictions(shortlist []ScoredCustomer, predictions map[int64][]ProductPrediction) []CustomerPrediction {
	out := make([]CustomerPrediction, 0, len(shortlist))
	for _, c := range shortlist {
		products := predictions[c.CustomerID]
		lines := make([]PredictedProduct, 0, len(products))
		total := 0.0
		for _, pr := range products {
			total += pr.PredictedQuantity
			lines = append(lines, PredictedProduct{
				ProductID:         pr.ProductID,
				ProductName:       pr.ProductName,
				PredictedQuantity: pr.PredictedQuantity,
				ScorePercent:      toPercent(pr.Score),
				SameWeekdayOrders: pr.SameWeekdayOrders,
				TotalOrders:       pr.TotalOrders,
				LastOrderDate:     pr.LastOrderDate,
			})
		}
		out = append(out, CustomerPrediction{
			CustomerID:                  c.CustomerID,
			CustomerName:                c.CustomerName,
			ScorePercent:                toPercent(c.Score),
			WeekdayFrequencyPercent:     toPercent(c.WeekdayFrequency),
			CycleDays:                   round1(c.CycleDays),
			DaysSinceLastOrder:          int(c.DaysSinceLastOrder),
			SameWeekdayHistoricalOrders: c.SameWeekdayOrders,
			TotalOrders:                 c.TotalOrders,
			LastOrderDate:               c.LastOrderDate,
			TotalPredictedQuantity:      round1(total),
			Predictions:                 lines,
		})
	}
	return out
}

// ComposeProductDemand merges every per-customer prediction into global
// per-product buckets, backfills products that are historically common on the
// target weekday but missing from the shortlist's predictions (at a
// conservative discount, since no specific likely buyer corroborates them),
// then ranks and truncates the final list.
func ComposeProductDemand(shortlist []ScoredCustomer, predictions map[int64][]ProductPrediction, weekdayOrders []models.Order, p Params) []ProductDemand {
	buckets := make(map[int64]*demandBucket)
	var seen []int64

	for _, c := range shortlist {
		for _, pr := range predictions[c.CustomerID] {
			b, ok := buckets[pr.ProductID]
			if !ok {
				b = &demandBucket{productID: pr.ProductID, name: pr.ProductName}
				buckets[pr.ProductID] = b
				seen = append(seen, pr.ProductID)
			}
			b.quantity += pr.PredictedQuantity
			b.contribs = append(b.contribs, DemandContribution{
				CustomerName: c.CustomerName,
				Quantity:     pr.PredictedQuantity,
				ScorePercent: toPercent(pr.Score),
			})
		}
	}

	demand := make([]ProductDemand, 0, len(seen))
	for _, id := range seen {
		b := buckets[id]
		demand = append(demand, ProductDemand{
			ProductID:         b.productID,
			ProductName:       b.name,
			PredictedQuantity: round1(b.quantity),
			CustomerCount:     len(b.contribs),
			Customers:         b.contribs,
		})
	}

	demand = append(demand, backfillFromPopulation(weekdayOrders, buckets, p)...)

	sort.Slice(demand, func(i, j int) bool {
		if demand[i].PredictedQuantity != demand[j].PredictedQuantity {
			return demand[i].PredictedQuantity > demand[j].PredictedQuantity
		}
		return demand[i].ProductID < demand[j].ProductID
	})

	if len(demand) > p.MaxDemandProducts {
		demand = demand[:p.MaxDemandProducts]
	}
	return demand
}

// backfillFromPopulation estimates demand for products ordered regularly on
// the target weekday across the whole customer base but absent from the
// shortlist's predictions.
func backfillFromPopulation(weekdayOrders []models.Order, covered map[int64]*demandBucket, p Params) []ProductDemand {
	pop := make(map[int64]*populationStats)
	var seen []int64

	for _, o := range weekdayOrders {
		date := truncateToDate(o.DeliveryDate)
		for _, line := range o.Items {
			s, ok := pop[line.ProductID]
			if !ok {
				s = &populationStats{name: line.ProductName, dates: make(map[time.Time]struct{})}
				pop[line.ProductID] = s
				seen = append(seen, line.ProductID)
			}
			s.totalQty += line.Quantity
			s.orderCount++
			s.dates[date] = struct{}{}
		}
	}

	var estimates []ProductDemand
	for _, id := range seen {
		s := pop[id]
		if s.orderCount < p.BackfillMinOrders {
			continue
		}
		if _, ok := covered[id]; ok {
			continue
		}
		avgPerDate := s.totalQty / float64(len(s.dates))
		estimate := round1(avgPerDate * p.BackfillDiscount)
		if estimate < p.BackfillMinQuantity {
			continue
		}
		estimates = append(estimates, ProductDemand{
			ProductID:            id,
			ProductName:          s.name,
			PredictedQuantity:    estimate,
			CustomerCount:        0,
			Customers:            []DemandContribution{},
			IsHistoricalEstimate: true,
			HistoricalAvgPerDate: avgPerDate,
		})
	}
	return estimates
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toPercent(v float64) int {
	return int(math.Round(v * 100))
}
