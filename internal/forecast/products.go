package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// ProductPrediction is one predicted product line for a shortlisted customer.
type ProductPrediction struct {
	ProductID         int64
	ProductName       string
	PredictedQuantity float64
	Score             float64
	SameWeekdayOrders int
	TotalOrders       int
	LastOrderDate     time.Time
}

type productAffinity struct {
	name        string
	sameDay     int
	sameDayQty  float64
	total       int
	totalQty    float64
	lastOrdered time.Time
}

// PredictProducts derives, for every shortlisted customer, the products they
// are likely to include and the quantity to expect, from that customer's own
// order history. A product stays in if it has weekday-specific precedent or
// enough general frequency; quantities are extrapolated from the weekday
// average when one exists, the overall average otherwise, rounded up to the
// next half kilogram.
func PredictProducts(customerOrders map[int64][]models.Order, target Weekday, p Params) map[int64][]ProductPrediction {
	out := make(map[int64][]ProductPrediction, len(customerOrders))
	for customerID, orders := range customerOrders {
		out[customerID] = predictForCustomer(orders, target, p)
	}
	return out
}

func predictForCustomer(orders []models.Order, target Weekday, p Params) []ProductPrediction {
	affinities := make(map[int64]*productAffinity)
	var seen []int64

	for _, o := range orders {
		date := truncateToDate(o.DeliveryDate)
		sameDay := WeekdayOf(date) == target
		for _, line := range o.Items {
			aff, ok := affinities[line.ProductID]
			if !ok {
				aff = &productAffinity{name: line.ProductName, lastOrdered: date}
				affinities[line.ProductID] = aff
				seen = append(seen, line.ProductID)
			}
			aff.total++
			aff.totalQty += line.Quantity
			if sameDay {
				aff.sameDay++
				aff.sameDayQty += line.Quantity
			}
			if date.After(aff.lastOrdered) {
				aff.lastOrdered = date
			}
		}
	}

	predictions := make([]ProductPrediction, 0, len(seen))
	for _, productID := range seen {
		aff := affinities[productID]
		if aff.sameDay < 1 && aff.total < p.MinProductTotalOrders {
			continue
		}

		var score float64
		if aff.sameDay > 0 {
			score = float64(aff.sameDay) / float64(aff.total)
		} else {
			// No weekday precedent: damp hard so general-frequency products
			// rank below anything with a same-weekday track record.
			score = float64(aff.total) / 10 * p.CrossWeekdayDamping
		}

		raw := aff.totalQty / float64(aff.total)
		if aff.sameDay > 0 && aff.sameDayQty > 0 {
			raw = aff.sameDayQty / float64(aff.sameDay)
		}

		predictions = append(predictions, ProductPrediction{
			ProductID:         productID,
			ProductName:       aff.name,
			PredictedQuantity: roundUpHalf(raw),
			Score:             score,
			SameWeekdayOrders: aff.sameDay,
			TotalOrders:       aff.total,
			LastOrderDate:     aff.lastOrdered,
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Score != predictions[j].Score {
			return predictions[i].Score > predictions[j].Score
		}
		return predictions[i].ProductID < predictions[j].ProductID
	})

	if len(predictions) > p.MaxProductsPerCustomer {
		predictions = predictions[:p.MaxProductsPerCustomer]
	}
	return predictions
}

// roundUpHalf rounds a quantity up to the nearest half unit.
func roundUpHalf(q float64) float64 {
	return math.Ceil(q*2) / 2
}
