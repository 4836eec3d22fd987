package forecast

// Params collects every tunable constant of the forecaster. The defaults come
// from operational experience with the delivery ledger; in particular the
// backfill discount and the cross-weekday damping are deliberate conservative
// knobs, not derived values.
type Params struct {
	// Customer qualification and ranking.
	MinScore             float64
	MinSameWeekdayOrders int
	MinTotalOrders       int
	MaxCustomers         int

	// Cadence model.
	DefaultCycleDays  float64
	CycleTolerance    float64
	EstablishedOrders int
	EstablishedBonus  float64

	// Product prediction.
	MaxProductsPerCustomer int
	MinProductTotalOrders  int
	CrossWeekdayDamping    float64

	// Demand roll-up.
	MaxDemandProducts   int
	BackfillMinOrders   int
	BackfillDiscount    float64
	BackfillMinQuantity float64
}

// DefaultParams returns the production parameter set.
func DefaultParams() Params {
	return Params{
		MinScore:             0.15,
		MinSameWeekdayOrders: 2,
		MinTotalOrders:       5,
		MaxCustomers:         8,

		DefaultCycleDays:  7,
		CycleTolerance:    2,
		EstablishedOrders: 5,
		EstablishedBonus:  1.2,

		MaxProductsPerCustomer: 5,
		MinProductTotalOrders:  3,
		CrossWeekdayDamping:    0.3,

		MaxDemandProducts:   15,
		BackfillMinOrders:   3,
		BackfillDiscount:    0.3,
		BackfillMinQuantity: 0.5,
	}
}
