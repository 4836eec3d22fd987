package models

// Product represents a catalog product. UnitPrice is per kilogram and is
// carried through to forecast output as display metadata only.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}
