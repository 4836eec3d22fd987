package models

import "time"

// Order represents a delivery order. DeliveryDate carries calendar-date
// semantics only; the time of day is always midnight UTC.
type Order struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	DeliveryDate time.Time   `json:"delivery_date"`
	TotalAmount  float64     `json:"total_amount"`
	Items        []OrderLine `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OrderLine is a single product line inside an order. Quantity is in kilograms.
type OrderLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}
