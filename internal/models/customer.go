package models

// Customer represents a delivery customer
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
