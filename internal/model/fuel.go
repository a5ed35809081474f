package model

import "time"

// Fuel represents a fuel purchase record. Name is the responsible person.
type Fuel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Vehicle     string    `json:"vehicle,omitempty"`
	Odometer    *int64    `json:"odometer,omitempty"`
	Details     string    `json:"details,omitempty"`
	Receipt     string    `json:"receipt,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// FallbackFuelType is assigned to fuels when their type is removed and
// no other type remains in the registry.
const FallbackFuelType = "Sin tipo"

// FuelHistory is a denormalized snapshot of a fuel record, created on
// purchase and edited in place when the owning record is edited. This
// differs from the tool movement ledger, which is append-only.
type FuelHistory struct {
	ID          int64   `json:"id"`
	Responsible string  `json:"responsible"`
	Quantity    float64 `json:"quantity"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Vehicle     string  `json:"vehicle,omitempty"`
	Odometer    *int64  `json:"odometer,omitempty"`
	Details     string  `json:"details,omitempty"`
	Receipt     string  `json:"receipt,omitempty"`
}
