package model

import "time"

// Tool represents an inventory tool (quantity-based, not individual tracking).
type Tool struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Quantity     int        `json:"quantity"`
	Weight       float64    `json:"weight"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	Location     string     `json:"location"`
	Details      string     `json:"details,omitempty"`
	Photo        string     `json:"photo,omitempty"`
	RegisterDate time.Time  `json:"register_date"`
	LoanedAt     *time.Time `json:"loaned_at,omitempty"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// Tool statuses. Prestado is the only status that carries a LoanedAt
// timestamp; a return may set any registered status, not just Disponible.
const (
	StatusAvailable   = "Disponible"
	StatusLoaned      = "Prestado"
	StatusMaintenance = "En mantenimiento"
	StatusDamaged     = "Dañado"
	StatusLost        = "Perdido"
)

// FallbackCategory is assigned to tools whose category is removed
// from the settings registry.
const FallbackCategory = "General"
