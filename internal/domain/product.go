package domain

import "time"

// Product is a catalog entry owned by the seller who created it.
type Product struct {
	ID                int64
	Name              string
	Description       string
	Price             float64
	Quantity          int
	CreatedByID       int64
	CreatedByUsername string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
