package model

import "time"

// Component is a spare part in the repair shop's inventory. It maps to a
// row of the `components` table. Stock is informational: nothing
// decrements InStock when a ticket consumes a component.
type Component struct {
	ID          string     // components.id
	Title       string     // components.title
	Description string     // components.description
	Price       int64      // components.price
	InStock     int        // components.in_stock
	CreatedBy   *string    // components.created_by
	CreatedAt   time.Time  // components.created_at
	UpdatedAt   *time.Time // components.updated_at
}
