package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartLine binds a product to a quantity in the shared cart. A line only
// exists while its quantity is positive; reaching zero deletes it.
type CartLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Checked   bool      `json:"checked" db:"checked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
