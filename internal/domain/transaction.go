package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the immutable record produced by a successful checkout.
// TotalPrice and Quantities are computed once from the cart at checkout
// time and never change afterwards.
type Transaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	Quantities int             `json:"quantities" db:"quantities"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// TransactionLine mirrors one cart line at the moment of checkout.
type TransactionLine struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TransactionID uuid.UUID `json:"transaction_id" db:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
