package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RestockStock is the sentinel stock level applied by the operator
// "restock" action.
const RestockStock = 9999

// Product represents a product in the catalog
type Product struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Category   string          `json:"category" db:"category"`
	Price      decimal.Decimal `json:"price" db:"price"`
	ImgURL     string          `json:"img_url" db:"img_url"`
	Stock      int             `json:"stock" db:"stock"`
	Popularity int             `json:"popularity" db:"popularity"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
