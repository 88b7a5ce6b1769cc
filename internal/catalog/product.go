package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog row. Price is fixed-point (NUMERIC(18,2) in the
// store); Stock is the only field mutated by the ordering flow.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}
