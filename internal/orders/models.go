package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable once created except for Status. Total is fixed at
// creation and never recomputed.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Address       string          `json:"delivery_address"`
	Notes         string          `json:"notes,omitempty"`
	Channel       string          `json:"channel"`
	Status        Status          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem snapshots product name and unit price at purchase time, so
// later catalog edits never change what the order shows.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

const (
	ChannelWeb   = "Web"
	ChannelMovil = "Movil"
)

var channels = []string{ChannelWeb, ChannelMovil}

// NormalizeChannel maps free-form input onto a known channel; anything
// unrecognized falls back to Web rather than erroring.
func NormalizeChannel(s string) string {
	t := strings.TrimSpace(s)
	for _, c := range channels {
		if strings.EqualFold(c, t) {
			return c
		}
	}
	return ChannelWeb
}
