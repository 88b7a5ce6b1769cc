package orders

import "fmt"

// StockShortfall reports one product that could not cover a requested
// quantity, with what was actually available.
type StockShortfall struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// ValidationError is caller-correctable: bad cart, unknown or inactive
// product, insufficient stock, unrecognized status. It never wraps a
// storage error.
type ValidationError struct {
	Message         string           `json:"message"`
	MissingProducts []string         `json:"missing_products,omitempty"`
	Shortfalls      []StockShortfall `json:"shortfalls,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
