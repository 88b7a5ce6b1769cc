package orders

import (
	"context"
	"errors"

	"github.com/producthub/storefront/internal/catalog"
)

// ErrConflict marks a concurrent-modification failure detected by the
// storage layer. The service retries the whole unit of work a bounded
// number of times before surfacing the failure.
var ErrConflict = errors.New("concurrent modification")

// Tx is one validate-and-mutate unit of work. Implementations must make
// everything done through a Tx atomic and isolated: either the whole
// unit commits or none of it is visible.
type Tx interface {
	// ProductsForUpdate fetches and locks the product rows for ids,
	// keyed by id. Missing ids are simply absent from the map. Callers
	// pass ids sorted so every transaction locks rows in the same order.
	ProductsForUpdate(ctx context.Context, ids []string) (map[string]catalog.Product, error)

	// AdjustStock applies a delta to one product's stock.
	AdjustStock(ctx context.Context, productID string, delta int) error

	// InsertOrder persists a new order and its items.
	InsertOrder(ctx context.Context, o *Order) error

	// OrderForUpdate fetches and locks one order with its items.
	// Returns *NotFoundError when the id is unknown.
	OrderForUpdate(ctx context.Context, orderID string) (*Order, error)

	// SetStatus writes the order's status.
	SetStatus(ctx context.Context, orderID string, s Status) error
}

type Store interface {
	// InTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// GetOrder fetches one order with its items. Returns *NotFoundError
	// when the id is unknown.
	GetOrder(ctx context.Context, orderID string) (*Order, error)

	// ListOrders returns orders newest first, optionally filtered by
	// status (empty means all).
	ListOrders(ctx context.Context, filter Status) ([]Order, error)
}
