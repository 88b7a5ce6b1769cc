package orders

import (
	"context"
	"errors"
	"strings"
)

// maxTxRetries bounds how often a conflicted unit of work is retried
// before the error surfaces to the caller.
const maxTxRetries = 3

// Service is the order/inventory consistency core: it validates carts,
// reserves stock, and drives status transitions with their compensating
// stock adjustments. All storage goes through the Store contract.
type Service struct {
	Store Store
}

// CreateOrder validates the cart and, only if every line passes,
// deducts stock and persists the order as one atomic unit.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, validationf("customer name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, validationf("delivery address is required")
	}
	lines, err := groupLines(in.Items)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(lines))
	for i, ln := range lines {
		ids[i] = ln.ProductID
	}

	var created *Order
	err = s.inTxWithRetry(ctx, func(tx Tx) error {
		products, err := tx.ProductsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		o, err := buildOrder(in, lines, products)
		if err != nil {
			return err
		}
		for _, ln := range lines {
			if err := tx.AdjustStock(ctx, ln.ProductID, -ln.Quantity); err != nil {
				return err
			}
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// StatusUpdate reports the outcome of UpdateStatus. Changed is false
// for the idempotent same-status case.
type StatusUpdate struct {
	Order    *Order
	Previous Status
	Changed  bool
}

// UpdateStatus normalizes the requested status and applies the
// transition. Entering Cancelada restocks the order's items; leaving it
// re-deducts them, failing the whole update on any shortfall. The
// status write and stock side effects commit together.
func (s *Service) UpdateStatus(ctx context.Context, orderID, requested string) (*StatusUpdate, error) {
	next, ok := NormalizeStatus(requested)
	if !ok {
		return nil, validationf("unknown status %q", requested)
	}

	var out *StatusUpdate
	err := s.inTxWithRetry(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		prev := o.Status
		if prev == next {
			out = &StatusUpdate{Order: o, Previous: prev, Changed: false}
			return nil
		}

		switch {
		case entersCancelled(prev, next):
			for _, adj := range restockPlan(o) {
				if err := tx.AdjustStock(ctx, adj.ProductID, adj.Delta); err != nil {
					return err
				}
			}
		case leavesCancelled(prev, next):
			products, err := tx.ProductsForUpdate(ctx, itemProductIDs(o))
			if err != nil {
				return err
			}
			plan, err := deductPlan(o, products)
			if err != nil {
				return err
			}
			for _, adj := range plan {
				if err := tx.AdjustStock(ctx, adj.ProductID, adj.Delta); err != nil {
					return err
				}
			}
		}

		if err := tx.SetStatus(ctx, orderID, next); err != nil {
			return err
		}
		o.Status = next
		out = &StatusUpdate{Order: o, Previous: prev, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.Store.GetOrder(ctx, orderID)
}

// ListOrders returns orders newest first. filter may be empty; an
// unrecognized value is a ValidationError.
func (s *Service) ListOrders(ctx context.Context, filter string) ([]Order, error) {
	var st Status
	if strings.TrimSpace(filter) != "" {
		var ok bool
		st, ok = NormalizeStatus(filter)
		if !ok {
			return nil, validationf("unknown status %q", filter)
		}
	}
	return s.Store.ListOrders(ctx, st)
}

func (s *Service) inTxWithRetry(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.Store.InTx(ctx, fn)
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
