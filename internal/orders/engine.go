package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/producthub/storefront/internal/catalog"
)

// Line is one requested (product, quantity) pair from a cart. The cart
// itself lives in client-side session storage; the engine only ever
// receives this flat form.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName  string
	CustomerPhone string
	Address       string
	Notes         string
	Channel       string
	Items         []Line
}

// groupLines validates quantities and merges duplicate product lines,
// returning lines sorted by product id. The sort fixes the row-lock
// order so concurrent reservations cannot deadlock on each other.
func groupLines(items []Line) ([]Line, error) {
	if len(items) == 0 {
		return nil, validationf("at least one item required")
	}
	grouped := map[string]int{}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, validationf("quantities must be positive")
		}
		grouped[it.ProductID] += it.Quantity
	}
	out := make([]Line, 0, len(grouped))
	for id, qty := range grouped {
		out = append(out, Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// buildOrder checks every grouped line against the locked product rows
// and only then constructs the order with snapshotted names and prices.
// Any failure is terminal: the caller must not have mutated anything yet.
func buildOrder(in CreateOrderInput, lines []Line, products map[string]catalog.Product) (*Order, error) {
	var missing []string
	for _, ln := range lines {
		if _, ok := products[ln.ProductID]; !ok {
			missing = append(missing, ln.ProductID)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "some products do not exist", MissingProducts: missing}
	}

	for _, ln := range lines {
		p := products[ln.ProductID]
		if !p.Active {
			return nil, validationf("product %q is not available", p.Name)
		}
		if p.Stock < ln.Quantity {
			return nil, &ValidationError{
				Message: "insufficient stock for " + quote(p.Name),
				Shortfalls: []StockShortfall{{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   ln.Quantity,
					Available:   p.Stock,
				}},
			}
		}
	}

	o := &Order{
		ID:            uuid.NewString(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Address:       strings.TrimSpace(in.Address),
		Notes:         strings.TrimSpace(in.Notes),
		Channel:       NormalizeChannel(in.Channel),
		Status:        StatusPendiente,
		Total:         decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	for _, ln := range lines {
		p := products[ln.ProductID]
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		o.Items = append(o.Items, OrderItem{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    ln.Quantity,
			LineTotal:   lineTotal,
		})
		o.Total = o.Total.Add(lineTotal)
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ProductName < o.Items[j].ProductName })
	return o, nil
}

type stockAdjustment struct {
	ProductID string
	Delta     int
}

// restockPlan reverses the order's deduction: one increment per item.
func restockPlan(o *Order) []stockAdjustment {
	out := make([]stockAdjustment, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, stockAdjustment{ProductID: it.ProductID, Delta: it.Quantity})
	}
	return out
}

// deductPlan re-applies the order's deduction for reinstatement. Every
// item is verified against current stock before any deduction is
// planned; a single shortfall fails the whole plan.
func deductPlan(o *Order, products map[string]catalog.Product) ([]stockAdjustment, error) {
	for _, it := range o.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, &ValidationError{
				Message:         "product " + it.ProductID + " no longer exists, order cannot be reinstated",
				MissingProducts: []string{it.ProductID},
			}
		}
		if p.Stock < it.Quantity {
			return nil, &ValidationError{
				Message: "insufficient stock to reinstate " + quote(it.ProductName),
				Shortfalls: []StockShortfall{{
					ProductID:   it.ProductID,
					ProductName: it.ProductName,
					Requested:   it.Quantity,
					Available:   p.Stock,
				}},
			}
		}
	}
	out := make([]stockAdjustment, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, stockAdjustment{ProductID: it.ProductID, Delta: -it.Quantity})
	}
	return out, nil
}

// itemProductIDs returns the order's product ids sorted, for locking.
func itemProductIDs(o *Order) []string {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}

func quote(s string) string { return "'" + s + "'" }
