package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/producthub/storefront/internal/catalog"
)

// memStore is an in-memory Store used by the tests. Transactions run
// serialized under one mutex against a copy of the state; the copy is
// swapped in only when the unit of work succeeds, which gives the same
// all-or-nothing visibility the postgres store provides.
type memStore struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	orders   map[string]*Order
	created  []string // order ids in creation order
}

func newMemStore(products ...catalog.Product) *memStore {
	s := &memStore{
		products: map[string]catalog.Product{},
		orders:   map[string]*Order{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		products: cloneProducts(s.products),
		orders:   cloneOrders(s.orders),
		created:  append([]string(nil), s.created...),
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.products = tx.products
	s.orders = tx.orders
	s.created = tx.created
	return nil
}

func (s *memStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, &NotFoundError{Kind: "order", ID: orderID}
	}
	return cloneOrder(o), nil
}

func (s *memStore) ListOrders(ctx context.Context, filter Status) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Order{}
	for i := len(s.created) - 1; i >= 0; i-- { // newest first
		o := s.orders[s.created[i]]
		if filter != "" && o.Status != filter {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

// stock reads current stock outside any transaction.
func (s *memStore) stock(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

// setProduct overwrites a catalog row, simulating an external catalog edit.
func (s *memStore) setProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

type memTx struct {
	products map[string]catalog.Product
	orders   map[string]*Order
	created  []string
}

func (t *memTx) ProductsForUpdate(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	out := map[string]catalog.Product{}
	for _, id := range ids {
		if p, ok := t.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *memTx) AdjustStock(ctx context.Context, productID string, delta int) error {
	p, ok := t.products[productID]
	if !ok {
		return nil // mirrors the pg store: zero-row update, ignored
	}
	p.Stock += delta
	if p.Stock < 0 {
		return fmt.Errorf("stock check violated for %s", productID)
	}
	t.products[productID] = p
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *Order) error {
	if _, exists := t.orders[o.ID]; exists {
		return fmt.Errorf("duplicate order id %s", o.ID)
	}
	t.orders[o.ID] = cloneOrder(o)
	t.created = append(t.created, o.ID)
	return nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, orderID string) (*Order, error) {
	o, ok := t.orders[orderID]
	if !ok {
		return nil, &NotFoundError{Kind: "order", ID: orderID}
	}
	return cloneOrder(o), nil
}

func (t *memTx) SetStatus(ctx context.Context, orderID string, s Status) error {
	o, ok := t.orders[orderID]
	if !ok {
		return &NotFoundError{Kind: "order", ID: orderID}
	}
	o.Status = s
	return nil
}

func cloneProducts(in map[string]catalog.Product) map[string]catalog.Product {
	out := make(map[string]catalog.Product, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneOrders(in map[string]*Order) map[string]*Order {
	out := make(map[string]*Order, len(in))
	for k, v := range in {
		out[k] = cloneOrder(v)
	}
	return out
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
