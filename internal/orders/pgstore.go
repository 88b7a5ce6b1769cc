package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/producthub/storefront/internal/catalog"
)

// PGStore implements Store on postgres. Isolation relies on row locks:
// product rows are taken FOR UPDATE in sorted id order before any stock
// check, so two reservations racing on the same product serialize.
type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return wrapConflict(err)
	}
	return wrapConflict(tx.Commit(ctx))
}

func (s *PGStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return loadOrder(ctx, s.DB, orderID, false)
}

func (s *PGStore) ListOrders(ctx context.Context, filter Status) ([]Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders`
	args := []any{}
	if filter != "" {
		q += ` WHERE status=$1`
		args = append(args, string(filter))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	irows, err := s.DB.Query(ctx, `SELECT `+itemCols+` FROM order_items WHERE order_id = ANY($1) ORDER BY product_name`, ids)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		it, err := scanItem(irows)
		if err != nil {
			return nil, err
		}
		i := index[it.OrderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, irows.Err()
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) ProductsForUpdate(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, name, brand, price, stock, active, created_at
		FROM products WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Stock, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (t *pgTx) AdjustStock(ctx context.Context, productID string, delta int) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id=$1`, productID, delta)
	return err
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, customer_name, customer_phone, delivery_address, notes, channel, status, total, created_at)
		VALUES ($1,$2,NULLIF($3,''),$4,NULLIF($5,''),$6,$7,$8,$9)
	`, o.ID, o.CustomerName, o.CustomerPhone, o.Address, o.Notes, o.Channel, string(o.Status), o.Total, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, product_name, unit_price, quantity, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *pgTx) OrderForUpdate(ctx context.Context, orderID string) (*Order, error) {
	return loadOrder(ctx, t.tx, orderID, true)
}

func (t *pgTx) SetStatus(ctx context.Context, orderID string, s Status) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, string(s))
	return err
}

const (
	orderCols = `id, customer_name, COALESCE(customer_phone,''), delivery_address, COALESCE(notes,''), channel, status, total, created_at`
	itemCols  = `id, order_id, product_id, product_name, unit_price, quantity, line_total`
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.Address, &o.Notes,
		&o.Channel, &o.Status, &o.Total, &o.CreatedAt)
	return o, err
}

func scanItem(row pgx.Row) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
		&it.UnitPrice, &it.Quantity, &it.LineTotal)
	return it, err
}

func loadOrder(ctx context.Context, q querier, orderID string, forUpdate bool) (*Order, error) {
	sel := `SELECT ` + orderCols + ` FROM orders WHERE id=$1`
	if forUpdate {
		sel += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sel, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Kind: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT `+itemCols+` FROM order_items WHERE order_id=$1 ORDER BY product_name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// wrapConflict tags serialization and deadlock failures (SQLSTATE 40001,
// 40P01) so the service layer can retry the unit of work.
func wrapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
