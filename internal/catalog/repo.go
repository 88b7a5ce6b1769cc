package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, brand, price, stock, COALESCE(description,''), COALESCE(image_url,''), active, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Stock, &p.Description, &p.ImageURL, &p.Active, &p.CreatedAt)
	return p, err
}

type CreateInput struct {
	Name        string
	Brand       string
	Price       decimal.Decimal
	Stock       int
	Description string
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (*Product, error) {
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Brand:       in.Brand,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, brand, price, stock, description, active, created_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8)
	`, p.ID, p.Name, p.Brand, p.Price, p.Stock, p.Description, p.Active, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

type UpdateInput struct {
	Name        string
	Brand       string
	Price       decimal.Decimal
	Stock       int
	Description string
}

func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, brand=$3, price=$4, stock=$5, description=NULLIF($6,'')
		WHERE id=$1
	`, id, in.Name, in.Brand, in.Price, in.Stock, in.Description)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Deactivate is a soft delete: rows referenced by order items are never
// physically removed (FK RESTRICT on order_items.product_id).
func (r *Repo) Deactivate(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET active=false WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products newest first. search matches name or brand,
// case-insensitive substring.
func (r *Repo) List(ctx context.Context, includeInactive bool, search string) ([]Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE 1=1`
	args := []any{}
	if !includeInactive {
		q += ` AND active`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		q += fmt.Sprintf(` AND (name ILIKE $%d OR brand ILIKE $%d)`, len(args), len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
