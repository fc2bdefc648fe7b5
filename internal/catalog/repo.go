package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, slug, description, brand, category, base_price,
	image_url, stock, total_sold, is_deal, deal_end, created_at`

func (r *Repo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO products (id, name, slug, description, brand, category,
			base_price, image_url, stock, is_deal, deal_end)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		p.ID, p.Name, p.Slug, p.Description, p.Brand, p.Category,
		p.BasePrice, p.ImageURL, p.Stock, p.IsDeal, p.DealEnd,
	).Scan(&p.CreatedAt)
}

func (r *Repo) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Brand, &p.Category,
		&p.BasePrice, &p.ImageURL, &p.Stock, &p.TotalSold, &p.IsDeal,
		&p.DealEnd, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Brand,
			&p.Category, &p.BasePrice, &p.ImageURL, &p.Stock, &p.TotalSold,
			&p.IsDeal, &p.DealEnd, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordSale moves stock into total_sold for a paid line item. The stock
// guard keeps the counter from going negative; a shortfall is reported, not
// applied partially.
func (r *Repo) RecordSale(ctx context.Context, productID string, qty int) (ok bool, err error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, total_sold = total_sold + $2
		WHERE id=$1 AND stock >= $2`, productID, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
