package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Create validates and persists an order plus its item snapshots in one
// transaction. The stored total is computed here and never recomputed
// afterwards.
func (r *Repo) Create(ctx context.Context, in NewOrder) (*Order, error) {
	total, err := in.Validate()
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Items:         in.Items,
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Shipping:      in.Shipping,
		Total:         total,
		PaymentStatus: PaymentPending,
		OrderStatus:   StatusCreated,
		CustomerInfo:  in.CustomerInfo,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, subtotal, discount, shipping, total,
			payment_status, order_status,
			customer_first_name, customer_last_name, customer_email,
			customer_phone, customer_address, customer_city)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		o.ID, nullIfEmpty(o.UserID), o.Subtotal, o.Discount, o.Shipping, o.Total,
		o.PaymentStatus, o.OrderStatus,
		o.CustomerInfo.FirstName, o.CustomerInfo.LastName, o.CustomerInfo.Email,
		o.CustomerInfo.Phone, o.CustomerInfo.Address, o.CustomerInfo.City,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range in.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, image_url,
				qty, variant_color, size)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, it.ProductID, it.Name, it.Price, it.ImageURL,
			it.Qty, it.VariantColor, it.Size); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Order, error) {
	o, err := r.scanOrder(r.DB.QueryRow(ctx, `
		SELECT id, COALESCE(user_id,''), subtotal, discount, shipping, total,
			payment_status, order_status,
			COALESCE(payhere_payment_id,''), actual_paid_amount,
			customer_first_name, customer_last_name, customer_email,
			customer_phone, customer_address, customer_city,
			created_at, updated_at
		FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// List returns orders newest first, with their item snapshots attached.
func (r *Repo) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, COALESCE(user_id,''), subtotal, discount, shipping, total,
			payment_status, order_status,
			COALESCE(payhere_payment_id,''), actual_paid_amount,
			customer_first_name, customer_last_name, customer_email,
			customer_phone, customer_address, customer_city,
			created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// SetStatus applies an administrative fulfillment transition.
func (r *Repo) SetStatus(ctx context.Context, id string, status Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET order_status=$2, updated_at=now() WHERE id=$1`,
		id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPaymentResult records a gateway notification as a single guarded
// update: a terminal payment_status is never overwritten, which makes
// duplicate and out-of-order deliveries no-ops. The returned flag reports
// whether the row actually changed.
func (r *Repo) ApplyPaymentResult(ctx context.Context, id string, ps PaymentStatus, os Status, paymentID string, paidAmount *float64) (applied bool, err error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_status=$2, order_status=$3,
			payhere_payment_id=COALESCE(NULLIF($4,''), payhere_payment_id),
			actual_paid_amount=COALESCE($5, actual_paid_amount),
			updated_at=now()
		WHERE id=$1
		  AND payment_status NOT IN ('paid','cancelled','failed','charged_back')`,
		id, ps, os, paymentID, paidAmount)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows means either the order is unknown or its payment state is
	// already terminal. The caller treats these differently.
	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *Repo) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.Discount, &o.Shipping,
		&o.Total, &o.PaymentStatus, &o.OrderStatus,
		&o.PayherePaymentID, &o.ActualPaidAmount,
		&o.CustomerInfo.FirstName, &o.CustomerInfo.LastName, &o.CustomerInfo.Email,
		&o.CustomerInfo.Phone, &o.CustomerInfo.Address, &o.CustomerInfo.City,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, price, image_url, qty, variant_color, size
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.ImageURL,
			&it.Qty, &it.VariantColor, &it.Size); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
