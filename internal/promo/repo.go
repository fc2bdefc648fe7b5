package promo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const promoCols = `id, code, discount_type, discount_value, min_amount, max_uses,
	uses, first_time_only, valid_from, valid_to, active, created_at, updated_at`

func scanPromo(row pgx.Row) (*Promo, error) {
	var p Promo
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinAmount,
		&p.MaxUses, &p.Uses, &p.FirstTimeOnly, &p.ValidFrom, &p.ValidTo, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByCode(ctx context.Context, code string) (*Promo, error) {
	p, err := scanPromo(r.DB.QueryRow(ctx,
		`SELECT `+promoCols+` FROM promos WHERE code=$1`, Normalize(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Create persists a new promo. Uniqueness of the code is enforced by the
// unique index, so two concurrent creates of the same code cannot both win.
func (r *Repo) Create(ctx context.Context, p *Promo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Code = Normalize(p.Code)
	_, err := r.DB.Exec(ctx, `
		INSERT INTO promos (id, code, discount_type, discount_value, min_amount,
			max_uses, first_time_only, valid_from, valid_to, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Code, p.DiscountType, p.DiscountValue, p.MinAmount,
		p.MaxUses, p.FirstTimeOnly, p.ValidFrom, p.ValidTo, p.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCodeExists
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM promos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListActive(ctx context.Context) ([]Promo, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+promoCols+` FROM promos WHERE active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Promo
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Redeem consumes one use as a single conditional update. The usage-cap
// check happens inside the same statement, so N concurrent redemptions of a
// promo with max_uses=N succeed exactly N times; the losers get
// ErrUsageLimit.
func (r *Repo) Redeem(ctx context.Context, id string) (uses int, err error) {
	err = r.DB.QueryRow(ctx, `
		UPDATE promos
		SET uses = uses + 1, updated_at = now()
		WHERE id = $1 AND active AND (max_uses IS NULL OR uses < max_uses)
		RETURNING uses`, id).Scan(&uses)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUsageLimit
	}
	return uses, err
}
