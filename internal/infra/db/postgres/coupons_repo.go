// File: internal/infra/db/postgres/coupons_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*CouponRepo)(nil)

// CouponRepo inserts issued coupons into the store's promotion table. Codes
// are generated unique enough that a collision is a genuine error, so no
// upsert here.
type CouponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *CouponRepo {
	return &CouponRepo{pool: pool}
}

func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	const sql = `
INSERT INTO shop_coupons
  (code, discount_type, amount, recurring, usage_limit, customer_email, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, sql,
		c.Code,
		string(c.DiscountType),
		c.Amount,
		c.Recurring,
		c.UsageLimit,
		c.CustomerEmail,
		c.ExpiresAt,
		c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("coupon code %s already exists: %w", c.Code, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("Create coupon %s: %w", c.Code, err)
	}
	return nil
}
