package repository

import (
	"context"

	"subscription-retention-service/internal/domain/model"
)

// CouponRepository writes issued coupons into the store's promotion table.
// The store owns coupons after creation.
type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
}
