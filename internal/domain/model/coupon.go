package model

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// DiscountType mirrors the store's coupon vocabulary.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Label renders the discount for customer-facing copy, e.g. "20%" or "$20".
func (t DiscountType) Label(amount float64) string {
	if t == DiscountPercent {
		return fmt.Sprintf("%g%%", amount)
	}
	return fmt.Sprintf("$%g", amount)
}

// Coupon is a promotion-system entry this service issues. The store owns it
// after creation; we never delete coupons.
type Coupon struct {
	Code          string
	DiscountType  DiscountType
	Amount        float64
	Recurring     bool // applies to every renewal (retention) vs one checkout (win-back)
	UsageLimit    int  // 0 means unlimited
	CustomerEmail string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// NewRetentionCoupon builds the recurring discount handed out when a customer
// accepts the discount offer: email-locked, unlimited uses, one-year validity.
func NewRetentionCoupon(subscriptionID, email string, amount float64, dt DiscountType, now time.Time) Coupon {
	return Coupon{
		Code:          couponCode("CS", subscriptionID, now),
		DiscountType:  dt,
		Amount:        amount,
		Recurring:     true,
		UsageLimit:    0,
		CustomerEmail: email,
		ExpiresAt:     now.AddDate(1, 0, 0),
		CreatedAt:     now,
	}
}

// NewWinbackCoupon builds the single-use incentive embedded in the win-back
// email: 14-day validity, one use.
func NewWinbackCoupon(subscriptionID, email string, amount float64, dt DiscountType, now time.Time) Coupon {
	return Coupon{
		Code:          couponCode("BACK", subscriptionID+email, now),
		DiscountType:  dt,
		Amount:        amount,
		Recurring:     false,
		UsageLimit:    1,
		CustomerEmail: email,
		ExpiresAt:     now.AddDate(0, 0, 14),
		CreatedAt:     now,
	}
}

// couponCode yields e.g. "CS-3F0A91BC". Codes only need to be unique enough
// to avoid collisions in the store's promotion table.
func couponCode(prefix, seed string, now time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s%d", seed, now.UnixNano())))
	return prefix + "-" + strings.ToUpper(fmt.Sprintf("%x", sum)[:8])
}
