package model

import "time"

// OfferKind is a retention action a canceling customer can accept.
type OfferKind string

const (
	OfferPause1   OfferKind = "pause_1"
	OfferPause3   OfferKind = "pause_3"
	OfferSkip     OfferKind = "skip"
	OfferDiscount OfferKind = "discount"
)

// OfferFamily groups offers that share a usage marker. Both pause offers
// consume the same cooldown.
type OfferFamily string

const (
	FamilyPause    OfferFamily = "pause"
	FamilySkip     OfferFamily = "skip"
	FamilyDiscount OfferFamily = "discount"
)

func (k OfferKind) Family() OfferFamily {
	switch k {
	case OfferPause1, OfferPause3:
		return FamilyPause
	case OfferSkip:
		return FamilySkip
	case OfferDiscount:
		return FamilyDiscount
	}
	return ""
}

func (k OfferKind) Valid() bool { return k.Family() != "" }

// PauseCooldownMonths is fixed; the skip cooldown is configurable.
const PauseCooldownMonths = 6

// OfferResult is what an apply attempt returns. Business rejections
// (cooldown, already used) are results with Accepted=false, not errors;
// Message is safe to show to the end customer.
type OfferResult struct {
	Accepted   bool
	Message    string
	CouponCode string
}

// OfferEligibility is the advisory per-subscription view used to hide
// unavailable offers before the customer tries them. Final enforcement
// always happens inside apply.
type OfferEligibility struct {
	Discount bool `json:"discount"`
	Skip     bool `json:"skip"`
	Pause    bool `json:"pause"`
}

// OfferMarkers are the per-subscription usage timestamps. Pause and skip
// markers expire by cooldown; the discount marker is permanent.
type OfferMarkers struct {
	PauseUsedAt    *time.Time
	SkipUsedAt     *time.Time
	DiscountUsedAt *time.Time
}
