// File: internal/infra/backends/handle.go
package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

// record holds the attributes every adapter resolves up front. The getters
// of the handle contract live here once; adapters only differ in how they
// load the record and execute mutations.
type record struct {
	id       string
	customer int64
	email    string
	total    float64
	period   model.BillingPeriod
	interval int
}

func (r *record) ID() string                         { return r.id }
func (r *record) CustomerID() int64                  { return r.customer }
func (r *record) CustomerEmail() string              { return r.email }
func (r *record) Total() float64                     { return r.total }
func (r *record) BillingPeriod() model.BillingPeriod { return r.period }
func (r *record) BillingInterval() int               { return r.interval }

// pauseSubscription writes the resume marker and schedules the auto-resume
// job after the adapter has moved the subscription to its paused status.
func pauseSubscription(ctx context.Context, store *storeDB, sched repository.JobScheduler, id string, months int) error {
	resumeAt := time.Now().UTC().AddDate(0, months, 0)
	if err := store.setMeta(ctx, id, metaResumeDate, formatMetaTime(resumeAt)); err != nil {
		return err
	}
	return sched.Schedule(ctx, resumeAt, model.JobResumeSubscription, map[string]string{"sub_id": id})
}

// skipPayment advances the next-payment meta value by exactly one billing
// cycle, leaving the status untouched.
func skipPayment(ctx context.Context, store *storeDB, id, dateKey string, period model.BillingPeriod, interval int) error {
	raw, err := store.metaValue(ctx, id, dateKey)
	if err != nil {
		return err
	}
	next, ok := metaTime(raw)
	if !ok {
		return fmt.Errorf("%w: subscription %s has no next payment date", domain.ErrOperationFailed, id)
	}
	return store.setMeta(ctx, id, dateKey, formatMetaTime(model.NextRenewal(next, period, interval)))
}

// applyDiscount issues the recurring retention coupon and attaches its code
// to the subscription.
func applyDiscount(ctx context.Context, store *storeDB, coupons repository.CouponRepository, id, email string, amount float64, dt model.DiscountType) (string, error) {
	c := model.NewRetentionCoupon(id, email, amount, dt, time.Now().UTC())
	if err := coupons.Create(ctx, &c); err != nil {
		return "", err
	}
	if err := store.setMeta(ctx, id, metaCouponCode, c.Code); err != nil {
		return "", err
	}
	return c.Code, nil
}

// nextPaymentFromMeta reads a date meta key as the next payment timestamp.
func nextPaymentFromMeta(ctx context.Context, store *storeDB, id, dateKey string) (time.Time, error) {
	raw, err := store.metaValue(ctx, id, dateKey)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := metaTime(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: subscription %s has no next payment date", domain.ErrOperationFailed, id)
	}
	return t, nil
}

// statusSignal is the NOTIFY payload the store-side triggers emit on every
// subscription status transition.
type statusSignal struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

func parseSignal(payload string) (statusSignal, bool) {
	var sig statusSignal
	if err := json.Unmarshal([]byte(payload), &sig); err != nil || sig.ID == "" {
		return statusSignal{}, false
	}
	return sig, true
}
