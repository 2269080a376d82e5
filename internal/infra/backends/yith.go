// File: internal/infra/backends/yith.go
package backends

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/domain/ports/repository"
)

var _ adapter.SubscriptionBackend = (*yithBackend)(nil)

// yithBackend adapts the YITH system. Subscriptions are ywsbs_subscription
// entities whose lifecycle status lives in meta, not in the entity status
// column, and whose terminal vocabulary includes "expired".
type yithBackend struct {
	store     *storeDB
	coupons   repository.CouponRepository
	scheduler repository.JobScheduler
	log       *zerolog.Logger
}

const (
	yithPostType     = "ywsbs_subscription"
	yithStatusActive = "active"
	yithStatusPaused = "paused"
	yithStatusCancel = "cancelled"

	yithMetaStatus      = "_ywsbs_status"
	yithMetaCustomer    = "_ywsbs_user_id"
	yithMetaTotal       = "_ywsbs_line_total"
	yithMetaPeriod      = "_ywsbs_price_time_option"
	yithMetaInterval    = "_ywsbs_price_is_per"
	yithMetaNextPayment = "_ywsbs_payment_due_date"
)

func newYITHBackend(store *storeDB, deps Deps) *yithBackend {
	compLog := deps.Logger.With().Str("component", "YITHBackend").Logger()
	return &yithBackend{store: store, coupons: deps.Coupons, scheduler: deps.Scheduler, log: &compLog}
}

func (b *yithBackend) Kind() model.BackendKind { return model.BackendYITH }

func (b *yithBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	postType, _, err := b.store.post(ctx, id)
	if err != nil {
		return nil, err
	}
	if postType != yithPostType {
		return nil, domain.ErrNotFound
	}
	rec, err := loadRecord(ctx, b.store, id, recordKeys{
		customer: yithMetaCustomer,
		total:    yithMetaTotal,
		period:   yithMetaPeriod,
		interval: yithMetaInterval,
	})
	if err != nil {
		return nil, err
	}
	status, err := b.store.metaValue(ctx, id, yithMetaStatus)
	if err != nil {
		return nil, err
	}
	return &yithHandle{record: rec, be: b, status: status}, nil
}

func (b *yithBackend) Resume(ctx context.Context, id string) error {
	status, err := b.store.metaValue(ctx, id, yithMetaStatus)
	if err != nil {
		return err
	}
	if status != yithStatusPaused {
		return nil
	}
	if err := b.store.setMeta(ctx, id, yithMetaStatus, yithStatusActive); err != nil {
		return err
	}
	return b.store.deleteMeta(ctx, id, metaResumeDate)
}

func (b *yithBackend) Channels() []string { return []string{"ywsbs_subscription_status"} }

func (b *yithBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	if channel != "ywsbs_subscription_status" {
		return model.StatusChange{}, false
	}
	sig, ok := parseSignal(payload)
	if !ok {
		return model.StatusChange{}, false
	}
	return model.StatusChange{SubscriptionID: sig.ID, From: sig.From, To: sig.To, Backend: model.BackendYITH}, true
}

// Terminal: an expired YITH subscription is as gone as a cancelled one.
func (b *yithBackend) Terminal(status string) bool {
	switch status {
	case yithStatusCancel, "cancel", "expired":
		return true
	}
	return false
}

type yithHandle struct {
	record
	be     *yithBackend
	status string
}

func (h *yithHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return nextPaymentFromMeta(ctx, h.be.store, h.id, yithMetaNextPayment)
}

func (h *yithHandle) Pause(ctx context.Context, months int) error {
	if err := h.be.store.setMeta(ctx, h.id, yithMetaStatus, yithStatusPaused); err != nil {
		return err
	}
	return pauseSubscription(ctx, h.be.store, h.be.scheduler, h.id, months)
}

func (h *yithHandle) SkipPayment(ctx context.Context) error {
	return skipPayment(ctx, h.be.store, h.id, yithMetaNextPayment, h.period, h.interval)
}

func (h *yithHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	return applyDiscount(ctx, h.be.store, h.be.coupons, h.id, h.email, amount, dt)
}

func (h *yithHandle) Cancel(ctx context.Context) error {
	if h.be.Terminal(h.status) {
		return nil
	}
	if err := h.be.store.setMeta(ctx, h.id, yithMetaStatus, yithStatusCancel); err != nil {
		return err
	}
	h.status = yithStatusCancel
	return nil
}
