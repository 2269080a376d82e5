// File: internal/infra/backends/webtoffee.go
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

var _ adapter.SubscriptionBackend = (*webtoffeeBackend)(nil)

// webtoffeeBackend adapts the WebToffee system, which models subscriptions
// as a flavor of store order: wt_subscription entities with the schedule in
// _wt_sub_* meta. Status changes surface on both its own channel and the
// generic order channel, so both are watched.
type webtoffeeBackend struct {
	store     *storeDB
	coupons   repository.CouponRepository
	scheduler repository.JobScheduler
	log       *zerolog.Logger
}

const (
	wtPostType     = "wt_subscription"
	wtStatusActive = "wc-active"
	wtStatusPaused = "wc-on-hold"
	wtStatusCancel = "wc-cancelled"

	wtMetaPeriod      = "_wt_sub_period"
	wtMetaInterval    = "_wt_sub_period_interval"
	wtMetaNextPayment = "_wt_sub_next_payment_date"
)

func newWebToffeeBackend(store *storeDB, deps Deps) *webtoffeeBackend {
	compLog := deps.Logger.With().Str("component", "WebToffeeBackend").Logger()
	return &webtoffeeBackend{store: store, coupons: deps.Coupons, scheduler: deps.Scheduler, log: &compLog}
}

func (b *webtoffeeBackend) Kind() model.BackendKind { return model.BackendWebToffee }

func (b *webtoffeeBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	postType, status, err := b.store.post(ctx, id)
	if err != nil {
		return nil, err
	}
	// Plain orders resolve too; WebToffee reuses the order surface for
	// subscriptions, so the entity type alone is not decisive.
	if postType != wtPostType && postType != "shop_order" {
		return nil, domain.ErrNotFound
	}
	rec, err := loadRecord(ctx, b.store, id, recordKeys{
		customer: "_customer_user",
		email:    "_billing_email",
		total:    "_order_total",
		period:   wtMetaPeriod,
		interval: wtMetaInterval,
	})
	if err != nil {
		return nil, err
	}
	return &webtoffeeHandle{record: rec, be: b, status: status}, nil
}

func (b *webtoffeeBackend) Resume(ctx context.Context, id string) error {
	_, status, err := b.store.post(ctx, id)
	if err != nil {
		return err
	}
	if status != wtStatusPaused {
		return nil
	}
	if err := b.store.setPostStatus(ctx, id, wtStatusActive); err != nil {
		return err
	}
	return b.store.deleteMeta(ctx, id, metaResumeDate)
}

func (b *webtoffeeBackend) Channels() []string {
	return []string{"wt_subscription_status", "wc_order_status"}
}

func (b *webtoffeeBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	if channel != "wt_subscription_status" && channel != "wc_order_status" {
		return model.StatusChange{}, false
	}
	sig, ok := parseSignal(payload)
	if !ok {
		return model.StatusChange{}, false
	}
	return model.StatusChange{SubscriptionID: sig.ID, From: sig.From, To: sig.To, Backend: model.BackendWebToffee}, true
}

func (b *webtoffeeBackend) Terminal(status string) bool {
	switch status {
	case "cancelled", "cancel", wtStatusCancel:
		return true
	}
	return false
}

type webtoffeeHandle struct {
	record
	be     *webtoffeeBackend
	status string
}

func (h *webtoffeeHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return nextPaymentFromMeta(ctx, h.be.store, h.id, wtMetaNextPayment)
}

func (h *webtoffeeHandle) Pause(ctx context.Context, months int) error {
	if err := h.be.store.setPostStatus(ctx, h.id, wtStatusPaused); err != nil {
		return err
	}
	return pauseSubscription(ctx, h.be.store, h.be.scheduler, h.id, months)
}

func (h *webtoffeeHandle) SkipPayment(ctx context.Context) error {
	return skipPayment(ctx, h.be.store, h.id, wtMetaNextPayment, h.period, h.interval)
}

func (h *webtoffeeHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	return applyDiscount(ctx, h.be.store, h.be.coupons, h.id, h.email, amount, dt)
}

func (h *webtoffeeHandle) Cancel(ctx context.Context) error {
	if h.status == wtStatusCancel {
		return nil
	}
	if err := h.be.store.setPostStatus(ctx, h.id, wtStatusCancel); err != nil {
		return err
	}
	h.status = wtStatusCancel
	return nil
}
