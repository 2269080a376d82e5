// File: internal/infra/backends/sumo.go
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

var _ adapter.SubscriptionBackend = (*sumoBackend)(nil)

// sumoBackend adapts the SUMO system. Status lives in meta with
// capitalized spellings ("Active", "Pause", "Cancelled"); the customer's
// email is not in meta and resolves through the user table.
type sumoBackend struct {
	store     *storeDB
	coupons   repository.CouponRepository
	scheduler repository.JobScheduler
	log       *zerolog.Logger
}

const (
	sumoPostType     = "sumosubscriptions"
	sumoStatusActive = "Active"
	sumoStatusPaused = "Pause"
	sumoStatusCancel = "Cancelled"

	sumoMetaStatus      = "sumo_subscription_status"
	sumoMetaPeriod      = "sumo_subscription_period"
	sumoMetaInterval    = "sumo_subscription_period_interval"
	sumoMetaNextPayment = "sumo_next_payment_date"
)

func newSUMOBackend(store *storeDB, deps Deps) *sumoBackend {
	compLog := deps.Logger.With().Str("component", "SUMOBackend").Logger()
	return &sumoBackend{store: store, coupons: deps.Coupons, scheduler: deps.Scheduler, log: &compLog}
}

func (b *sumoBackend) Kind() model.BackendKind { return model.BackendSUMO }

func (b *sumoBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	postType, _, err := b.store.post(ctx, id)
	if err != nil {
		return nil, err
	}
	if postType != sumoPostType {
		return nil, domain.ErrNotFound
	}
	rec, err := loadRecord(ctx, b.store, id, recordKeys{
		customer: "_customer_user",
		total:    "_order_total",
		period:   sumoMetaPeriod,
		interval: sumoMetaInterval,
	})
	if err != nil {
		return nil, err
	}
	status, err := b.store.metaValue(ctx, id, sumoMetaStatus)
	if err != nil {
		return nil, err
	}
	return &sumoHandle{record: rec, be: b, status: status}, nil
}

func (b *sumoBackend) Resume(ctx context.Context, id string) error {
	status, err := b.store.metaValue(ctx, id, sumoMetaStatus)
	if err != nil {
		return err
	}
	if status != sumoStatusPaused {
		return nil
	}
	if err := b.store.setMeta(ctx, id, sumoMetaStatus, sumoStatusActive); err != nil {
		return err
	}
	return b.store.deleteMeta(ctx, id, metaResumeDate)
}

func (b *sumoBackend) Channels() []string { return []string{"sumo_subscription_status"} }

func (b *sumoBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	if channel != "sumo_subscription_status" {
		return model.StatusChange{}, false
	}
	sig, ok := parseSignal(payload)
	if !ok {
		return model.StatusChange{}, false
	}
	return model.StatusChange{SubscriptionID: sig.ID, From: sig.From, To: sig.To, Backend: model.BackendSUMO}, true
}

func (b *sumoBackend) Terminal(status string) bool { return status == sumoStatusCancel }

type sumoHandle struct {
	record
	be     *sumoBackend
	status string
}

func (h *sumoHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return nextPaymentFromMeta(ctx, h.be.store, h.id, sumoMetaNextPayment)
}

func (h *sumoHandle) Pause(ctx context.Context, months int) error {
	if err := h.be.store.setMeta(ctx, h.id, sumoMetaStatus, sumoStatusPaused); err != nil {
		return err
	}
	return pauseSubscription(ctx, h.be.store, h.be.scheduler, h.id, months)
}

func (h *sumoHandle) SkipPayment(ctx context.Context) error {
	return skipPayment(ctx, h.be.store, h.id, sumoMetaNextPayment, h.period, h.interval)
}

func (h *sumoHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	return applyDiscount(ctx, h.be.store, h.be.coupons, h.id, h.email, amount, dt)
}

func (h *sumoHandle) Cancel(ctx context.Context) error {
	if h.status == sumoStatusCancel {
		return nil
	}
	if err := h.be.store.setMeta(ctx, h.id, sumoMetaStatus, sumoStatusCancel); err != nil {
		return err
	}
	h.status = sumoStatusCancel
	return nil
}
