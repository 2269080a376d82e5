// File: internal/infra/backends/wcs.go
package backends

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/domain/ports/repository"
)

var _ adapter.SubscriptionBackend = (*wcsBackend)(nil)

// wcsBackend adapts the official subscription system. Subscriptions are
// store entities of type shop_subscription with a wc- prefixed status and
// the billing schedule in meta.
type wcsBackend struct {
	store     *storeDB
	coupons   repository.CouponRepository
	scheduler repository.JobScheduler
	log       *zerolog.Logger
}

const (
	wcsPostType     = "shop_subscription"
	wcsStatusActive = "wc-active"
	wcsStatusPaused = "wc-on-hold"
	wcsStatusCancel = "wc-cancelled"

	wcsMetaCustomer    = "_customer_user"
	wcsMetaEmail       = "_billing_email"
	wcsMetaTotal       = "_order_total"
	wcsMetaPeriod      = "_billing_period"
	wcsMetaInterval    = "_billing_interval"
	wcsMetaNextPayment = "_schedule_next_payment"
)

func newWCSBackend(store *storeDB, deps Deps) *wcsBackend {
	compLog := deps.Logger.With().Str("component", "WCSBackend").Logger()
	return &wcsBackend{store: store, coupons: deps.Coupons, scheduler: deps.Scheduler, log: &compLog}
}

func (b *wcsBackend) Kind() model.BackendKind { return model.BackendWCS }

func (b *wcsBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	postType, status, err := b.store.post(ctx, id)
	if err != nil {
		return nil, err
	}
	if postType != wcsPostType {
		return nil, domain.ErrNotFound
	}
	rec, err := loadRecord(ctx, b.store, id, recordKeys{
		customer: wcsMetaCustomer,
		email:    wcsMetaEmail,
		total:    wcsMetaTotal,
		period:   wcsMetaPeriod,
		interval: wcsMetaInterval,
	})
	if err != nil {
		return nil, err
	}
	return &wcsHandle{record: rec, be: b, status: status}, nil
}

func (b *wcsBackend) Resume(ctx context.Context, id string) error {
	_, status, err := b.store.post(ctx, id)
	if err != nil {
		return err
	}
	if status != wcsStatusPaused {
		return nil
	}
	if err := b.store.setPostStatus(ctx, id, wcsStatusActive); err != nil {
		return err
	}
	return b.store.deleteMeta(ctx, id, metaResumeDate)
}

func (b *wcsBackend) Channels() []string { return []string{"shop_subscription_status"} }

func (b *wcsBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	if channel != "shop_subscription_status" {
		return model.StatusChange{}, false
	}
	sig, ok := parseSignal(payload)
	if !ok {
		return model.StatusChange{}, false
	}
	return model.StatusChange{SubscriptionID: sig.ID, From: sig.From, To: sig.To, Backend: model.BackendWCS}, true
}

func (b *wcsBackend) Terminal(status string) bool {
	return status == "cancelled" || status == wcsStatusCancel
}

type wcsHandle struct {
	record
	be     *wcsBackend
	status string
}

func (h *wcsHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return nextPaymentFromMeta(ctx, h.be.store, h.id, wcsMetaNextPayment)
}

func (h *wcsHandle) Pause(ctx context.Context, months int) error {
	if err := h.be.store.setPostStatus(ctx, h.id, wcsStatusPaused); err != nil {
		return err
	}
	return pauseSubscription(ctx, h.be.store, h.be.scheduler, h.id, months)
}

func (h *wcsHandle) SkipPayment(ctx context.Context) error {
	return skipPayment(ctx, h.be.store, h.id, wcsMetaNextPayment, h.period, h.interval)
}

func (h *wcsHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	return applyDiscount(ctx, h.be.store, h.be.coupons, h.id, h.email, amount, dt)
}

func (h *wcsHandle) Cancel(ctx context.Context) error {
	if h.status == wcsStatusCancel {
		return nil
	}
	if err := h.be.store.setPostStatus(ctx, h.id, wcsStatusCancel); err != nil {
		return err
	}
	h.status = wcsStatusCancel
	return nil
}

// recordKeys names where each adapter keeps the shared attributes.
type recordKeys struct {
	customer string
	email    string // empty means resolve via the user table
	total    string
	period   string // empty means fixed monthly
	interval string
}

// loadRecord resolves the shared attribute set through one adapter's keys.
func loadRecord(ctx context.Context, store *storeDB, id string, keys recordKeys) (record, error) {
	rec := record{id: id, period: model.PeriodMonth, interval: 1}

	if raw, err := store.metaValue(ctx, id, keys.customer); err != nil {
		return record{}, err
	} else if raw != "" {
		rec.customer, _ = strconv.ParseInt(raw, 10, 64)
	}

	if keys.email != "" {
		email, err := store.metaValue(ctx, id, keys.email)
		if err != nil {
			return record{}, err
		}
		rec.email = email
	}
	if rec.email == "" && rec.customer != 0 {
		email, err := store.userEmail(ctx, rec.customer)
		if err != nil {
			return record{}, err
		}
		rec.email = email
	}

	if raw, err := store.metaValue(ctx, id, keys.total); err != nil {
		return record{}, err
	} else if raw != "" {
		rec.total, _ = strconv.ParseFloat(raw, 64)
	}

	if keys.period != "" {
		raw, err := store.metaValue(ctx, id, keys.period)
		if err != nil {
			return record{}, err
		}
		rec.period = model.ParseBillingPeriod(raw)
	}
	if keys.interval != "" {
		raw, err := store.metaValue(ctx, id, keys.interval)
		if err != nil {
			return record{}, err
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			rec.interval = n
		}
	}
	return rec, nil
}
