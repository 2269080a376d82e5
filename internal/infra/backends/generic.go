// File: internal/infra/backends/generic.go
package backends

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
)

var _ adapter.SubscriptionBackend = (*genericBackend)(nil)

// genericBackend is the fallback for the Plugins Hive system and anything
// else that only exposes the common order surface. It can read and cancel,
// but pause, skip and discount are unsupported: the retention popup then
// degrades to cancel-or-stay.
type genericBackend struct {
	store *storeDB
	log   *zerolog.Logger
}

func newGenericBackend(store *storeDB, deps Deps) *genericBackend {
	compLog := deps.Logger.With().Str("component", "GenericBackend").Logger()
	return &genericBackend{store: store, log: &compLog}
}

func (b *genericBackend) Kind() model.BackendKind { return model.BackendPluginsHive }

func (b *genericBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	_, status, err := b.store.post(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := loadRecord(ctx, b.store, id, recordKeys{
		customer: "_customer_user",
		total:    "_order_total",
	})
	if err != nil {
		return nil, err
	}
	return &genericHandle{record: rec, be: b, status: status}, nil
}

// Resume is a no-op: this backend cannot pause, so nothing is ever resumed.
func (b *genericBackend) Resume(ctx context.Context, id string) error { return nil }

func (b *genericBackend) Channels() []string { return []string{"wc_order_status"} }

func (b *genericBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	if channel != "wc_order_status" {
		return model.StatusChange{}, false
	}
	sig, ok := parseSignal(payload)
	if !ok {
		return model.StatusChange{}, false
	}
	return model.StatusChange{SubscriptionID: sig.ID, From: sig.From, To: sig.To, Backend: model.BackendPluginsHive}, true
}

func (b *genericBackend) Terminal(status string) bool {
	return status == "cancelled" || status == "wc-cancelled"
}

type genericHandle struct {
	record
	be     *genericBackend
	status string
}

// NextPaymentDate assumes one month out; this backend does not expose a
// billing schedule.
func (h *genericHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return time.Now().UTC().AddDate(0, 1, 0), nil
}

func (h *genericHandle) Pause(ctx context.Context, months int) error { return domain.ErrUnsupported }

func (h *genericHandle) SkipPayment(ctx context.Context) error { return domain.ErrUnsupported }

func (h *genericHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	return "", domain.ErrUnsupported
}

func (h *genericHandle) Cancel(ctx context.Context) error {
	if h.be.Terminal(h.status) {
		return nil
	}
	if err := h.be.store.setPostStatus(ctx, h.id, "wc-cancelled"); err != nil {
		return err
	}
	h.status = "wc-cancelled"
	return nil
}
