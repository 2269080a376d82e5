// File: internal/infra/backends/detect.go
package backends

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/domain/ports/repository"
)

// Every supported subscription system writes a version option into the
// store database on activation; its presence is the detection signature.
var signatureOptions = map[model.BackendKind]string{
	model.BackendWCS:         "woocommerce_subscriptions_active_version",
	model.BackendWebToffee:   "wt_subscription_version",
	model.BackendYITH:        "ywsbs_db_version",
	model.BackendSUMO:        "sumo_subscriptions_version",
	model.BackendPluginsHive: "rp_sub_version",
}

// Prober answers detection probes against the store database.
type Prober interface {
	HasOption(ctx context.Context, name string) (bool, error)
}

// NewProber wraps the store pool for detection probes.
func NewProber(pool *pgxpool.Pool) Prober { return newStoreDB(pool) }

func (s *storeDB) HasOption(ctx context.Context, name string) (bool, error) {
	return s.hasOption(ctx, name)
}

// Detect probes for the installed subscription system in priority order
// (the official system wins when several signatures are present). A
// non-empty override skips probing entirely. Returns domain.ErrNoBackend
// when nothing matches.
func Detect(ctx context.Context, p Prober, override string) (model.BackendKind, error) {
	if override != "" && override != "auto" {
		kind := model.BackendKind(override)
		if !kind.Valid() {
			return "", fmt.Errorf("%w: unknown backend override %q", domain.ErrInvalidArgument, override)
		}
		return kind, nil
	}
	for _, kind := range model.DetectionOrder {
		ok, err := p.HasOption(ctx, signatureOptions[kind])
		if err != nil {
			return "", err
		}
		if ok {
			return kind, nil
		}
	}
	return "", domain.ErrNoBackend
}

// Deps carries everything a backend adapter may need. The discount flow
// issues coupons; the pause flow schedules the auto-resume job.
type Deps struct {
	Pool      *pgxpool.Pool
	Coupons   repository.CouponRepository
	Scheduler repository.JobScheduler
	Logger    *zerolog.Logger
}

// New maps a detected backend kind to its adapter.
func New(kind model.BackendKind, deps Deps) (adapter.SubscriptionBackend, error) {
	store := newStoreDB(deps.Pool)
	switch kind {
	case model.BackendWCS:
		return newWCSBackend(store, deps), nil
	case model.BackendWebToffee:
		return newWebToffeeBackend(store, deps), nil
	case model.BackendYITH:
		return newYITHBackend(store, deps), nil
	case model.BackendSUMO:
		return newSUMOBackend(store, deps), nil
	case model.BackendPluginsHive:
		return newGenericBackend(store, deps), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrNoBackend, kind)
	}
}

// CancelSelectors lists the storefront CSS selectors that mark each
// backend's cancel control. Served to the presentation layer so it can
// intercept the click before the store handles it.
func CancelSelectors() []string {
	return []string{
		`a[href*="cancel_subscription"]`,
		`a[href*="change_subscription_to=cancelled"]`,
		`a.wt-subscription-cancel`,
		`a.yith-wcss-cancel-subscription`,
		`a[href*="ywsbs-action=cancel"]`,
		`a.sumo-cancel-subscription`,
		`a[href*="sumo_sub_action=cancel"]`,
		`a[href*="rp_sub_action=cancel"]`,
		`.subscription-actions a[href*="cancel"]`,
		`.woocommerce-orders-table a[href*="cancel"]`,
	}
}
