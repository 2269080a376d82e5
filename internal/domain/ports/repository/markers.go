package repository

import (
	"context"
	"time"

	"subscription-retention-service/internal/domain/model"
)

// MarkerRepository is the small per-subscription KV store for offer usage
// markers. Stamps overwrite on reapplication (pause/skip); the discount
// stamp is written once and never cleared by this service.
type MarkerRepository interface {
	Markers(ctx context.Context, subscriptionID string) (model.OfferMarkers, error)
	Stamp(ctx context.Context, subscriptionID string, family model.OfferFamily, at time.Time) error
}
