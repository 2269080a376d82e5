// File: internal/usecase/tracker_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

// TrackerUseCase appends retention events and serves the aggregate report.
// The event log never feeds eligibility decisions; those use the markers.
type TrackerUseCase struct {
	events  repository.EventRepository
	backend model.BackendKind
	log     *zerolog.Logger

	now func() time.Time
}

func NewTrackerUseCase(events repository.EventRepository, backend model.BackendKind, logger *zerolog.Logger) *TrackerUseCase {
	compLog := logger.With().Str("component", "TrackerUC").Logger()
	return &TrackerUseCase{events: events, backend: backend, log: &compLog, now: time.Now}
}

// Track appends one event. Tracking failures are logged, not propagated:
// losing a stat row must never fail the customer-facing flow.
func (uc *TrackerUseCase) Track(ctx context.Context, subscriptionID string, customerID int64, kind model.EventKind, offer model.OfferKind, value float64) {
	ev := &model.RetentionEvent{
		SubscriptionID: subscriptionID,
		CustomerID:     customerID,
		Kind:           kind,
		Offer:          offer,
		Value:          value,
		Backend:        uc.backend,
		CreatedAt:      uc.now(),
	}
	if err := uc.events.Save(ctx, ev); err != nil {
		uc.log.Error().Err(err).Str("subscription_id", subscriptionID).Str("event", string(kind)).Msg("failed to record event")
	}
}

func (uc *TrackerUseCase) Stats(ctx context.Context, days int) (*model.RetentionStats, error) {
	if days <= 0 {
		days = 30
	}
	return uc.events.Stats(ctx, days)
}
