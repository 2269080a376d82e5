// File: internal/usecase/retention_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/domain/ports/repository"
	"subscription-retention-service/internal/infra/logging"
	"subscription-retention-service/internal/infra/metrics"
)

// RetentionUseCase wires cancel-click interception to the offers engine,
// the event log and win-back scheduling. It owns customer authorization:
// a handle is only acted on when it belongs to the requesting customer.
type RetentionUseCase struct {
	backend   adapter.SubscriptionBackend
	offers    *OffersUseCase
	tracker   *TrackerUseCase
	settings  adapter.SettingsProvider
	scheduler repository.JobScheduler
	log       *zerolog.Logger

	now func() time.Time
}

func NewRetentionUseCase(
	backend adapter.SubscriptionBackend,
	offers *OffersUseCase,
	tracker *TrackerUseCase,
	settings adapter.SettingsProvider,
	scheduler repository.JobScheduler,
	logger *zerolog.Logger,
) *RetentionUseCase {
	compLog := logger.With().Str("component", "RetentionUC").Logger()
	return &RetentionUseCase{
		backend:   backend,
		offers:    offers,
		tracker:   tracker,
		settings:  settings,
		scheduler: scheduler,
		log:       &compLog,
		now:       time.Now,
	}
}

// resolve loads the handle and verifies ownership.
func (uc *RetentionUseCase) resolve(ctx context.Context, customerID int64, subscriptionID string) (adapter.SubscriptionHandle, error) {
	sub, err := uc.backend.Subscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.CustomerID() != customerID {
		return nil, domain.ErrUnauthorized
	}
	return sub, nil
}

// ApplyOffer resolves, authorizes and applies one offer, and records the
// acceptance in the event log.
func (uc *RetentionUseCase) ApplyOffer(ctx context.Context, customerID int64, subscriptionID string, offer model.OfferKind) (model.OfferResult, error) {
	sub, err := uc.resolve(ctx, customerID, subscriptionID)
	if err != nil {
		return model.OfferResult{}, err
	}
	res, err := uc.offers.Apply(ctx, sub, offer)
	if err != nil {
		return model.OfferResult{}, err
	}
	if res.Accepted {
		uc.tracker.Track(ctx, subscriptionID, sub.CustomerID(), model.EventOfferAccepted, offer, sub.Total())
	}
	return res, nil
}

// Eligibility is the advisory pre-check the popup uses to hide offers that
// are on cooldown or already used.
func (uc *RetentionUseCase) Eligibility(ctx context.Context, customerID int64, subscriptionID string) (model.OfferEligibility, error) {
	if _, err := uc.resolve(ctx, customerID, subscriptionID); err != nil {
		return model.OfferEligibility{}, err
	}
	return uc.offers.Eligibility(ctx, subscriptionID)
}

// LogEvent records a presentation-layer event such as popup_shown.
func (uc *RetentionUseCase) LogEvent(ctx context.Context, customerID int64, subscriptionID string, kind model.EventKind) {
	if kind == "" {
		kind = model.EventPopupShown
	}
	if kind == model.EventPopupShown {
		metrics.IncPopupShown()
	}
	uc.tracker.Track(ctx, subscriptionID, customerID, kind, "", 0)
}

// OnCancelled handles one genuine cancellation: log it and, when win-back is
// enabled, schedule exactly one delayed win-back job.
func (uc *RetentionUseCase) OnCancelled(ctx context.Context, change model.StatusChange) {
	l := logging.With(ctx, uc.log)
	sub, err := uc.backend.Subscription(ctx, change.SubscriptionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.Error().Err(err).Str("subscription_id", change.SubscriptionID).Msg("cancelled subscription did not resolve")
		}
		return
	}

	metrics.IncCancellation()
	uc.tracker.Track(ctx, change.SubscriptionID, sub.CustomerID(), model.EventCancelled, "", sub.Total())

	s := uc.settings.Snapshot()
	if !s.WinbackEnabled {
		return
	}
	runAt := uc.now().Add(time.Duration(s.WinbackDelayDays) * 24 * time.Hour)
	err = uc.scheduler.Schedule(ctx, runAt, model.JobSendWinback, map[string]string{
		"sub_id": change.SubscriptionID,
		"email":  sub.CustomerEmail(),
	})
	if err != nil {
		l.Error().Err(err).Str("subscription_id", change.SubscriptionID).Msg("failed to schedule win-back")
		return
	}
	l.Info().Str("subscription_id", change.SubscriptionID).Time("run_at", runAt).Msg("win-back scheduled")
}

// Teardown bulk-clears both deferred job kinds. Used when the service is
// being decommissioned.
func (uc *RetentionUseCase) Teardown(ctx context.Context) error {
	if err := uc.scheduler.Clear(ctx, model.JobResumeSubscription); err != nil {
		return err
	}
	return uc.scheduler.Clear(ctx, model.JobSendWinback)
}
