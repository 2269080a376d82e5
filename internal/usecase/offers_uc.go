// File: internal/usecase/offers_uc.go
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
	"subscription-retention-service/internal/infra/i18n"
	"subscription-retention-service/internal/infra/metrics"
)

// OffersUseCase is the offer eligibility and application engine. Eligibility
// is a pure advisory read; Apply re-checks the same rules before mutating,
// because a check/apply race across processes is possible and accepted.
type OffersUseCase struct {
	markers  repository.MarkerRepository
	settings adapter.SettingsProvider
	tr       *i18n.Translator
	log      *zerolog.Logger

	now func() time.Time
}

func NewOffersUseCase(markers repository.MarkerRepository, settings adapter.SettingsProvider, tr *i18n.Translator, logger *zerolog.Logger) *OffersUseCase {
	compLog := logger.With().Str("component", "OffersUC").Logger()
	return &OffersUseCase{
		markers:  markers,
		settings: settings,
		tr:       tr,
		log:      &compLog,
		now:      time.Now,
	}
}

// onCooldown reports whether a marker stamped at last is still inside a
// cooldown of the given number of calendar months. A nil marker is eligible.
func (uc *OffersUseCase) onCooldown(last *time.Time, months int) bool {
	if last == nil {
		return false
	}
	return last.AddDate(0, months, 0).After(uc.now())
}

// Apply runs one offer against the subscription. Business rejections come
// back as OfferResult values; only infrastructure problems return an error.
func (uc *OffersUseCase) Apply(ctx context.Context, sub adapter.SubscriptionHandle, offer model.OfferKind) (model.OfferResult, error) {
	m, err := uc.markers.Markers(ctx, sub.ID())
	if err != nil {
		return model.OfferResult{}, err
	}

	switch offer {
	case model.OfferPause1, model.OfferPause3:
		// Cooldown is shared between the two pause offers.
		if uc.onCooldown(m.PauseUsedAt, model.PauseCooldownMonths) {
			metrics.IncOfferRejected("cooldown")
			return model.OfferResult{Message: uc.tr.T("offer.pause.cooldown")}, nil
		}
		months := 1
		successKey := "offer.pause_1.success"
		if offer == model.OfferPause3 {
			months = 3
			successKey = "offer.pause_3.success"
		}
		if err := sub.Pause(ctx, months); err != nil {
			uc.log.Warn().Err(err).Str("subscription_id", sub.ID()).Msg("pause failed")
			metrics.IncOfferRejected("backend")
			return model.OfferResult{Message: uc.tr.T("offer.pause.failed")}, nil
		}
		if err := uc.markers.Stamp(ctx, sub.ID(), model.FamilyPause, uc.now()); err != nil {
			return model.OfferResult{}, err
		}
		metrics.IncOfferAccepted(offer)
		return model.OfferResult{Accepted: true, Message: uc.tr.T(successKey)}, nil

	case model.OfferSkip:
		months := uc.settings.Snapshot().SkipCooldownMonths
		if uc.onCooldown(m.SkipUsedAt, months) {
			metrics.IncOfferRejected("cooldown")
			return model.OfferResult{Message: uc.tr.T("offer.skip.cooldown", months)}, nil
		}
		if err := sub.SkipPayment(ctx); err != nil {
			uc.log.Warn().Err(err).Str("subscription_id", sub.ID()).Msg("skip failed")
			metrics.IncOfferRejected("backend")
			return model.OfferResult{Message: uc.tr.T("offer.skip.failed")}, nil
		}
		if err := uc.markers.Stamp(ctx, sub.ID(), model.FamilySkip, uc.now()); err != nil {
			return model.OfferResult{}, err
		}
		metrics.IncOfferAccepted(offer)
		return model.OfferResult{Accepted: true, Message: uc.tr.T("offer.skip.success")}, nil

	case model.OfferDiscount:
		// Hard block: one discount per subscription, ever.
		if m.DiscountUsedAt != nil {
			metrics.IncOfferRejected("already_used")
			return model.OfferResult{Message: uc.tr.T("offer.discount.used")}, nil
		}
		s := uc.settings.Snapshot()
		code, err := sub.ApplyDiscount(ctx, s.DiscountAmount, s.DiscountType)
		if err != nil {
			if !errors.Is(err, domain.ErrUnsupported) {
				uc.log.Warn().Err(err).Str("subscription_id", sub.ID()).Msg("discount failed")
			}
			metrics.IncOfferRejected("backend")
			return model.OfferResult{Message: uc.tr.T("offer.discount.failed")}, nil
		}
		if err := uc.markers.Stamp(ctx, sub.ID(), model.FamilyDiscount, uc.now()); err != nil {
			return model.OfferResult{}, err
		}
		metrics.IncOfferAccepted(offer)
		label := s.DiscountType.Label(s.DiscountAmount)
		return model.OfferResult{
			Accepted:   true,
			Message:    uc.tr.T("offer.discount.success", label, code),
			CouponCode: code,
		}, nil

	default:
		metrics.IncOfferRejected("unknown")
		return model.OfferResult{Message: uc.tr.T("offer.unknown")}, nil
	}
}

// Eligibility computes the three advisory flags without mutating anything.
func (uc *OffersUseCase) Eligibility(ctx context.Context, subscriptionID string) (model.OfferEligibility, error) {
	m, err := uc.markers.Markers(ctx, subscriptionID)
	if err != nil {
		return model.OfferEligibility{}, err
	}
	skipMonths := uc.settings.Snapshot().SkipCooldownMonths
	return model.OfferEligibility{
		Discount: m.DiscountUsedAt == nil,
		Skip:     !uc.onCooldown(m.SkipUsedAt, skipMonths),
		Pause:    !uc.onCooldown(m.PauseUsedAt, model.PauseCooldownMonths),
	}, nil
}
