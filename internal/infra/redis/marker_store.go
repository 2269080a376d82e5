// File: internal/infra/redis/marker_store.go
package redis

import (
	"context"
	"fmt"
	"time"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

var _ repository.MarkerRepository = (*MarkerStore)(nil)

// MarkerStore keeps the per-subscription offer usage markers in one hash per
// subscription, keyed by backend so two stores sharing a redis never mix
// markers. No TTL: the discount marker is permanent, and cooldown expiry is
// computed from the timestamp, not from key expiry.
type MarkerStore struct {
	client  RedisClient
	backend model.BackendKind
}

const (
	fieldPauseUsed    = "pause_used_at"
	fieldSkipUsed     = "skip_used_at"
	fieldDiscountUsed = "discount_used_at"
)

func NewMarkerStore(client RedisClient, backend model.BackendKind) *MarkerStore {
	return &MarkerStore{client: client, backend: backend}
}

func (s *MarkerStore) key(subscriptionID string) string {
	return fmt.Sprintf("markers:%s:%s", s.backend, subscriptionID)
}

func (s *MarkerStore) Markers(ctx context.Context, subscriptionID string) (model.OfferMarkers, error) {
	fields, err := s.client.HGetAll(ctx, s.key(subscriptionID))
	if err != nil {
		return model.OfferMarkers{}, fmt.Errorf("Markers %s: %w", subscriptionID, err)
	}
	var m model.OfferMarkers
	m.PauseUsedAt = parseMarker(fields[fieldPauseUsed])
	m.SkipUsedAt = parseMarker(fields[fieldSkipUsed])
	m.DiscountUsedAt = parseMarker(fields[fieldDiscountUsed])
	return m, nil
}

func (s *MarkerStore) Stamp(ctx context.Context, subscriptionID string, family model.OfferFamily, at time.Time) error {
	var field string
	switch family {
	case model.FamilyPause:
		field = fieldPauseUsed
	case model.FamilySkip:
		field = fieldSkipUsed
	case model.FamilyDiscount:
		field = fieldDiscountUsed
	default:
		return fmt.Errorf("%w: offer family %q", domain.ErrInvalidArgument, family)
	}
	if err := s.client.HSet(ctx, s.key(subscriptionID), field, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("Stamp %s %s: %w", subscriptionID, family, err)
	}
	return nil
}

func parseMarker(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}
