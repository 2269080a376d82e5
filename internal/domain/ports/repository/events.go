package repository

import (
	"context"

	"subscription-retention-service/internal/domain/model"
)

// EventRepository is the append-only retention event log. Events are never
// mutated or deleted and are used only for aggregate reporting.
type EventRepository interface {
	Save(ctx context.Context, ev *model.RetentionEvent) error
	Stats(ctx context.Context, days int) (*model.RetentionStats, error)
}
