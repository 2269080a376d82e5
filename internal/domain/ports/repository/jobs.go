package repository

import (
	"context"
	"time"

	"subscription-retention-service/internal/domain/model"
)

// JobScheduler fires a named job at a future timestamp. Clear is the only
// cancellation mechanism: it bulk-removes all pending jobs of one kind.
type JobScheduler interface {
	Schedule(ctx context.Context, runAt time.Time, name string, args map[string]string) error
	Clear(ctx context.Context, name string) error
}

// JobQueue is the worker-facing side of the persisted job store.
// ClaimDue marks claimed jobs so two workers do not double-run them within
// one poll cycle; delivery is still at-least-once overall.
type JobQueue interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledJob, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}
