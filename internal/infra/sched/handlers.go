// File: internal/infra/sched/handlers.go
package sched

import (
	"context"
	"fmt"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/usecase"
)

// ResumeHandler restores a paused subscription. The backend makes this a
// no-op unless the subscription is still paused, so replays are harmless.
func ResumeHandler(backend adapter.SubscriptionBackend) Handler {
	return func(ctx context.Context, job *model.ScheduledJob) error {
		subID := job.Args["sub_id"]
		if subID == "" {
			return fmt.Errorf("resume job %s has no sub_id", job.ID)
		}
		return backend.Resume(ctx, subID)
	}
}

// WinbackHandler sends the delayed win-back email. Replays create one coupon
// per invocation; the send itself is not idempotent.
func WinbackHandler(winback *usecase.WinbackUseCase) Handler {
	return func(ctx context.Context, job *model.ScheduledJob) error {
		subID := job.Args["sub_id"]
		if subID == "" {
			return fmt.Errorf("winback job %s has no sub_id", job.ID)
		}
		return winback.Send(ctx, subID, job.Args["email"])
	}
}
