// File: internal/usecase/retention_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
)

func newRetentionFixture() (*RetentionUseCase, *fakeBackend, *memEventRepo, *memScheduler, *staticSettings) {
	backend := newFakeBackend()
	events := newMemEventRepo()
	scheduler := newMemScheduler()
	settings := defaultSettings()
	offers := newOffersUC(newMemMarkerRepo(), settings)
	tracker := NewTrackerUseCase(events, backend.Kind(), testLogger())
	uc := NewRetentionUseCase(backend, offers, tracker, settings, scheduler, testLogger())
	return uc, backend, events, scheduler, settings
}

func TestRetentionUC_ApplyOffer_NotFound(t *testing.T) {
	t.Parallel()

	uc, _, _, _, _ := newRetentionFixture()
	_, err := uc.ApplyOffer(context.Background(), 7, "missing", model.OfferSkip)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetentionUC_ApplyOffer_WrongCustomer(t *testing.T) {
	t.Parallel()

	uc, backend, events, _, _ := newRetentionFixture()
	backend.add(newFakeHandle("sub-1", 7))

	_, err := uc.ApplyOffer(context.Background(), 8, "sub-1", model.OfferSkip)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(events.kinds()) != 0 {
		t.Fatal("unauthorized attempts must not be tracked")
	}
}

func TestRetentionUC_ApplyOffer_TracksAcceptance(t *testing.T) {
	t.Parallel()

	uc, backend, events, _, _ := newRetentionFixture()
	backend.add(newFakeHandle("sub-1", 7))

	res, err := uc.ApplyOffer(context.Background(), 7, "sub-1", model.OfferSkip)
	if err != nil {
		t.Fatalf("ApplyOffer returned error: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("expected acceptance, got %q", res.Message)
	}
	kinds := events.kinds()
	if len(kinds) != 1 || kinds[0] != model.EventOfferAccepted {
		t.Fatalf("expected one offer_accepted event, got %v", kinds)
	}

	// A rejected application is not an acceptance event.
	if res, _ := uc.ApplyOffer(context.Background(), 7, "sub-1", model.OfferSkip); res.Accepted {
		t.Fatal("expected cooldown rejection on immediate retry")
	}
	if len(events.kinds()) != 1 {
		t.Fatalf("rejections must not be tracked, got %v", events.kinds())
	}
}

func TestRetentionUC_Eligibility_Authorized(t *testing.T) {
	t.Parallel()

	uc, backend, _, _, _ := newRetentionFixture()
	backend.add(newFakeHandle("sub-1", 7))

	elig, err := uc.Eligibility(context.Background(), 7, "sub-1")
	if err != nil {
		t.Fatalf("Eligibility returned error: %v", err)
	}
	if !elig.Pause || !elig.Skip || !elig.Discount {
		t.Fatalf("fresh subscription should be fully eligible, got %+v", elig)
	}

	if _, err := uc.Eligibility(context.Background(), 99, "sub-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign customer, got %v", err)
	}
}

func TestRetentionUC_OnCancelled_SchedulesOneWinback(t *testing.T) {
	t.Parallel()

	uc, backend, events, scheduler, _ := newRetentionFixture()
	sub := newFakeHandle("sub-1", 7)
	backend.add(sub)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	uc.OnCancelled(context.Background(), model.StatusChange{
		SubscriptionID: "sub-1", From: "active", To: "cancelled", Backend: backend.Kind(),
	})

	kinds := events.kinds()
	if len(kinds) != 1 || kinds[0] != model.EventCancelled {
		t.Fatalf("expected one cancelled event, got %v", kinds)
	}
	if len(scheduler.jobs) != 1 {
		t.Fatalf("expected exactly one scheduled job, got %d", len(scheduler.jobs))
	}
	job := scheduler.jobs[0]
	if job.Name != model.JobSendWinback {
		t.Fatalf("expected %s job, got %s", model.JobSendWinback, job.Name)
	}
	if want := now.Add(24 * time.Hour); !job.RunAt.Equal(want) {
		t.Fatalf("expected run at %v (delay 1 day), got %v", want, job.RunAt)
	}
	if job.Args["sub_id"] != "sub-1" || job.Args["email"] != sub.email {
		t.Fatalf("unexpected job args: %v", job.Args)
	}
}

func TestRetentionUC_OnCancelled_WinbackDisabled(t *testing.T) {
	t.Parallel()

	uc, backend, _, scheduler, settings := newRetentionFixture()
	settings.s.WinbackEnabled = false
	backend.add(newFakeHandle("sub-1", 7))

	uc.OnCancelled(context.Background(), model.StatusChange{SubscriptionID: "sub-1", To: "cancelled"})
	if len(scheduler.jobs) != 0 {
		t.Fatalf("expected no scheduled jobs, got %d", len(scheduler.jobs))
	}
}

func TestRetentionUC_Teardown_ClearsBothJobKinds(t *testing.T) {
	t.Parallel()

	uc, _, _, scheduler, _ := newRetentionFixture()
	ctx := context.Background()
	_ = scheduler.Schedule(ctx, time.Now(), model.JobResumeSubscription, nil)
	_ = scheduler.Schedule(ctx, time.Now(), model.JobSendWinback, nil)

	if err := uc.Teardown(ctx); err != nil {
		t.Fatalf("Teardown returned error: %v", err)
	}
	if len(scheduler.jobs) != 0 {
		t.Fatalf("expected all jobs cleared, got %d", len(scheduler.jobs))
	}
}
