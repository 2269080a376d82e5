//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"subscription-retention-service/internal/domain/model"
)

func TestEventRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewEventRepo(testPool)

	track := func(t *testing.T, kind model.EventKind, offer model.OfferKind, value float64) {
		t.Helper()
		ev := &model.RetentionEvent{
			SubscriptionID: "42",
			CustomerID:     7,
			Kind:           kind,
			Offer:          offer,
			Value:          value,
			Backend:        model.BackendWCS,
			CreatedAt:      time.Now(),
		}
		if err := repo.Save(ctx, ev); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if ev.ID == 0 {
			t.Fatal("Save did not assign an ID")
		}
	}

	t.Run("should aggregate stats over the window", func(t *testing.T) {
		cleanup(t)

		track(t, model.EventPopupShown, "", 0)
		track(t, model.EventPopupShown, "", 0)
		track(t, model.EventOfferAccepted, model.OfferSkip, 25)
		track(t, model.EventCancelled, "", 100)
		track(t, model.EventWinbackSent, "", 0)

		st, err := repo.Stats(ctx, 30)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Shown != 2 || st.Saved != 1 || st.Lost != 1 {
			t.Fatalf("unexpected counts: %+v", st)
		}
		if st.AvgValue != 100 {
			t.Fatalf("expected avg cancelled value 100, got %g", st.AvgValue)
		}
		if st.RevSaved != 100 {
			t.Fatalf("expected revenue saved 100, got %g", st.RevSaved)
		}
		if st.SaveRate != 50 {
			t.Fatalf("expected save rate 50, got %g", st.SaveRate)
		}
		if st.ByOffer[model.OfferSkip] != 1 {
			t.Fatalf("expected skip breakdown 1, got %v", st.ByOffer)
		}
	})

	t.Run("should exclude events outside the window", func(t *testing.T) {
		cleanup(t)

		old := &model.RetentionEvent{
			SubscriptionID: "42",
			Kind:           model.EventPopupShown,
			Backend:        model.BackendWCS,
			CreatedAt:      time.Now().AddDate(0, 0, -40),
		}
		if err := repo.Save(ctx, old); err != nil {
			t.Fatalf("Save: %v", err)
		}

		st, err := repo.Stats(ctx, 30)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Shown != 0 {
			t.Fatalf("expected 40-day-old event excluded, got shown=%d", st.Shown)
		}
	})

	t.Run("zero-valued cancellations do not drag the average", func(t *testing.T) {
		cleanup(t)

		track(t, model.EventCancelled, "", 0)
		track(t, model.EventCancelled, "", 80)

		st, err := repo.Stats(ctx, 30)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Lost != 2 {
			t.Fatalf("expected 2 lost, got %d", st.Lost)
		}
		if st.AvgValue != 80 {
			t.Fatalf("expected avg 80 (zero values excluded), got %g", st.AvgValue)
		}
	})
}
