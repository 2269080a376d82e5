package web

import (
	"context"

	"subscription-retention-service/internal/domain/model"
)

// fakeRetention records the calls the handlers make and answers with
// whatever the test primed.
type fakeRetention struct {
	applyRes model.OfferResult
	applyErr error
	elig     model.OfferEligibility
	eligErr  error

	lastCustomer int64
	lastSub      string
	lastOffer    model.OfferKind
	loggedEvents []model.EventKind
}

func (f *fakeRetention) ApplyOffer(_ context.Context, customerID int64, subscriptionID string, offer model.OfferKind) (model.OfferResult, error) {
	f.lastCustomer = customerID
	f.lastSub = subscriptionID
	f.lastOffer = offer
	return f.applyRes, f.applyErr
}

func (f *fakeRetention) Eligibility(_ context.Context, customerID int64, subscriptionID string) (model.OfferEligibility, error) {
	f.lastCustomer = customerID
	f.lastSub = subscriptionID
	return f.elig, f.eligErr
}

func (f *fakeRetention) LogEvent(_ context.Context, customerID int64, subscriptionID string, kind model.EventKind) {
	f.lastCustomer = customerID
	f.lastSub = subscriptionID
	f.loggedEvents = append(f.loggedEvents, kind)
}

type fakeStats struct {
	stats    *model.RetentionStats
	err      error
	lastDays int
}

func (f *fakeStats) Stats(_ context.Context, days int) (*model.RetentionStats, error) {
	f.lastDays = days
	return f.stats, f.err
}
