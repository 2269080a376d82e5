package adapter

import (
	"context"
	"time"

	"subscription-retention-service/internal/domain/model"
)

// SubscriptionHandle is the normalized, backend-agnostic view of one
// subscription. Mutations go straight to the active backend's storage;
// this service never creates or deletes subscriptions.
type SubscriptionHandle interface {
	ID() string
	CustomerID() int64
	CustomerEmail() string
	Total() float64
	BillingPeriod() model.BillingPeriod
	BillingInterval() int
	NextPaymentDate(ctx context.Context) (time.Time, error)

	// Pause moves the subscription to the backend's on-hold state, records
	// the resume timestamp and schedules the auto-resume job. Returns
	// domain.ErrUnsupported on backends without pause support.
	Pause(ctx context.Context, months int) error

	// SkipPayment advances the next payment date by exactly one billing
	// cycle, leaving status untouched.
	SkipPayment(ctx context.Context) error

	// ApplyDiscount issues an email-locked recurring coupon, attaches it to
	// the subscription and returns its code.
	ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error)

	// Cancel moves the subscription to the backend's cancelled state.
	// Must be a no-op when already cancelled.
	Cancel(ctx context.Context) error
}

// SubscriptionBackend is one of the five supported subscription systems,
// normalized. Implementations map the fixed capability set onto their own
// tables and meta keys.
type SubscriptionBackend interface {
	Kind() model.BackendKind

	// Subscription resolves an opaque ID to a handle. Returns
	// domain.ErrNotFound when the ID does not resolve in this backend.
	Subscription(ctx context.Context, id string) (SubscriptionHandle, error)

	// Resume restores a paused subscription to active and clears the resume
	// marker. No-op unless the subscription is currently paused, which keeps
	// at-least-once job delivery safe.
	Resume(ctx context.Context, id string) error

	// Channels lists the raw notification channels this backend emits
	// status changes on.
	Channels() []string

	// TranslateSignal converts one raw channel payload into the normalized
	// StatusChange, or reports false for payloads that are not subscription
	// status changes.
	TranslateSignal(channel, payload string) (model.StatusChange, bool)

	// Terminal reports whether a status value counts as a genuine
	// cancellation in this backend's vocabulary.
	Terminal(status string) bool
}
