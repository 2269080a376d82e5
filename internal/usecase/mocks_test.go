// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/infra/i18n"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testTranslator() *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	return tr
}

// staticSettings satisfies adapter.SettingsProvider with a fixed snapshot.
type staticSettings struct {
	s model.RetentionSettings
}

func defaultSettings() *staticSettings {
	return &staticSettings{s: model.DefaultRetentionSettings()}
}

func (p *staticSettings) Enabled() bool                     { return p.s.Enabled }
func (p *staticSettings) Snapshot() model.RetentionSettings { return p.s }

// memMarkerRepo is a small in-memory marker store used by unit tests.
type memMarkerRepo struct {
	mu      sync.RWMutex
	store   map[string]model.OfferMarkers
	stampEr error // used by tests to simulate stamp failures
}

func newMemMarkerRepo() *memMarkerRepo {
	return &memMarkerRepo{store: make(map[string]model.OfferMarkers)}
}

func (m *memMarkerRepo) Markers(ctx context.Context, subID string) (model.OfferMarkers, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[subID], nil
}

func (m *memMarkerRepo) Stamp(ctx context.Context, subID string, family model.OfferFamily, at time.Time) error {
	if m.stampEr != nil {
		return m.stampEr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.store[subID]
	t := at
	switch family {
	case model.FamilyPause:
		cur.PauseUsedAt = &t
	case model.FamilySkip:
		cur.SkipUsedAt = &t
	case model.FamilyDiscount:
		cur.DiscountUsedAt = &t
	}
	m.store[subID] = cur
	return nil
}

// memEventRepo collects events in memory and serves a minimal Stats view.
type memEventRepo struct {
	mu      sync.RWMutex
	events  []model.RetentionEvent
	saveErr error
}

func newMemEventRepo() *memEventRepo { return &memEventRepo{} }

func (m *memEventRepo) Save(ctx context.Context, ev *model.RetentionEvent) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	cp.ID = int64(len(m.events) + 1)
	m.events = append(m.events, cp)
	return nil
}

func (m *memEventRepo) Stats(ctx context.Context, days int) (*model.RetentionStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	since := time.Now().AddDate(0, 0, -days)
	st := &model.RetentionStats{ByOffer: map[model.OfferKind]int{}}
	var lostSum float64
	for _, ev := range m.events {
		if ev.CreatedAt.Before(since) {
			continue
		}
		switch ev.Kind {
		case model.EventPopupShown:
			st.Shown++
		case model.EventOfferAccepted:
			st.Saved++
			st.ByOffer[ev.Offer]++
		case model.EventCancelled:
			st.Lost++
			lostSum += ev.Value
		}
	}
	if st.Lost > 0 {
		st.AvgValue = lostSum / float64(st.Lost)
	}
	st.RevSaved = float64(st.Saved) * st.AvgValue
	if st.Shown > 0 {
		st.SaveRate = float64(st.Saved) / float64(st.Shown) * 100
	}
	return st, nil
}

func (m *memEventRepo) kinds() []model.EventKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.EventKind, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Kind)
	}
	return out
}

// fakeHandle is a scriptable SubscriptionHandle.
type fakeHandle struct {
	id       string
	customer int64
	email    string
	total    float64
	period   model.BillingPeriod
	interval int
	nextPay  time.Time
	status   string

	pauseErr    error
	skipErr     error
	discountErr error

	pausedMonths int
	skipped      int
	discounts    int
	cancelled    int
}

func newFakeHandle(id string, customer int64) *fakeHandle {
	return &fakeHandle{
		id:       id,
		customer: customer,
		email:    "customer@example.com",
		total:    49.99,
		period:   model.PeriodMonth,
		interval: 1,
		nextPay:  time.Now().AddDate(0, 1, 0),
		status:   "active",
	}
}

func (h *fakeHandle) ID() string                         { return h.id }
func (h *fakeHandle) CustomerID() int64                  { return h.customer }
func (h *fakeHandle) CustomerEmail() string              { return h.email }
func (h *fakeHandle) Total() float64                     { return h.total }
func (h *fakeHandle) BillingPeriod() model.BillingPeriod { return h.period }
func (h *fakeHandle) BillingInterval() int               { return h.interval }

func (h *fakeHandle) NextPaymentDate(ctx context.Context) (time.Time, error) {
	return h.nextPay, nil
}

func (h *fakeHandle) Pause(ctx context.Context, months int) error {
	if h.pauseErr != nil {
		return h.pauseErr
	}
	h.pausedMonths = months
	h.status = "on-hold"
	return nil
}

func (h *fakeHandle) SkipPayment(ctx context.Context) error {
	if h.skipErr != nil {
		return h.skipErr
	}
	h.skipped++
	h.nextPay = model.NextRenewal(h.nextPay, h.period, h.interval)
	return nil
}

func (h *fakeHandle) ApplyDiscount(ctx context.Context, amount float64, dt model.DiscountType) (string, error) {
	if h.discountErr != nil {
		return "", h.discountErr
	}
	h.discounts++
	c := model.NewRetentionCoupon(h.id, h.email, amount, dt, time.Now())
	return c.Code, nil
}

func (h *fakeHandle) Cancel(ctx context.Context) error {
	h.cancelled++
	h.status = "cancelled"
	return nil
}

// fakeBackend resolves handles from a fixed map.
type fakeBackend struct {
	kind    model.BackendKind
	handles map[string]*fakeHandle
	resumed []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{kind: model.BackendWCS, handles: make(map[string]*fakeHandle)}
}

func (b *fakeBackend) add(h *fakeHandle) *fakeBackend {
	b.handles[h.id] = h
	return b
}

func (b *fakeBackend) Kind() model.BackendKind { return b.kind }

func (b *fakeBackend) Subscription(ctx context.Context, id string) (adapter.SubscriptionHandle, error) {
	h, ok := b.handles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return h, nil
}

func (b *fakeBackend) Resume(ctx context.Context, id string) error {
	h, ok := b.handles[id]
	if !ok {
		return domain.ErrNotFound
	}
	if h.status == "on-hold" {
		h.status = "active"
		b.resumed = append(b.resumed, id)
	}
	return nil
}

func (b *fakeBackend) Channels() []string { return []string{"test_channel"} }

func (b *fakeBackend) TranslateSignal(channel, payload string) (model.StatusChange, bool) {
	return model.StatusChange{}, false
}

func (b *fakeBackend) Terminal(status string) bool { return status == "cancelled" }

// memScheduler records scheduled jobs.
type memScheduler struct {
	mu   sync.Mutex
	jobs []model.ScheduledJob
}

func newMemScheduler() *memScheduler { return &memScheduler{} }

func (m *memScheduler) Schedule(ctx context.Context, runAt time.Time, name string, args map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, model.ScheduledJob{Name: name, Args: args, RunAt: runAt, Status: model.JobPending})
	return nil
}

func (m *memScheduler) Clear(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.jobs[:0]
	for _, j := range m.jobs {
		if j.Name != name {
			kept = append(kept, j)
		}
	}
	m.jobs = kept
	return nil
}

// memCouponRepo collects issued coupons.
type memCouponRepo struct {
	mu      sync.Mutex
	coupons []model.Coupon
}

func newMemCouponRepo() *memCouponRepo { return &memCouponRepo{} }

func (m *memCouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons = append(m.coupons, *c)
	return nil
}

// fakeMailer records sent mail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}
