package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"subscription-retention-service/internal/domain"
	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/infra/backends"
	"subscription-retention-service/internal/infra/logging"
	redisinfra "subscription-retention-service/internal/infra/redis"
)

// retentionService is the slice of the retention orchestrator the HTTP
// layer needs.
type retentionService interface {
	ApplyOffer(ctx context.Context, customerID int64, subscriptionID string, offer model.OfferKind) (model.OfferResult, error)
	Eligibility(ctx context.Context, customerID int64, subscriptionID string) (model.OfferEligibility, error)
	LogEvent(ctx context.Context, customerID int64, subscriptionID string, kind model.EventKind)
}

type statsService interface {
	Stats(ctx context.Context, days int) (*model.RetentionStats, error)
}

// response is the envelope every endpoint answers with.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

// writeDomainError maps domain sentinels onto customer-safe messages.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, s.tr.T("request.not_found"))
	case errors.Is(err, domain.ErrUnauthorized):
		writeFailure(w, http.StatusForbidden, s.tr.T("request.unauthorized"))
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnsupported):
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
	default:
		writeFailure(w, http.StatusInternalServerError, "Internal error.")
	}
}

type mintRequest struct {
	CustomerID int64 `json:"customer_id"`
}

// handleMintToken lets the storefront backend mint an anti-forgery token
// for the logged-in customer. Guarded by the admin key.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID <= 0 {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	token, err := s.tokens.Mint(req.CustomerID)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeFailure(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	writeData(w, map[string]string{"token": token})
}

// handleBootstrap hands the interceptor script everything it needs to
// arm itself: the cancel-link selectors, the popup strings and the
// enabled offer set.
func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	snap := s.settings.Snapshot()
	discountLabel := snap.DiscountType.Label(snap.DiscountAmount)
	writeData(w, map[string]interface{}{
		"enabled":   snap.Enabled,
		"selectors": backends.CancelSelectors(),
		"settings":  snap,
		"strings": map[string]string{
			"headline":      snap.Headline,
			"subheadline":   snap.Subheadline,
			"pause_1":       s.tr.T("popup.pause_1"),
			"pause_1_desc":  s.tr.T("popup.pause_1_desc"),
			"pause_3":       s.tr.T("popup.pause_3"),
			"pause_3_desc":  s.tr.T("popup.pause_3_desc"),
			"skip":          s.tr.T("popup.skip"),
			"skip_desc":     s.tr.T("popup.skip_desc"),
			"discount":      s.tr.T("popup.discount", discountLabel),
			"discount_desc": s.tr.T("popup.discount_desc"),
			"cancel_anyway": s.tr.T("popup.cancel_anyway"),
			"processing":    s.tr.T("popup.processing"),
			"success":       s.tr.T("popup.success"),
		},
	})
}

type interceptRequest struct {
	CancelURL      string `json:"cancel_url"`
	SubscriptionID string `json:"subscription_id"` // data-attribute fallback
}

// handleIntercept resolves a clicked cancel link to a subscription and
// reports which offers the popup should show for it.
func (s *Server) handleIntercept(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r.Context())
	var req interceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	subID := ParseCancelURL(req.CancelURL)
	if subID == "" {
		subID = req.SubscriptionID
	}
	if subID == "" {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	if !s.settings.Enabled() {
		writeData(w, map[string]interface{}{"enabled": false, "subscription_id": subID})
		return
	}
	elig, err := s.retention.Eligibility(r.Context(), customerID, subID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeData(w, map[string]interface{}{
		"enabled":         true,
		"subscription_id": subID,
		"eligibility":     elig,
	})
}

type applyRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Offer          string `json:"offer"`
}

func (s *Server) handleApplyOffer(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r.Context())
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == "" {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	offer := model.OfferKind(req.Offer)
	if !offer.Valid() {
		writeFailure(w, http.StatusBadRequest, s.tr.T("offer.unknown"))
		return
	}
	ctx := logging.WithCustomerID(logging.WithSubscriptionID(r.Context(), req.SubscriptionID), customerID)
	res, err := s.retention.ApplyOffer(ctx, customerID, req.SubscriptionID, offer)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !res.Accepted {
		writeFailure(w, http.StatusConflict, res.Message)
		return
	}
	writeData(w, map[string]interface{}{
		"message":     res.Message,
		"coupon_code": res.CouponCode,
	})
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r.Context())
	subID := r.URL.Query().Get("subscription_id")
	if subID == "" {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	elig, err := s.retention.Eligibility(r.Context(), customerID, subID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeData(w, elig)
}

type eventRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Event          string `json:"event"`
}

// handleEvent records presentation events such as popup_shown. Only the
// popup-side kinds are accepted; lifecycle events come from the watcher.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r.Context())
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == "" {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	kind := model.EventKind(req.Event)
	if kind != "" && kind != model.EventPopupShown {
		writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
		return
	}
	s.retention.LogEvent(r.Context(), customerID, req.SubscriptionID, kind)
	writeData(w, map[string]bool{"recorded": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			writeFailure(w, http.StatusBadRequest, s.tr.T("request.invalid"))
			return
		}
		days = n
	}
	stats, err := s.stats.Stats(r.Context(), days)
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		writeFailure(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	writeData(w, stats)
}

// rateLimit caps per-customer storefront writes. Enough for a human in a
// popup, a wall for scripts hammering apply.
func (s *Server) rateLimit(action string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next(w, r)
			return
		}
		key := redisinfra.CustomerActionKey(customerFrom(r.Context()), action)
		ok, err := s.limiter.Allow(r.Context(), key, rateLimitPerWindow, rateWindow)
		if err != nil {
			// Limiter outage must not take the storefront down with it.
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next(w, r)
			return
		}
		if !ok {
			writeFailure(w, http.StatusTooManyRequests, s.tr.T("request.invalid"))
			return
		}
		next(w, r)
	}
}
