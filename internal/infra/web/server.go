package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-retention-service/internal/config"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/infra/i18n"
	redisinfra "subscription-retention-service/internal/infra/redis"
)

// tokenHeader carries the storefront anti-forgery token.
const tokenHeader = "X-Retention-Token"

const (
	rateLimitPerWindow = 30
	rateWindow         = time.Minute
)

type ctxKey int

const customerKey ctxKey = 0

func customerFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(customerKey).(int64)
	return id
}

// Server is the HTTP surface: the token-guarded storefront API the
// interceptor script talks to, plus the bearer-guarded admin side.
type Server struct {
	retention retentionService
	stats     statsService
	settings  adapter.SettingsProvider
	tokens    *TokenManager
	limiter   *redisinfra.RateLimiter
	tr        *i18n.Translator
	adminKey  string
	addr      string
	log       *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	cfg config.HTTPConfig,
	retention retentionService,
	stats statsService,
	settings adapter.SettingsProvider,
	limiter *redisinfra.RateLimiter,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		retention: retention,
		stats:     stats,
		settings:  settings,
		tokens:    NewTokenManager(cfg.TokenSecret, cfg.TokenTTL),
		limiter:   limiter,
		tr:        tr,
		adminKey:  cfg.AdminKey,
		addr:      fmt.Sprintf(":%d", cfg.Port),
		log:       &compLog,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)
	r.Use(requestLogger(s.log))
	r.Use(recoverer(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.adminGuard).Post("/token", s.handleMintToken)
		r.With(s.adminGuard).Get("/admin/stats", s.handleStats)

		r.Group(func(r chi.Router) {
			r.Use(s.tokenGuard)
			r.Get("/bootstrap", s.handleBootstrap)
			r.Post("/intercept", s.rateLimit("intercept", s.handleIntercept))
			r.Get("/offers/eligibility", s.handleEligibility)
			r.Post("/offers/apply", s.rateLimit("apply", s.handleApplyOffer))
			r.Post("/events", s.rateLimit("events", s.handleEvent))
		})
	})
	return r
}

// tokenGuard verifies the anti-forgery token and stashes the customer it
// was minted for in the request context.
func (s *Server) tokenGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID, err := s.tokens.Verify(r.Header.Get(tokenHeader))
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, s.tr.T("request.unauthorized"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), customerKey, customerID)))
	})
}

func (s *Server) adminGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			s.log.Error().Msg("admin key is not configured")
			writeFailure(w, http.StatusForbidden, s.tr.T("request.unauthorized"))
			return
		}
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.adminKey {
			writeFailure(w, http.StatusUnauthorized, s.tr.T("request.unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
