// File: internal/infra/backends/watch.go
package backends

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
)

// CancelWatcher holds one dedicated store-DB connection on LISTEN for the
// active backend's status channels and invokes the handler once per genuine
// cancellation. The store-side triggers emit a NOTIFY per status transition;
// translation and terminal filtering happen here, so the handler only ever
// sees real cancellations.
type CancelWatcher struct {
	pool    *pgxpool.Pool
	backend adapter.SubscriptionBackend
	handler func(ctx context.Context, change model.StatusChange)
	log     *zerolog.Logger

	retryDelay time.Duration
}

func NewCancelWatcher(pool *pgxpool.Pool, backend adapter.SubscriptionBackend, handler func(ctx context.Context, change model.StatusChange), logger *zerolog.Logger) *CancelWatcher {
	compLog := logger.With().Str("component", "CancelWatcher").Logger()
	return &CancelWatcher{
		pool:       pool,
		backend:    backend,
		handler:    handler,
		log:        &compLog,
		retryDelay: 5 * time.Second,
	}
}

// Run blocks until ctx is done, re-establishing the listening connection
// after failures.
func (w *CancelWatcher) Run(ctx context.Context) error {
	for {
		err := w.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.log.Error().Err(err).Dur("retry_in", w.retryDelay).Msg("listen connection lost")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *CancelWatcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, ch := range w.backend.Channels() {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
			return err
		}
		w.log.Info().Str("channel", ch).Msg("listening for status changes")
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		change, ok := w.backend.TranslateSignal(n.Channel, n.Payload)
		if !ok {
			continue
		}
		if !w.backend.Terminal(change.To) {
			continue
		}
		w.log.Info().
			Str("subscription_id", change.SubscriptionID).
			Str("from", change.From).
			Str("to", change.To).
			Msg("cancellation observed")
		w.handler(ctx, change)
	}
}
