// File: internal/infra/db/postgres/events_repo.go
package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

// EventRepo persists the append-only retention event log.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Save(ctx context.Context, ev *model.RetentionEvent) error {
	const sql = `
INSERT INTO retention_events (sub_id, customer_id, event, offer, sub_value, backend, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
RETURNING id;
`
	err := r.pool.QueryRow(ctx, sql,
		ev.SubscriptionID,
		ev.CustomerID,
		string(ev.Kind),
		string(ev.Offer),
		ev.Value,
		string(ev.Backend),
		ev.CreatedAt,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("Save event: %w", err)
	}
	return nil
}

func (r *EventRepo) Stats(ctx context.Context, days int) (*model.RetentionStats, error) {
	const counts = `
SELECT
  COUNT(*) FILTER (WHERE event = 'popup_shown'),
  COUNT(*) FILTER (WHERE event = 'offer_accepted'),
  COUNT(*) FILTER (WHERE event = 'cancelled'),
  COALESCE(AVG(sub_value) FILTER (WHERE event = 'cancelled' AND sub_value > 0), 0)
FROM retention_events
WHERE created_at >= now() - $1 * interval '1 day';
`
	st := &model.RetentionStats{ByOffer: map[model.OfferKind]int{}}
	err := r.pool.QueryRow(ctx, counts, days).Scan(&st.Shown, &st.Saved, &st.Lost, &st.AvgValue)
	if err != nil {
		return nil, fmt.Errorf("Stats counts: %w", err)
	}

	const breakdown = `
SELECT offer, COUNT(*)
  FROM retention_events
 WHERE event = 'offer_accepted'
   AND offer IS NOT NULL
   AND created_at >= now() - $1 * interval '1 day'
 GROUP BY offer;
`
	rows, err := r.pool.Query(ctx, breakdown, days)
	if err != nil {
		return nil, fmt.Errorf("Stats breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var offer string
		var n int
		if err := rows.Scan(&offer, &n); err != nil {
			return nil, fmt.Errorf("Stats breakdown scan: %w", err)
		}
		st.ByOffer[model.OfferKind(offer)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Stats breakdown rows: %w", err)
	}

	st.RevSaved = float64(st.Saved) * st.AvgValue
	if st.Shown > 0 {
		st.SaveRate = math.Round(float64(st.Saved)/float64(st.Shown)*1000) / 10
	}
	return st, nil
}
