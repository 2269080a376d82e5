// File: internal/infra/db/postgres/jobs_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
)

var (
	_ repository.JobScheduler = (*JobRepo)(nil)
	_ repository.JobQueue     = (*JobRepo)(nil)
)

// JobRepo is both sides of the persisted deferred-job store: scheduling for
// the use cases, claiming for the worker. A claimed job that is never marked
// done becomes claimable again after the claim lease expires, which is what
// makes delivery at-least-once rather than at-most-once.
type JobRepo struct {
	pool  *pgxpool.Pool
	lease time.Duration
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool, lease: 5 * time.Minute}
}

func (r *JobRepo) Schedule(ctx context.Context, runAt time.Time, name string, args map[string]string) error {
	if args == nil {
		args = map[string]string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("Schedule %s: %w", name, err)
	}
	const sql = `
INSERT INTO scheduled_jobs (id, name, args, run_at, status, created_at)
VALUES ($1, $2, $3, $4, 'pending', now());
`
	if _, err := r.pool.Exec(ctx, sql, ulid.Make().String(), name, argsJSON, runAt); err != nil {
		return fmt.Errorf("Schedule %s: %w", name, err)
	}
	return nil
}

func (r *JobRepo) Clear(ctx context.Context, name string) error {
	const sql = `DELETE FROM scheduled_jobs WHERE name = $1 AND status = 'pending';`
	if _, err := r.pool.Exec(ctx, sql, name); err != nil {
		return fmt.Errorf("Clear %s: %w", name, err)
	}
	return nil
}

func (r *JobRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledJob, error) {
	const sql = `
UPDATE scheduled_jobs
   SET claimed_at = now()
 WHERE id IN (
       SELECT id FROM scheduled_jobs
        WHERE status = 'pending'
          AND run_at <= $1
          AND (claimed_at IS NULL OR claimed_at < now() - $2::interval)
        ORDER BY run_at
        LIMIT $3
        FOR UPDATE SKIP LOCKED)
RETURNING id, name, args, run_at, status, created_at;
`
	rows, err := r.pool.Query(ctx, sql, now, r.lease.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("ClaimDue: %w", err)
	}
	defer rows.Close()

	var out []*model.ScheduledJob
	for rows.Next() {
		var job model.ScheduledJob
		var status string
		var argsJSON []byte
		if err := rows.Scan(&job.ID, &job.Name, &argsJSON, &job.RunAt, &status, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("ClaimDue scan: %w", err)
		}
		if err := json.Unmarshal(argsJSON, &job.Args); err != nil {
			return nil, fmt.Errorf("ClaimDue args %s: %w", job.ID, err)
		}
		job.Status = model.JobStatus(status)
		out = append(out, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ClaimDue rows: %w", err)
	}
	return out, nil
}

func (r *JobRepo) MarkDone(ctx context.Context, id string) error {
	return r.mark(ctx, id, model.JobDone)
}

func (r *JobRepo) MarkFailed(ctx context.Context, id string) error {
	return r.mark(ctx, id, model.JobFailed)
}

func (r *JobRepo) mark(ctx context.Context, id string, status model.JobStatus) error {
	const sql = `UPDATE scheduled_jobs SET status = $2 WHERE id = $1;`
	if _, err := r.pool.Exec(ctx, sql, id, string(status)); err != nil {
		return fmt.Errorf("mark job %s %s: %w", id, status, err)
	}
	return nil
}
