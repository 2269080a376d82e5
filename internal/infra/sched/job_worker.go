// File: internal/infra/sched/job_worker.go
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/repository"
	"subscription-retention-service/internal/infra/metrics"
)

// Handler executes one claimed job. Delivery is at-least-once, so handlers
// must tolerate re-invocation with the same arguments.
type Handler func(ctx context.Context, job *model.ScheduledJob) error

// JobWorker polls the persisted job store and dispatches due jobs to the
// registered handlers.
type JobWorker struct {
	queue    repository.JobQueue
	handlers map[string]Handler
	interval time.Duration
	batch    int
	log      *zerolog.Logger

	now func() time.Time
}

func NewJobWorker(queue repository.JobQueue, interval time.Duration, batch int, logger *zerolog.Logger) *JobWorker {
	workerLog := logger.With().Str("component", "JobWorker").Logger()
	return &JobWorker{
		queue:    queue,
		handlers: make(map[string]Handler),
		interval: interval,
		batch:    batch,
		log:      &workerLog,
		now:      time.Now,
	}
}

// Register binds a handler to a job name. Must be called before Run.
func (w *JobWorker) Register(name string, h Handler) {
	w.handlers[name] = h
}

func (w *JobWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting job worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping job worker")
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *JobWorker) poll(ctx context.Context) {
	jobs, err := w.queue.ClaimDue(ctx, w.now(), w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to claim due jobs")
		return
	}
	if len(jobs) == 0 {
		return
	}
	metrics.SetJobsClaimed(len(jobs))

	for _, job := range jobs {
		if err := w.dispatch(ctx, job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Str("name", job.Name).Msg("job failed")
			metrics.IncJobProcessed(job.Name, string(model.JobFailed))
			if err := w.queue.MarkFailed(ctx, job.ID); err != nil {
				w.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark job failed")
			}
			continue
		}
		metrics.IncJobProcessed(job.Name, string(model.JobDone))
		if err := w.queue.MarkDone(ctx, job.ID); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark job done")
		}
	}
}

func (w *JobWorker) dispatch(ctx context.Context, job *model.ScheduledJob) error {
	h, ok := w.handlers[job.Name]
	if !ok {
		return fmt.Errorf("no handler registered for job %q", job.Name)
	}
	w.log.Debug().Str("job_id", job.ID).Str("name", job.Name).Msg("dispatching job")
	return h(ctx, job)
}
