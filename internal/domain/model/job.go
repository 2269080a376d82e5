package model

import "time"

// Job names the deferred job worker dispatches on.
const (
	JobResumeSubscription = "resume_subscription"
	JobSendWinback        = "send_winback"
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ScheduledJob is one persisted deferred job. Delivery is at-least-once, so
// handlers must tolerate re-invocation.
type ScheduledJob struct {
	ID        string // ULID, time-sortable
	Name      string
	Args      map[string]string
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}
