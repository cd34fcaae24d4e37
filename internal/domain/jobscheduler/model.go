package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent is one observed state of a queued background job, keyed
// by DispatchID so retries collapse onto a single row.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	LeagueID     string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
