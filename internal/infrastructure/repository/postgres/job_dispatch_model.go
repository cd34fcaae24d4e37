package postgres

import "time"

type jobDispatchInsertModel struct {
	DispatchID     string     `db:"dispatch_id"`
	JobName        string     `db:"job_name"`
	JobPath        string     `db:"job_path"`
	LeaguePublicID string     `db:"league_public_id"`
	Status         string     `db:"status"`
	Payload        *string    `db:"payload"`
	ErrorMessage   *string    `db:"error_message"`
	TraceID        *string    `db:"trace_id"`
	SpanID         *string    `db:"span_id"`
	SentAt         *time.Time `db:"sent_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	FailedAt       *time.Time `db:"failed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
