package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/waiverwire/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

const upsertJobDispatchSuffix = `
ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL DO UPDATE SET
    status = EXCLUDED.status,
    payload = COALESCE(EXCLUDED.payload, job_dispatches.payload),
    error_message = COALESCE(EXCLUDED.error_message, job_dispatches.error_message),
    trace_id = COALESCE(EXCLUDED.trace_id, job_dispatches.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, job_dispatches.span_id),
    sent_at = CASE WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_at ELSE job_dispatches.sent_at END,
    completed_at = CASE WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at ELSE job_dispatches.completed_at END,
    failed_at = CASE WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at ELSE job_dispatches.failed_at END,
    updated_at = EXCLUDED.updated_at`

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}
	jobPath := strings.TrimSpace(event.JobPath)
	if jobPath == "" {
		jobPath = "/unknown"
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payload, err := marshalDispatchPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal dispatch payload dispatch_id=%s: %w", dispatchID, err)
	}

	model := jobDispatchInsertModel{
		DispatchID:     dispatchID,
		JobName:        jobName,
		JobPath:        jobPath,
		LeaguePublicID: strings.TrimSpace(event.LeagueID),
		Status:         string(event.Status),
		Payload:        payload,
		ErrorMessage:   nullableString(strings.TrimSpace(event.ErrorMessage)),
		TraceID:        nullableString(strings.TrimSpace(event.TraceID)),
		SpanID:         nullableString(strings.TrimSpace(event.SpanID)),
		CreatedAt:      occurredAt,
		UpdatedAt:      occurredAt,
	}

	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
	default:
		return fmt.Errorf("unknown dispatch status %q", event.Status)
	}

	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build dispatch upsert dispatch_id=%s: %w", dispatchID, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert dispatch event dispatch_id=%s: %w", dispatchID, err)
	}
	return nil
}

func marshalDispatchPayload(payload map[string]any) (*string, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	text := string(raw)
	return &text, nil
}
