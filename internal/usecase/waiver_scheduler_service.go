package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/platform/logging"
)

// JobQueue hands jobs to the external queue that calls the internal job
// endpoints back.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

func (noopJobQueue) Enqueue(context.Context, string, any, time.Duration, string) error {
	return nil
}

const (
	processWaiversJobPath = "/v1/internal/jobs/process-waivers"
	defaultScheduleWindow = 24 * time.Hour
)

// WaiverSchedulerService enqueues waiver-processing runs per league.
// Dedup ids are bucketed by the schedule interval so repeated triggers
// inside one bucket collapse into a single queued job.
type WaiverSchedulerService struct {
	leagues    league.Repository
	queue      JobQueue
	dispatches jobscheduler.Repository
	logger     *logging.Logger
	interval   time.Duration
	now        func() time.Time
}

func NewWaiverSchedulerService(
	leagues league.Repository,
	queue JobQueue,
	dispatches jobscheduler.Repository,
	logger *logging.Logger,
	interval time.Duration,
) *WaiverSchedulerService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultScheduleWindow
	}
	return &WaiverSchedulerService{
		leagues:    leagues,
		queue:      queue,
		dispatches: dispatches,
		logger:     logger,
		interval:   interval,
		now:        time.Now,
	}
}

type ScheduleRequest struct {
	LeagueID string
	Delay    time.Duration
}

type ScheduledJob struct {
	LeagueID   string
	DispatchID string
	RunAt      time.Time
}

// ScheduleProcessing queues one process-waivers job per target league.
func (s *WaiverSchedulerService) ScheduleProcessing(ctx context.Context, req ScheduleRequest) ([]ScheduledJob, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverSchedulerService.ScheduleProcessing")
	defer span.End()

	targets, err := s.pickLeagues(ctx, strings.TrimSpace(req.LeagueID))
	if err != nil {
		return nil, err
	}

	delay := maxDuration(req.Delay, 0)
	now := s.now().UTC()
	runAt := now.Add(delay)

	jobs := make([]ScheduledJob, 0, len(targets))
	for _, target := range targets {
		dispatchID := dedupKey("process-waivers", target.ID, runAt, s.interval)
		payload := map[string]any{
			"league_id":   target.ID,
			"dispatch_id": dispatchID,
		}

		if err := s.queue.Enqueue(ctx, processWaiversJobPath, payload, delay, dispatchID); err != nil {
			s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
				DispatchID:   dispatchID,
				JobName:      "process-waivers",
				JobPath:      processWaiversJobPath,
				LeagueID:     target.ID,
				Status:       jobscheduler.StatusFailed,
				Payload:      payload,
				ErrorMessage: err.Error(),
			})
			return jobs, fmt.Errorf("enqueue process-waivers league=%s: %w", target.ID, err)
		}

		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID: dispatchID,
			JobName:    "process-waivers",
			JobPath:    processWaiversJobPath,
			LeagueID:   target.ID,
			Status:     jobscheduler.StatusSent,
			Payload:    payload,
		})
		jobs = append(jobs, ScheduledJob{LeagueID: target.ID, DispatchID: dispatchID, RunAt: runAt})
	}

	return jobs, nil
}

func (s *WaiverSchedulerService) pickLeagues(ctx context.Context, leagueID string) ([]league.League, error) {
	if leagueID == "" {
		items, err := s.leagues.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list leagues: %w", err)
		}
		return items, nil
	}

	item, exists, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load league %s: %w", leagueID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return []league.League{item}, nil
}

func (s *WaiverSchedulerService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatches == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}

	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatches.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record dispatch event failed",
			"dispatch_id", event.DispatchID,
			"league_id", event.LeagueID,
			"error", err,
		)
	}
}

var dedupSegmentPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func dedupKey(prefix, leagueID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = defaultScheduleWindow
	}
	stamp := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(leagueID) + "-" + stamp
}

func sanitizeDedupSegment(segment string) string {
	segment = dedupSegmentPattern.ReplaceAllString(strings.TrimSpace(segment), "-")
	if segment == "" {
		return "unknown"
	}
	return segment
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
