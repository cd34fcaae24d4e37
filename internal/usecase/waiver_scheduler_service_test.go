package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/repository/memory"
)

type recordingQueue struct {
	entries []queuedJob
	fail    error
}

type queuedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if q.fail != nil {
		return q.fail
	}
	q.entries = append(q.entries, queuedJob{path: path, payload: payload, delay: delay, dedupID: deduplicationID})
	return nil
}

func newSchedulerFixture(t *testing.T, queue JobQueue) (*WaiverSchedulerService, *memory.JobDispatchRepository) {
	t.Helper()

	dispatches := memory.NewJobDispatchRepository()
	service := NewWaiverSchedulerService(
		memory.NewLeagueRepository(memory.SeedLeagues()),
		queue,
		dispatches,
		nil,
		24*time.Hour,
	)
	service.now = func() time.Time {
		return time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	}
	return service, dispatches
}

func TestScheduleProcessing_EnqueuesPerLeague(t *testing.T) {
	queue := &recordingQueue{}
	service, dispatches := newSchedulerFixture(t, queue)

	jobs, err := service.ScheduleProcessing(t.Context(), ScheduleRequest{})
	if err != nil {
		t.Fatalf("schedule processing: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", len(jobs))
	}
	if len(queue.entries) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(queue.entries))
	}

	entry := queue.entries[0]
	if entry.path != "/v1/internal/jobs/process-waivers" {
		t.Fatalf("unexpected job path %q", entry.path)
	}
	// Dedup ids bucket on the schedule interval so repeat triggers inside
	// one day collapse.
	want := "process-waivers-main-street-2026-20260315T000000Z"
	if entry.dedupID != want {
		t.Fatalf("unexpected dedup id: got %q, want %q", entry.dedupID, want)
	}

	events := dispatches.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 dispatch event, got %d", len(events))
	}
	if events[0].Status != jobscheduler.StatusSent {
		t.Fatalf("expected sent status, got %s", events[0].Status)
	}
	if events[0].DispatchID != want {
		t.Fatalf("dispatch event id mismatch: got %q", events[0].DispatchID)
	}
}

func TestScheduleProcessing_DedupStableWithinBucket(t *testing.T) {
	queue := &recordingQueue{}
	service, _ := newSchedulerFixture(t, queue)

	first, err := service.ScheduleProcessing(t.Context(), ScheduleRequest{LeagueID: memory.LeagueIDMainStreet})
	if err != nil {
		t.Fatalf("first schedule: %v", err)
	}

	service.now = func() time.Time {
		return time.Date(2026, time.March, 15, 22, 0, 0, 0, time.UTC)
	}
	second, err := service.ScheduleProcessing(t.Context(), ScheduleRequest{LeagueID: memory.LeagueIDMainStreet})
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}

	if first[0].DispatchID != second[0].DispatchID {
		t.Fatalf("expected identical dedup ids within one bucket: %q vs %q", first[0].DispatchID, second[0].DispatchID)
	}
}

func TestScheduleProcessing_EnqueueFailureRecorded(t *testing.T) {
	queue := &recordingQueue{fail: errors.New("queue unavailable")}
	service, dispatches := newSchedulerFixture(t, queue)

	_, err := service.ScheduleProcessing(t.Context(), ScheduleRequest{LeagueID: memory.LeagueIDMainStreet})
	if err == nil {
		t.Fatalf("expected enqueue error")
	}

	events := dispatches.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 dispatch event, got %d", len(events))
	}
	if events[0].Status != jobscheduler.StatusFailed {
		t.Fatalf("expected failed status, got %s", events[0].Status)
	}
	if events[0].ErrorMessage == "" {
		t.Fatalf("expected error message on failed dispatch")
	}
}

func TestScheduleProcessing_UnknownLeague(t *testing.T) {
	service, _ := newSchedulerFixture(t, &recordingQueue{})

	_, err := service.ScheduleProcessing(t.Context(), ScheduleRequest{LeagueID: "no-such-league"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitizeDedupSegment(t *testing.T) {
	cases := map[string]string{
		"main-street-2026": "main-street-2026",
		"league 9 / west":  "league-9---west",
		"  ":               "unknown",
	}
	for in, want := range cases {
		if got := sanitizeDedupSegment(in); got != want {
			t.Fatalf("sanitizeDedupSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
