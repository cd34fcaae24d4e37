package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
	"github.com/riskibarqy/waiverwire/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type processReportResponse struct {
	LeagueID       string `json:"league_id"`
	Skipped        bool   `json:"skipped"`
	WindowsCleared int    `json:"windows_cleared"`
	Processed      int    `json:"processed"`
	Awarded        int    `json:"awarded"`
	Failed         int    `json:"failed"`
}

type sweepReportResponse struct {
	StartedAt string             `json:"started_at"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Rows      []sweepRowResponse `json:"rows"`
}

type sweepRowResponse struct {
	LeagueID     string `json:"league_id"`
	Skipped      bool   `json:"skipped,omitempty"`
	Cleared      int    `json:"cleared"`
	Processed    int    `json:"processed"`
	Awarded      int    `json:"awarded"`
	FailedClaims int    `json:"failed_claims"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

type scheduledJobResponse struct {
	LeagueID   string `json:"league_id"`
	DispatchID string `json:"dispatch_id"`
	RunAt      string `json:"run_at"`
}

func (h *Handler) RunProcessWaiversJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessWaiversJob")
	defer span.End()

	if h.waiverProcessService == nil {
		writeError(ctx, w, fmt.Errorf("%w: waiver processor is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.waiverProcessService.ProcessClaims(ctx, req.LeagueID)
	if err != nil {
		h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
			JobName:      "process-waivers",
			JobPath:      "/v1/internal/jobs/process-waivers",
			LeagueID:     req.LeagueID,
			Status:       jobscheduler.StatusFailed,
			Payload:      buildInternalJobPayload(req),
			ErrorMessage: err.Error(),
			OccurredAt:   time.Now().UTC(),
		})
		h.logger.WarnContext(ctx, "run process waivers job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
		JobName:    "process-waivers",
		JobPath:    "/v1/internal/jobs/process-waivers",
		LeagueID:   req.LeagueID,
		Status:     jobscheduler.StatusCompleted,
		Payload:    buildInternalJobPayload(req),
		OccurredAt: time.Now().UTC(),
	})

	writeSuccess(ctx, w, http.StatusOK, processReportResponse{
		LeagueID:       report.LeagueID,
		Skipped:        report.Skipped,
		WindowsCleared: report.WindowsCleared,
		Processed:      report.Processed,
		Awarded:        report.Awarded,
		Failed:         report.Failed,
	})
}

func (h *Handler) RunWaiverSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWaiverSweepJob")
	defer span.End()

	if h.waiverSweepService == nil {
		writeError(ctx, w, fmt.Errorf("%w: waiver sweeper is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.waiverSweepService.Sweep(ctx, req.LeagueID)
	if err != nil {
		h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
			JobName:      "waiver-sweep",
			JobPath:      "/v1/internal/jobs/waiver-sweep",
			LeagueID:     req.LeagueID,
			Status:       jobscheduler.StatusFailed,
			Payload:      buildInternalJobPayload(req),
			ErrorMessage: err.Error(),
			OccurredAt:   time.Now().UTC(),
		})
		h.logger.WarnContext(ctx, "run waiver sweep job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
		JobName:    "waiver-sweep",
		JobPath:    "/v1/internal/jobs/waiver-sweep",
		LeagueID:   req.LeagueID,
		Status:     jobscheduler.StatusCompleted,
		Payload:    buildInternalJobPayload(req),
		OccurredAt: time.Now().UTC(),
	})

	resp := sweepReportResponse{
		StartedAt: report.StartedAt.UTC().Format(time.RFC3339),
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Rows:      make([]sweepRowResponse, 0, len(report.Rows)),
	}
	for _, row := range report.Rows {
		resp.Rows = append(resp.Rows, sweepRowResponse{
			LeagueID:     row.LeagueID,
			Skipped:      row.Skipped,
			Cleared:      row.Cleared,
			Processed:    row.Processed,
			Awarded:      row.Awarded,
			FailedClaims: row.FailedClaims,
			Status:       row.Status,
			ErrorMessage: row.ErrorMessage,
			DurationMs:   row.DurationMs,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) RunScheduleWaiversJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduleWaiversJob")
	defer span.End()

	if h.waiverSchedulerService == nil {
		writeError(ctx, w, fmt.Errorf("%w: waiver scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.DelaySeconds < 0 {
		writeError(ctx, w, fmt.Errorf("%w: delay_seconds must not be negative", usecase.ErrInvalidInput))
		return
	}

	jobs, err := h.waiverSchedulerService.ScheduleProcessing(ctx, usecase.ScheduleRequest{
		LeagueID: req.LeagueID,
		Delay:    time.Duration(req.DelaySeconds) * time.Second,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run schedule waivers job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := make([]scheduledJobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, scheduledJobResponse{
			LeagueID:   job.LeagueID,
			DispatchID: job.DispatchID,
			RunAt:      job.RunAt.UTC().Format(time.RFC3339),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func decodeInternalJobRequest(r *http.Request) (internalJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req internalJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return internalJobRequest{}, nil
		}
		return internalJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func (h *Handler) recordInternalJobDispatch(ctx context.Context, req internalJobRequest, event jobscheduler.DispatchEvent) {
	if h.jobDispatchRepo == nil {
		return
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID(event.JobName, req.LeagueID, event.OccurredAt)
	}
	event.DispatchID = dispatchID

	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID

	if err := h.jobDispatchRepo.UpsertEvent(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "record internal job dispatch failed",
			"dispatch_id", event.DispatchID,
			"job_name", event.JobName,
			"status", event.Status,
			"error", err,
		)
	}
}

func buildInternalJobPayload(req internalJobRequest) map[string]any {
	payload := map[string]any{
		"league_id": req.LeagueID,
	}
	if strings.TrimSpace(req.DispatchID) != "" {
		payload["dispatch_id"] = req.DispatchID
	}
	if req.DelaySeconds > 0 {
		payload["delay_seconds"] = req.DelaySeconds
	}
	return payload
}

func buildManualDispatchID(jobName, leagueID string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	leagueID = sanitizeDispatchPart(leagueID)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + leagueID + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
