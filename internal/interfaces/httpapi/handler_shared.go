package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/waiverwire/internal/domain/jobscheduler"
	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	"github.com/riskibarqy/waiverwire/internal/platform/logging"
	"github.com/riskibarqy/waiverwire/internal/usecase"
)

type Handler struct {
	moveService            *usecase.MoveService
	rosterService          *usecase.RosterService
	waiverService          *usecase.WaiverService
	waiverProcessService   *usecase.WaiverProcessService
	waiverSweepService     *usecase.WaiverSweepService
	waiverSchedulerService *usecase.WaiverSchedulerService
	jobDispatchRepo        jobscheduler.Repository
	logger                 *logging.Logger
	validator              *validator.Validate
}

func NewHandler(
	moveService *usecase.MoveService,
	rosterService *usecase.RosterService,
	waiverService *usecase.WaiverService,
	waiverProcessService *usecase.WaiverProcessService,
	waiverSweepService *usecase.WaiverSweepService,
	waiverSchedulerService *usecase.WaiverSchedulerService,
	jobDispatchRepo jobscheduler.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		moveService:            moveService,
		rosterService:          rosterService,
		waiverService:          waiverService,
		waiverProcessService:   waiverProcessService,
		waiverSweepService:     waiverSweepService,
		waiverSchedulerService: waiverSchedulerService,
		jobDispatchRepo:        jobDispatchRepo,
		logger:                 logger,
		validator:              validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type rosterMoveRequest struct {
	AcquirePlayerID string `json:"acquire_player_id" validate:"required_without=ReleasePlayerID,omitempty,max=100"`
	ReleasePlayerID string `json:"release_player_id" validate:"omitempty,max=100"`
	Kind            string `json:"kind" validate:"omitempty,oneof=acquire trade draft"`
	Note            string `json:"note" validate:"omitempty,max=500"`
}

type submitClaimRequest struct {
	PlayerID     string `json:"player_id" validate:"required,max=100"`
	DropPlayerID string `json:"drop_player_id" validate:"omitempty,max=100"`
}

type internalJobRequest struct {
	LeagueID     string `json:"league_id"`
	DispatchID   string `json:"dispatch_id"`
	DelaySeconds int    `json:"delay_seconds"`
}

type moveResultResponse struct {
	Status         string   `json:"status"`
	Reason         string   `json:"reason,omitempty"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
	OccurredAt     string   `json:"occurred_at"`
}

type teamRosterResponse struct {
	TeamID   string               `json:"team_id"`
	TeamName string               `json:"team_name"`
	Players  []assignmentResponse `json:"players"`
	Lineup   *lineupResponse      `json:"lineup,omitempty"`
}

type assignmentResponse struct {
	PlayerID   string `json:"player_id"`
	AcquiredAt string `json:"acquired_at"`
}

type lineupResponse struct {
	StarterIDs        []string `json:"starter_ids"`
	BenchIDs          []string `json:"bench_ids"`
	InjuredReserveIDs []string `json:"injured_reserve_ids,omitempty"`
}

type transactionResponse struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	UserID     string `json:"user_id,omitempty"`
	PlayerID   string `json:"player_id"`
	Kind       string `json:"kind"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type failedAttemptResponse struct {
	TeamID     string `json:"team_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	PlayerID   string `json:"player_id"`
	Operation  string `json:"operation"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type claimResponse struct {
	ID               string `json:"id"`
	LeagueID         string `json:"league_id"`
	TeamID           string `json:"team_id"`
	PlayerID         string `json:"player_id"`
	DropPlayerID     string `json:"drop_player_id,omitempty"`
	State            string `json:"state"`
	PrioritySnapshot int    `json:"priority_snapshot"`
	FailureReason    string `json:"failure_reason,omitempty"`
	CreatedAt        string `json:"created_at"`
	ProcessedAt      string `json:"processed_at,omitempty"`
}

type priorityResponse struct {
	TeamID    string `json:"team_id"`
	Rank      int    `json:"rank"`
	UpdatedAt string `json:"updated_at"`
}

type windowResponse struct {
	PlayerID  string `json:"player_id"`
	OpenedAt  string `json:"opened_at"`
	ExpiresAt string `json:"expires_at"`
}

func toMoveResultResponse(result roster.MoveResult) moveResultResponse {
	return moveResultResponse{
		Status:         string(result.Status),
		Reason:         result.Reason,
		TransactionIDs: result.TransactionIDs,
		OccurredAt:     result.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func toTeamRosterResponse(item usecase.TeamRoster) teamRosterResponse {
	resp := teamRosterResponse{
		TeamID:   item.Team.ID,
		TeamName: item.Team.Name,
		Players:  make([]assignmentResponse, 0, len(item.Assignments)),
	}
	for _, assignment := range item.Assignments {
		resp.Players = append(resp.Players, assignmentResponse{
			PlayerID:   assignment.PlayerID,
			AcquiredAt: assignment.AcquiredAt.UTC().Format(time.RFC3339),
		})
	}
	if item.HasSlots {
		resp.Lineup = toLineupResponse(item.Slots)
	}
	return resp
}

func toLineupResponse(slots lineup.Slots) *lineupResponse {
	return &lineupResponse{
		StarterIDs:        slots.StarterIDs,
		BenchIDs:          slots.BenchIDs,
		InjuredReserveIDs: slots.InjuredReserveIDs,
	}
}

func toTransactionResponses(items []roster.Transaction) []transactionResponse {
	resp := make([]transactionResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, transactionResponse{
			ID:         item.PublicID,
			TeamID:     item.TeamID,
			UserID:     item.UserID,
			PlayerID:   item.PlayerID,
			Kind:       string(item.Kind),
			Note:       item.Note,
			OccurredAt: item.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func toFailedAttemptResponses(items []roster.FailedAttempt) []failedAttemptResponse {
	resp := make([]failedAttemptResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, failedAttemptResponse{
			TeamID:     item.TeamID,
			UserID:     item.UserID,
			PlayerID:   item.PlayerID,
			Operation:  item.Operation,
			Reason:     item.Reason,
			Detail:     item.Detail,
			OccurredAt: item.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func toClaimResponse(claim waiver.Claim) claimResponse {
	resp := claimResponse{
		ID:               claim.PublicID,
		LeagueID:         claim.LeagueID,
		TeamID:           claim.TeamID,
		PlayerID:         claim.PlayerID,
		DropPlayerID:     claim.DropPlayerID,
		State:            string(claim.State),
		PrioritySnapshot: claim.PrioritySnapshot,
		FailureReason:    claim.FailureReason,
		CreatedAt:        claim.CreatedAt.UTC().Format(time.RFC3339),
	}
	if claim.ProcessedAt != nil {
		resp.ProcessedAt = claim.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toClaimResponses(items []waiver.Claim) []claimResponse {
	resp := make([]claimResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toClaimResponse(item))
	}
	return resp
}

func toPriorityResponses(items []waiver.Priority) []priorityResponse {
	resp := make([]priorityResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, priorityResponse{
			TeamID:    item.TeamID,
			Rank:      item.Rank,
			UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func toWindowResponses(items []waiver.Window) []windowResponse {
	resp := make([]windowResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, windowResponse{
			PlayerID:  item.PlayerID,
			OpenedAt:  item.OpenedAt.UTC().Format(time.RFC3339),
			ExpiresAt: item.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func parseLimitParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", usecase.ErrInvalidInput, raw)
	}
	return limit, nil
}

func splitStatesParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	states := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			states = append(states, part)
		}
	}
	return states
}
