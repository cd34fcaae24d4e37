package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/waiverwire/internal/usecase"
)

func (h *Handler) GetMyRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	item, err := h.rosterService.GetTeamRoster(ctx, principal.UserID, r.PathValue("leagueID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toTeamRosterResponse(item))
}

func (h *Handler) ExecuteRosterMove(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExecuteRosterMove")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req rosterMoveRequest
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.moveService.ExecuteMove(ctx, principal.UserID, usecase.MoveRequest{
		LeagueID:        r.PathValue("leagueID"),
		AcquirePlayerID: req.AcquirePlayerID,
		ReleasePlayerID: req.ReleasePlayerID,
		Kind:            req.Kind,
		Note:            req.Note,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Status.Failed() {
		// The move was rejected by a roster rule; the result body carries
		// the status and reason, mirrored in the failure trail.
		status = http.StatusConflict
	}
	writeSuccess(ctx, w, status, toMoveResultResponse(result))
}

func (h *Handler) ListTransactionsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransactionsByLeague")
	defer span.End()

	limit, err := parseLimitParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.rosterService.ListTransactions(ctx, r.PathValue("leagueID"), r.URL.Query().Get("team_id"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toTransactionResponses(items))
}

func (h *Handler) ListFailedAttemptsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFailedAttemptsByLeague")
	defer span.End()

	limit, err := parseLimitParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.rosterService.ListFailedAttempts(ctx, r.PathValue("leagueID"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toFailedAttemptResponses(items))
}
