package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/domain/team"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	"github.com/riskibarqy/waiverwire/internal/platform/id"
)

// WaiverService covers the claim lifecycle outside batch processing:
// submission, listing, cancellation, plus priority and window reads.
type WaiverService struct {
	leagues     league.Repository
	memberships team.MembershipRepository
	rosters     roster.Repository
	claims      waiver.ClaimRepository
	priorities  waiver.PriorityRepository
	windows     waiver.WindowRepository
	ids         id.Generator
	now         func() time.Time
}

func NewWaiverService(
	leagues league.Repository,
	memberships team.MembershipRepository,
	rosters roster.Repository,
	claims waiver.ClaimRepository,
	priorities waiver.PriorityRepository,
	windows waiver.WindowRepository,
	ids id.Generator,
) *WaiverService {
	return &WaiverService{
		leagues:     leagues,
		memberships: memberships,
		rosters:     rosters,
		claims:      claims,
		priorities:  priorities,
		windows:     windows,
		ids:         ids,
		now:         time.Now,
	}
}

type ClaimRequest struct {
	LeagueID     string
	PlayerID     string
	DropPlayerID string
}

// SubmitClaim files a pending claim for the caller's team. Ownership of
// the claimed player is not checked here; the batch processor decides
// winners when the window closes.
func (s *WaiverService) SubmitClaim(ctx context.Context, userID string, req ClaimRequest) (waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.SubmitClaim")
	defer span.End()

	userID = strings.TrimSpace(userID)
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.DropPlayerID = strings.TrimSpace(req.DropPlayerID)

	if userID == "" {
		return waiver.Claim{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	_, exists, err := s.leagues.GetByID(ctx, req.LeagueID)
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("load league %s: %w", req.LeagueID, err)
	}
	if req.LeagueID == "" || !exists {
		return waiver.Claim{}, fmt.Errorf("%w: league=%s", ErrNotFound, req.LeagueID)
	}

	membership, hasTeam, err := s.memberships.GetByUserAndLeague(ctx, userID, req.LeagueID)
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("load membership user=%s league=%s: %w", userID, req.LeagueID, err)
	}
	if !hasTeam {
		return waiver.Claim{}, fmt.Errorf("%w: user %s has no team in league %s", ErrInvalidInput, userID, req.LeagueID)
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("generate claim id: %w", err)
	}

	claim := waiver.Claim{
		PublicID:     publicID,
		LeagueID:     req.LeagueID,
		TeamID:       membership.TeamID,
		PlayerID:     req.PlayerID,
		DropPlayerID: req.DropPlayerID,
		State:        waiver.ClaimPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := claim.Validate(); err != nil {
		return waiver.Claim{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if claim.DropPlayerID != "" {
		owned, ok, err := s.rosters.GetAssignment(ctx, claim.LeagueID, claim.DropPlayerID)
		if err != nil {
			return waiver.Claim{}, fmt.Errorf("check drop player %s: %w", claim.DropPlayerID, err)
		}
		if !ok || owned.TeamID != claim.TeamID {
			return waiver.Claim{}, fmt.Errorf("%w: drop player %s is not on your roster", ErrInvalidInput, claim.DropPlayerID)
		}
	}

	// One pending claim per (team, player); resubmitting while the first
	// is still queued is a no-op waiting to confuse the batch.
	pending, err := s.claims.ListByLeague(ctx, claim.LeagueID, []waiver.ClaimState{waiver.ClaimPending}, 0)
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("list pending claims league=%s: %w", claim.LeagueID, err)
	}
	for _, existing := range pending {
		if existing.TeamID == claim.TeamID && existing.PlayerID == claim.PlayerID {
			return waiver.Claim{}, fmt.Errorf("%w: a pending claim for player %s already exists", ErrInvalidInput, claim.PlayerID)
		}
	}

	submitted, err := s.claims.Submit(ctx, claim)
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("submit claim league=%s player=%s: %w", claim.LeagueID, claim.PlayerID, err)
	}
	return submitted, nil
}

// ListClaims lists league claims, optionally filtered to the given
// states.
func (s *WaiverService) ListClaims(ctx context.Context, leagueID string, rawStates []string, limit int) ([]waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ListClaims")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	states := make([]waiver.ClaimState, 0, len(rawStates))
	for _, raw := range rawStates {
		raw = strings.TrimSpace(strings.ToLower(raw))
		if raw == "" {
			continue
		}
		switch state := waiver.ClaimState(raw); state {
		case waiver.ClaimPending, waiver.ClaimSuccessful, waiver.ClaimFailed, waiver.ClaimCancelled:
			states = append(states, state)
		default:
			return nil, fmt.Errorf("%w: unknown claim state %q", ErrInvalidInput, raw)
		}
	}

	items, err := s.claims.ListByLeague(ctx, leagueID, states, limit)
	if err != nil {
		return nil, fmt.Errorf("list claims league=%s: %w", leagueID, err)
	}
	return items, nil
}

// CancelClaim withdraws the caller's pending claim. A claim that has
// already been processed stays as is and the caller gets ErrInvalidInput.
func (s *WaiverService) CancelClaim(ctx context.Context, userID, claimPublicID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.CancelClaim")
	defer span.End()

	userID = strings.TrimSpace(userID)
	claimPublicID = strings.TrimSpace(claimPublicID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if claimPublicID == "" {
		return fmt.Errorf("%w: claim id is required", ErrInvalidInput)
	}

	claim, exists, err := s.claims.GetByPublicID(ctx, claimPublicID)
	if err != nil {
		return fmt.Errorf("load claim %s: %w", claimPublicID, err)
	}
	if !exists {
		return fmt.Errorf("%w: claim=%s", ErrNotFound, claimPublicID)
	}

	membership, hasTeam, err := s.memberships.GetByUserAndLeague(ctx, userID, claim.LeagueID)
	if err != nil {
		return fmt.Errorf("load membership user=%s league=%s: %w", userID, claim.LeagueID, err)
	}
	if !hasTeam || membership.TeamID != claim.TeamID {
		return fmt.Errorf("%w: claim %s does not belong to your team", ErrUnauthorized, claimPublicID)
	}

	cancelled, err := s.claims.Cancel(ctx, claimPublicID, claim.TeamID)
	if err != nil {
		return fmt.Errorf("cancel claim %s: %w", claimPublicID, err)
	}
	if !cancelled {
		return fmt.Errorf("%w: claim %s is no longer pending", ErrInvalidInput, claimPublicID)
	}
	return nil
}

func (s *WaiverService) ListPriorities(ctx context.Context, leagueID string) ([]waiver.Priority, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ListPriorities")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	items, err := s.priorities.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list priorities league=%s: %w", leagueID, err)
	}
	return items, nil
}

func (s *WaiverService) ListOpenWindows(ctx context.Context, leagueID string) ([]waiver.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.ListOpenWindows")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	items, err := s.windows.ListOpen(ctx, leagueID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list open windows league=%s: %w", leagueID, err)
	}
	return items, nil
}
