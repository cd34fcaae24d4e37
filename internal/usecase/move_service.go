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

// MoveService executes roster moves: the only write path for player
// ownership. A move releases a player, acquires a player, or swaps both
// in one atomic step. Rejected moves land in the failure trail.
type MoveService struct {
	leagues     league.Repository
	memberships team.MembershipRepository
	rosters     roster.Repository
	windows     waiver.WindowRepository
	failures    roster.FailedAttemptRepository
	ids         id.Generator
	now         func() time.Time
}

func NewMoveService(
	leagues league.Repository,
	memberships team.MembershipRepository,
	rosters roster.Repository,
	windows waiver.WindowRepository,
	failures roster.FailedAttemptRepository,
	ids id.Generator,
) *MoveService {
	return &MoveService{
		leagues:     leagues,
		memberships: memberships,
		rosters:     rosters,
		windows:     windows,
		failures:    failures,
		ids:         ids,
		now:         time.Now,
	}
}

type MoveRequest struct {
	LeagueID        string
	AcquirePlayerID string
	ReleasePlayerID string
	Kind            string
	Note            string
}

const operationMove = "roster_move"

// ExecuteMove resolves the caller's team and runs the move. Domain
// rejections come back as a failed MoveResult with a nil error; only
// infrastructure trouble produces an error.
func (s *MoveService) ExecuteMove(ctx context.Context, userID string, req MoveRequest) (roster.MoveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MoveService.ExecuteMove")
	defer span.End()

	userID = strings.TrimSpace(userID)
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	req.AcquirePlayerID = strings.TrimSpace(req.AcquirePlayerID)
	req.ReleasePlayerID = strings.TrimSpace(req.ReleasePlayerID)

	if userID == "" {
		return roster.MoveResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.LeagueID == "" {
		return roster.MoveResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if req.AcquirePlayerID == "" && req.ReleasePlayerID == "" {
		return roster.MoveResult{}, fmt.Errorf("%w: move needs a player to acquire or release", ErrInvalidInput)
	}
	if req.AcquirePlayerID != "" && req.AcquirePlayerID == req.ReleasePlayerID {
		return roster.MoveResult{}, fmt.Errorf("%w: acquire and release players must differ", ErrInvalidInput)
	}

	kind := roster.KindAcquire
	if strings.TrimSpace(req.Kind) != "" {
		parsed, err := roster.ParseTransactionKind(req.Kind)
		if err != nil {
			return roster.MoveResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if parsed == roster.KindRelease {
			return roster.MoveResult{}, fmt.Errorf("%w: kind release is implied by the release player", ErrInvalidInput)
		}
		kind = parsed
	}

	current, exists, err := s.leagues.GetByID(ctx, req.LeagueID)
	if err != nil {
		return roster.MoveResult{}, fmt.Errorf("load league %s: %w", req.LeagueID, err)
	}
	if !exists {
		return roster.MoveResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, req.LeagueID)
	}

	now := s.now().UTC()

	membership, hasTeam, err := s.memberships.GetByUserAndLeague(ctx, userID, req.LeagueID)
	if err != nil {
		return roster.MoveResult{}, fmt.Errorf("load membership user=%s league=%s: %w", userID, req.LeagueID, err)
	}
	if !hasTeam {
		result := roster.MoveResult{
			Status:     roster.MoveNoTeam,
			Reason:     fmt.Sprintf("user %s has no team in league %s", userID, req.LeagueID),
			OccurredAt: now,
		}
		if err := s.recordFailure(ctx, req, userID, "", result, now); err != nil {
			return roster.MoveResult{}, err
		}
		return result, nil
	}

	// Direct acquisition of a player still inside their waiver window is
	// refused; the waiver claim path is the only way in.
	if req.AcquirePlayerID != "" {
		window, open, err := s.windows.Get(ctx, req.LeagueID, req.AcquirePlayerID, now)
		if err != nil {
			return roster.MoveResult{}, fmt.Errorf("check waiver window player=%s: %w", req.AcquirePlayerID, err)
		}
		if open {
			result := roster.MoveResult{
				Status:     roster.MoveError,
				Reason:     fmt.Sprintf("player %s is on waivers until %s", req.AcquirePlayerID, window.ExpiresAt.Format(time.RFC3339)),
				OccurredAt: now,
			}
			if err := s.recordFailure(ctx, req, userID, membership.TeamID, result, now); err != nil {
				return roster.MoveResult{}, err
			}
			return result, nil
		}
	}

	cmd := roster.MoveCommand{
		LeagueID:        req.LeagueID,
		TeamID:          membership.TeamID,
		UserID:          userID,
		AcquirePlayerID: req.AcquirePlayerID,
		ReleasePlayerID: req.ReleasePlayerID,
		RosterCap:       current.RosterCap,
		AcquireKind:     kind,
		Note:            strings.TrimSpace(req.Note),
	}
	if req.AcquirePlayerID != "" {
		if cmd.AcquireTxPublicID, err = s.ids.NewID(); err != nil {
			return roster.MoveResult{}, fmt.Errorf("generate transaction id: %w", err)
		}
	}
	if req.ReleasePlayerID != "" {
		if cmd.ReleaseTxPublicID, err = s.ids.NewID(); err != nil {
			return roster.MoveResult{}, fmt.Errorf("generate transaction id: %w", err)
		}
	}

	result, err := s.rosters.ExecuteMove(ctx, cmd)
	if err != nil {
		return roster.MoveResult{}, fmt.Errorf("execute move league=%s team=%s: %w", req.LeagueID, membership.TeamID, err)
	}

	if result.Status.Failed() {
		if err := s.recordFailure(ctx, req, userID, membership.TeamID, result, now); err != nil {
			return roster.MoveResult{}, err
		}
		return result, nil
	}

	// A released player enters waivers for the league's window before
	// anyone may pick them up directly.
	if req.ReleasePlayerID != "" {
		if _, err := s.windows.Open(ctx, req.LeagueID, req.ReleasePlayerID, now, now.Add(current.WaiverWindow)); err != nil {
			return roster.MoveResult{}, fmt.Errorf("open waiver window player=%s: %w", req.ReleasePlayerID, err)
		}
	}

	return result, nil
}

func (s *MoveService) recordFailure(ctx context.Context, req MoveRequest, userID, teamID string, result roster.MoveResult, now time.Time) error {
	playerID := req.AcquirePlayerID
	if playerID == "" {
		playerID = req.ReleasePlayerID
	}

	attempt := roster.FailedAttempt{
		LeagueID:   req.LeagueID,
		TeamID:     teamID,
		UserID:     userID,
		PlayerID:   playerID,
		Operation:  operationMove,
		Reason:     string(result.Status),
		Detail:     result.Reason,
		OccurredAt: now,
	}
	if err := s.failures.Record(ctx, attempt); err != nil {
		return fmt.Errorf("record failed attempt league=%s player=%s: %w", req.LeagueID, playerID, err)
	}
	return nil
}
