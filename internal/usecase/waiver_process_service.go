package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	"github.com/riskibarqy/waiverwire/internal/platform/id"
	"github.com/riskibarqy/waiverwire/internal/platform/logging"
)

const (
	defaultClaimBatchSize = 100
	operationWaiverClaim  = "waiver_claim"
)

// WaiverProcessService runs the claim batch for one league: claims are
// awarded in priority order, each through its own move transaction, and
// the queue rotates after every rotating-policy win. A per-league
// advisory lock keeps concurrent runs from double-awarding.
type WaiverProcessService struct {
	leagues    league.Repository
	claims     waiver.ClaimRepository
	priorities waiver.PriorityRepository
	windows    waiver.WindowRepository
	rosters    roster.Repository
	failures   roster.FailedAttemptRepository
	ids        id.Generator
	logger     *logging.Logger
	batchSize  int
	now        func() time.Time
}

func NewWaiverProcessService(
	leagues league.Repository,
	claims waiver.ClaimRepository,
	priorities waiver.PriorityRepository,
	windows waiver.WindowRepository,
	rosters roster.Repository,
	failures roster.FailedAttemptRepository,
	ids id.Generator,
	logger *logging.Logger,
	batchSize int,
) *WaiverProcessService {
	if batchSize <= 0 {
		batchSize = defaultClaimBatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WaiverProcessService{
		leagues:    leagues,
		claims:     claims,
		priorities: priorities,
		windows:    windows,
		rosters:    rosters,
		failures:   failures,
		ids:        ids,
		logger:     logger,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

type ProcessReport struct {
	LeagueID       string
	Skipped        bool
	WindowsCleared int
	Processed      int
	Awarded        int
	Failed         int
}

// ProcessClaims awards up to one batch of pending claims. Skipped is set
// when another processor already holds the league lock; that run is not
// an error. An unexpected error on one claim fails that claim and the
// run continues with the next one; only failures before the batch is in
// hand abort the run.
func (s *WaiverProcessService) ProcessClaims(ctx context.Context, leagueID string) (ProcessReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverProcessService.ProcessClaims")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return ProcessReport{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	current, exists, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return ProcessReport{}, fmt.Errorf("load league %s: %w", leagueID, err)
	}
	if !exists {
		return ProcessReport{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	policy, err := waiver.ParsePolicy(string(current.WaiverPolicy))
	if err != nil {
		return ProcessReport{}, fmt.Errorf("league %s: %w", leagueID, err)
	}
	if policy == waiver.PolicyBudgetBid {
		return ProcessReport{}, fmt.Errorf("%w: waiver policy budget_bid is not processable yet", ErrInvalidInput)
	}

	release, acquired, err := s.claims.AcquireLeagueLock(ctx, leagueID)
	if err != nil {
		return ProcessReport{}, fmt.Errorf("acquire league lock %s: %w", leagueID, err)
	}
	if !acquired {
		return ProcessReport{LeagueID: leagueID, Skipped: true}, nil
	}
	defer release()

	report := ProcessReport{LeagueID: leagueID}
	now := s.now().UTC()

	// Expired windows close before awarding so the window reads during
	// the run are current.
	cleared, err := s.windows.ClearExpired(ctx, leagueID, now)
	if err != nil {
		return report, fmt.Errorf("clear expired windows league=%s: %w", leagueID, err)
	}
	report.WindowsCleared = cleared

	batch, err := s.claims.ListPendingOrdered(ctx, leagueID, policy, s.batchSize)
	if err != nil {
		return report, fmt.Errorf("list pending claims league=%s: %w", leagueID, err)
	}

	// Claims are processed regardless of any open window on the target
	// player; the window gates direct moves only.
	for _, claim := range batch {
		report.Processed++
		if err := s.processClaim(ctx, current, policy, claim, now, &report); err != nil {
			s.logger.WarnContext(ctx, "waiver claim processing failed",
				"league_id", leagueID,
				"claim_id", claim.PublicID,
				"error", err,
			)
			s.rejectClaim(ctx, claim, string(roster.MoveError), err.Error(), now, &report)
		}
	}

	return report, nil
}

func (s *WaiverProcessService) processClaim(ctx context.Context, current league.League, policy waiver.Policy, claim waiver.Claim, now time.Time, report *ProcessReport) error {
	if _, owned, err := s.rosters.GetAssignment(ctx, claim.LeagueID, claim.PlayerID); err != nil {
		return fmt.Errorf("check ownership claim=%s: %w", claim.PublicID, err)
	} else if owned {
		s.rejectClaim(ctx, claim, string(roster.MoveDuplicatePlayer),
			fmt.Sprintf("player %s is already owned", claim.PlayerID), now, report)
		return nil
	}

	cmd := roster.MoveCommand{
		LeagueID:        claim.LeagueID,
		TeamID:          claim.TeamID,
		AcquirePlayerID: claim.PlayerID,
		ReleasePlayerID: claim.DropPlayerID,
		RosterCap:       current.RosterCap,
		AcquireKind:     roster.KindAcquire,
		Note:            "waiver claim " + claim.PublicID,
	}
	var err error
	if cmd.AcquireTxPublicID, err = s.ids.NewID(); err != nil {
		return fmt.Errorf("generate transaction id: %w", err)
	}
	if claim.DropPlayerID != "" {
		if cmd.ReleaseTxPublicID, err = s.ids.NewID(); err != nil {
			return fmt.Errorf("generate transaction id: %w", err)
		}
	}

	result, err := s.rosters.ExecuteMove(ctx, cmd)
	if err != nil {
		return fmt.Errorf("execute claim move claim=%s: %w", claim.PublicID, err)
	}

	if result.Status.Failed() {
		s.rejectClaim(ctx, claim, string(result.Status), result.Reason, now, report)
		return nil
	}

	if _, err := s.windows.Clear(ctx, claim.LeagueID, claim.PlayerID, now); err != nil {
		return fmt.Errorf("clear window claim=%s: %w", claim.PublicID, err)
	}

	// The dropped player re-enters waivers like any other release.
	if claim.DropPlayerID != "" {
		if _, err := s.windows.Open(ctx, claim.LeagueID, claim.DropPlayerID, now, now.Add(current.WaiverWindow)); err != nil {
			return fmt.Errorf("open window for dropped player claim=%s: %w", claim.PublicID, err)
		}
	}

	if policy == waiver.PolicyRotating {
		if err := s.priorities.RotateToBack(ctx, claim.LeagueID, claim.TeamID); err != nil {
			return fmt.Errorf("rotate priority claim=%s: %w", claim.PublicID, err)
		}
	}

	if err := s.claims.Resolve(ctx, claim.ID, waiver.ClaimSuccessful, claim.PrioritySnapshot, "", now); err != nil {
		return fmt.Errorf("resolve claim %s: %w", claim.PublicID, err)
	}
	report.Awarded++
	return nil
}

// rejectClaim marks the claim failed and records the rejection in the
// failure trail. Bookkeeping trouble here is logged, not fatal: the
// batch keeps moving.
func (s *WaiverProcessService) rejectClaim(ctx context.Context, claim waiver.Claim, category, detail string, now time.Time, report *ProcessReport) {
	if err := s.claims.Resolve(ctx, claim.ID, waiver.ClaimFailed, claim.PrioritySnapshot, detail, now); err != nil {
		s.logger.WarnContext(ctx, "resolve failed claim",
			"claim_id", claim.PublicID,
			"error", err,
		)
	}

	attempt := roster.FailedAttempt{
		LeagueID:   claim.LeagueID,
		TeamID:     claim.TeamID,
		PlayerID:   claim.PlayerID,
		Operation:  operationWaiverClaim,
		Reason:     category,
		Detail:     detail,
		OccurredAt: now,
	}
	if err := s.failures.Record(ctx, attempt); err != nil {
		s.logger.WarnContext(ctx, "record failed waiver attempt",
			"claim_id", claim.PublicID,
			"error", err,
		)
	}
	report.Failed++
}
