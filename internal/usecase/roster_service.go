package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/domain/team"
)

// RosterService serves the read side: current ownership, the lineup
// projection, and both audit trails.
type RosterService struct {
	leagues      league.Repository
	teams        team.Repository
	memberships  team.MembershipRepository
	rosters      roster.Repository
	transactions roster.TransactionRepository
	failures     roster.FailedAttemptRepository
	lineups      lineup.Repository
}

func NewRosterService(
	leagues league.Repository,
	teams team.Repository,
	memberships team.MembershipRepository,
	rosters roster.Repository,
	transactions roster.TransactionRepository,
	failures roster.FailedAttemptRepository,
	lineups lineup.Repository,
) *RosterService {
	return &RosterService{
		leagues:      leagues,
		teams:        teams,
		memberships:  memberships,
		rosters:      rosters,
		transactions: transactions,
		failures:     failures,
		lineups:      lineups,
	}
}

type TeamRoster struct {
	Team        team.Team
	Assignments []roster.Assignment
	Slots       lineup.Slots
	HasSlots    bool
}

// GetTeamRoster returns the caller's roster in the league.
func (s *RosterService) GetTeamRoster(ctx context.Context, userID, leagueID string) (TeamRoster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetTeamRoster")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" {
		return TeamRoster{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return TeamRoster{}, err
	}

	membership, hasTeam, err := s.memberships.GetByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return TeamRoster{}, fmt.Errorf("load membership user=%s league=%s: %w", userID, leagueID, err)
	}
	if !hasTeam {
		return TeamRoster{}, fmt.Errorf("%w: user %s has no team in league %s", ErrNotFound, userID, leagueID)
	}

	owned, exists, err := s.teams.GetByID(ctx, leagueID, membership.TeamID)
	if err != nil {
		return TeamRoster{}, fmt.Errorf("load team league=%s team=%s: %w", leagueID, membership.TeamID, err)
	}
	if !exists {
		return TeamRoster{}, fmt.Errorf("%w: team=%s", ErrNotFound, membership.TeamID)
	}

	assignments, err := s.rosters.ListByTeam(ctx, leagueID, membership.TeamID)
	if err != nil {
		return TeamRoster{}, fmt.Errorf("list roster league=%s team=%s: %w", leagueID, membership.TeamID, err)
	}

	slots, hasSlots, err := s.lineups.GetByTeam(ctx, leagueID, membership.TeamID)
	if err != nil {
		return TeamRoster{}, fmt.Errorf("load lineup slots league=%s team=%s: %w", leagueID, membership.TeamID, err)
	}

	return TeamRoster{
		Team:        owned,
		Assignments: assignments,
		Slots:       slots,
		HasSlots:    hasSlots,
	}, nil
}

// ListTransactions lists the audit trail for a league, optionally
// narrowed to one team.
func (s *RosterService) ListTransactions(ctx context.Context, leagueID, teamID string, limit int) ([]roster.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListTransactions")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	teamID = strings.TrimSpace(teamID)
	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	if teamID != "" {
		items, err := s.transactions.ListByTeam(ctx, leagueID, teamID, limit)
		if err != nil {
			return nil, fmt.Errorf("list transactions league=%s team=%s: %w", leagueID, teamID, err)
		}
		return items, nil
	}

	items, err := s.transactions.ListByLeague(ctx, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions league=%s: %w", leagueID, err)
	}
	return items, nil
}

func (s *RosterService) ListFailedAttempts(ctx context.Context, leagueID string, limit int) ([]roster.FailedAttempt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListFailedAttempts")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	items, err := s.failures.ListByLeague(ctx, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed attempts league=%s: %w", leagueID, err)
	}
	return items, nil
}

func (s *RosterService) ensureLeague(ctx context.Context, leagueID string) error {
	if leagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	_, exists, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("load league %s: %w", leagueID, err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return nil
}
