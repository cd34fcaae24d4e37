package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/team"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const listTeamsQuery = `
SELECT id, league_id, name, owner_user_id
FROM teams
WHERE league_id = $1
ORDER BY name, id`

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, listTeamsQuery, leagueID); err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}

	items := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const getTeamQuery = `
SELECT id, league_id, name, owner_user_id
FROM teams
WHERE league_id = $1 AND id = $2`

func (r *TeamRepository) GetByID(ctx context.Context, leagueID, teamID string) (team.Team, bool, error) {
	var row teamRow
	if err := r.db.GetContext(ctx, &row, getTeamQuery, leagueID, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team league=%s team=%s: %w", leagueID, teamID, err)
	}
	return row.toDomain(), true, nil
}

type MembershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const getMembershipQuery = `
SELECT user_id, league_id, team_id, created_at
FROM team_memberships
WHERE user_id = $1 AND league_id = $2`

func (r *MembershipRepository) GetByUserAndLeague(ctx context.Context, userID, leagueID string) (team.Membership, bool, error) {
	var row membershipRow
	if err := r.db.GetContext(ctx, &row, getMembershipQuery, userID, leagueID); err != nil {
		if isNotFound(err) {
			return team.Membership{}, false, nil
		}
		return team.Membership{}, false, fmt.Errorf("get membership user=%s league=%s: %w", userID, leagueID, err)
	}
	return row.toDomain(), true, nil
}

const listMembershipsQuery = `
SELECT user_id, league_id, team_id, created_at
FROM team_memberships
WHERE league_id = $1
ORDER BY created_at, user_id`

func (r *MembershipRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Membership, error) {
	var rows []membershipRow
	if err := r.db.SelectContext(ctx, &rows, listMembershipsQuery, leagueID); err != nil {
		return nil, fmt.Errorf("list memberships league=%s: %w", leagueID, err)
	}

	items := make([]team.Membership, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}
