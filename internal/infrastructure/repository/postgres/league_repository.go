package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

const listLeaguesQuery = `
SELECT id, name, season, roster_cap, waiver_policy, waiver_window_hours, is_default
FROM leagues
ORDER BY id`

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	var rows []leagueRow
	if err := r.db.SelectContext(ctx, &rows, listLeaguesQuery); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	items := make([]league.League, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const getLeagueQuery = `
SELECT id, name, season, roster_cap, waiver_policy, waiver_window_hours, is_default
FROM leagues
WHERE id = $1`

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	var row leagueRow
	if err := r.db.GetContext(ctx, &row, getLeagueQuery, leagueID); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league %s: %w", leagueID, err)
	}
	return row.toDomain(), true, nil
}
