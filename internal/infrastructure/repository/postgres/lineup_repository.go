package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

const getLineupSlotsQuery = `
SELECT team_id, league_id, starter_ids, bench_ids, injured_reserve_ids, updated_at
FROM lineup_slots
WHERE league_id = $1 AND team_id = $2`

func (r *LineupRepository) GetByTeam(ctx context.Context, leagueID, teamID string) (lineup.Slots, bool, error) {
	var row lineupSlotsRow
	if err := r.db.GetContext(ctx, &row, getLineupSlotsQuery, leagueID, teamID); err != nil {
		if isNotFound(err) {
			return lineup.Slots{}, false, nil
		}
		return lineup.Slots{}, false, fmt.Errorf("get lineup slots league=%s team=%s: %w", leagueID, teamID, err)
	}
	return row.toDomain(), true, nil
}

const listLineupSlotsQuery = `
SELECT team_id, league_id, starter_ids, bench_ids, injured_reserve_ids, updated_at
FROM lineup_slots
WHERE league_id = $1
ORDER BY team_id`

func (r *LineupRepository) ListByLeague(ctx context.Context, leagueID string) ([]lineup.Slots, error) {
	var rows []lineupSlotsRow
	if err := r.db.SelectContext(ctx, &rows, listLineupSlotsQuery, leagueID); err != nil {
		return nil, fmt.Errorf("list lineup slots league=%s: %w", leagueID, err)
	}

	items := make([]lineup.Slots, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const upsertLineupSlotsQuery = `
INSERT INTO lineup_slots (team_id, league_id, starter_ids, bench_ids, injured_reserve_ids, updated_at)
VALUES (:team_id, :league_id, :starter_ids, :bench_ids, :injured_reserve_ids, :updated_at)
ON CONFLICT (team_id, league_id) DO UPDATE SET
    starter_ids = EXCLUDED.starter_ids,
    bench_ids = EXCLUDED.bench_ids,
    injured_reserve_ids = EXCLUDED.injured_reserve_ids,
    updated_at = EXCLUDED.updated_at`

func (r *LineupRepository) Upsert(ctx context.Context, slots lineup.Slots) error {
	updatedAt := slots.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query, args, err := sqlx.Named(upsertLineupSlotsQuery, map[string]any{
		"team_id":             slots.TeamID,
		"league_id":           slots.LeagueID,
		"starter_ids":         pq.StringArray(slots.StarterIDs),
		"bench_ids":           pq.StringArray(slots.BenchIDs),
		"injured_reserve_ids": pq.StringArray(slots.InjuredReserveIDs),
		"updated_at":          updatedAt,
	})
	if err != nil {
		return fmt.Errorf("build lineup upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert lineup slots league=%s team=%s: %w", slots.LeagueID, slots.TeamID, err)
	}
	return nil
}
