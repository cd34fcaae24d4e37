package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

type WaiverPriorityRepository struct {
	db *sqlx.DB
}

func NewWaiverPriorityRepository(db *sqlx.DB) *WaiverPriorityRepository {
	return &WaiverPriorityRepository{db: db}
}

const listPrioritiesQuery = `
SELECT league_id, team_id, rank, updated_at
FROM waiver_priorities
WHERE league_id = $1
ORDER BY rank`

func (r *WaiverPriorityRepository) ListByLeague(ctx context.Context, leagueID string) ([]waiver.Priority, error) {
	var rows []priorityRow
	if err := r.db.SelectContext(ctx, &rows, listPrioritiesQuery, leagueID); err != nil {
		return nil, fmt.Errorf("list waiver priorities league=%s: %w", leagueID, err)
	}

	items := make([]waiver.Priority, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const getRankQuery = `
SELECT rank
FROM waiver_priorities
WHERE league_id = $1 AND team_id = $2`

func (r *WaiverPriorityRepository) GetRank(ctx context.Context, leagueID, teamID string) (int, bool, error) {
	var rank int
	if err := r.db.GetContext(ctx, &rank, getRankQuery, leagueID, teamID); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get waiver rank league=%s team=%s: %w", leagueID, teamID, err)
	}
	return rank, true, nil
}

const lockCurrentRankQuery = `
SELECT rank
FROM waiver_priorities
WHERE league_id = $1 AND team_id = $2
FOR UPDATE`

const maxRankQuery = `
SELECT COALESCE(MAX(rank), 0)
FROM waiver_priorities
WHERE league_id = $1`

const shiftRanksQuery = `
UPDATE waiver_priorities
SET rank = rank - 1, updated_at = $3
WHERE league_id = $1 AND rank > $2`

const moveToBackQuery = `
UPDATE waiver_priorities
SET rank = $3, updated_at = $4
WHERE league_id = $1 AND team_id = $2`

// RotateToBack sends the team to the last rank and closes the gap it
// left. The rank uniqueness constraint is deferred for the duration of
// the transaction because ranks pass through each other mid-shift.
func (r *WaiverPriorityRepository) RotateToBack(ctx context.Context, leagueID, teamID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SET CONSTRAINTS waiver_priorities_rank_unique DEFERRED"); err != nil {
		return fmt.Errorf("defer rank constraint: %w", err)
	}

	var current int
	if err := tx.GetContext(ctx, &current, lockCurrentRankQuery, leagueID, teamID); err != nil {
		if isNotFound(err) {
			// Team carries no priority row; nothing to rotate.
			return nil
		}
		return fmt.Errorf("lock current rank league=%s team=%s: %w", leagueID, teamID, err)
	}

	var max int
	if err := tx.GetContext(ctx, &max, maxRankQuery, leagueID); err != nil {
		return fmt.Errorf("max rank league=%s: %w", leagueID, err)
	}
	if current == max {
		return tx.Commit()
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, shiftRanksQuery, leagueID, current, now); err != nil {
		return fmt.Errorf("shift ranks league=%s: %w", leagueID, err)
	}
	if _, err := tx.ExecContext(ctx, moveToBackQuery, leagueID, teamID, max, now); err != nil {
		return fmt.Errorf("move team to back league=%s team=%s: %w", leagueID, teamID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotate tx: %w", err)
	}
	return nil
}

const seedPriorityQuery = `
INSERT INTO waiver_priorities (league_id, team_id, rank, updated_at)
VALUES (:league_id, :team_id, :rank, :updated_at)
ON CONFLICT (league_id, team_id) DO NOTHING`

func (r *WaiverPriorityRepository) Seed(ctx context.Context, leagueID string, teamIDs []string) error {
	now := time.Now().UTC()
	for i, teamID := range teamIDs {
		query, args, err := sqlx.Named(seedPriorityQuery, map[string]any{
			"league_id":  leagueID,
			"team_id":    teamID,
			"rank":       i + 1,
			"updated_at": now,
		})
		if err != nil {
			return fmt.Errorf("build priority seed: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("seed waiver priority league=%s team=%s: %w", leagueID, teamID, err)
		}
	}
	return nil
}
