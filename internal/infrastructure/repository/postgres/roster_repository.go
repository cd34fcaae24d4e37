package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

const releaseAssignmentQuery = `
DELETE FROM roster_assignments
WHERE league_id = :league_id AND team_id = :team_id AND player_id = :player_id
RETURNING id`

const insertAssignmentQuery = `
INSERT INTO roster_assignments (league_id, team_id, player_id, acquired_at)
VALUES (:league_id, :team_id, :player_id, :acquired_at)`

const countTeamAssignmentsQuery = `
SELECT COUNT(*)
FROM roster_assignments
WHERE league_id = :league_id AND team_id = :team_id`

const insertTransactionQuery = `
INSERT INTO roster_transactions (public_id, league_id, team_id, user_id, player_id, kind, note, occurred_at)
VALUES (:public_id, :league_id, :team_id, :user_id, :player_id, :kind, :note, :occurred_at)`

const pruneLineupSlotsQuery = `
UPDATE lineup_slots
SET starter_ids = array_remove(starter_ids, :player_id),
    bench_ids = array_remove(bench_ids, :player_id),
    injured_reserve_ids = array_remove(injured_reserve_ids, :player_id),
    updated_at = :updated_at
WHERE league_id = :league_id AND team_id = :team_id`

// ExecuteMove applies the release leg and then the acquire leg inside one
// transaction. Any non-success status means the transaction rolled back
// and nothing changed. The release runs first so a capped roster can swap
// a player in a single move.
func (r *RosterRepository) ExecuteMove(ctx context.Context, cmd roster.MoveCommand) (roster.MoveResult, error) {
	now := time.Now().UTC()
	result := roster.MoveResult{Status: roster.MoveSuccess, OccurredAt: now}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return roster.MoveResult{}, fmt.Errorf("begin move tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if cmd.ReleasePlayerID != "" {
		released, err := r.releaseInTx(ctx, tx, cmd, now)
		if err != nil {
			return roster.MoveResult{}, err
		}
		if !released {
			return roster.MoveResult{
				Status:     roster.MoveNotOwned,
				Reason:     fmt.Sprintf("player %s is not on the roster of team %s", cmd.ReleasePlayerID, cmd.TeamID),
				OccurredAt: now,
			}, nil
		}
		result.TransactionIDs = append(result.TransactionIDs, cmd.ReleaseTxPublicID)
	}

	if cmd.AcquirePlayerID != "" {
		status, reason, err := r.acquireInTx(ctx, tx, cmd, now)
		if err != nil {
			return roster.MoveResult{}, err
		}
		if status != roster.MoveSuccess {
			return roster.MoveResult{Status: status, Reason: reason, OccurredAt: now}, nil
		}
		result.TransactionIDs = append(result.TransactionIDs, cmd.AcquireTxPublicID)
	}

	if err := tx.Commit(); err != nil {
		return roster.MoveResult{}, fmt.Errorf("commit move tx: %w", err)
	}
	return result, nil
}

func (r *RosterRepository) releaseInTx(ctx context.Context, tx *sqlx.Tx, cmd roster.MoveCommand, now time.Time) (bool, error) {
	query, args, err := sqlx.Named(releaseAssignmentQuery, map[string]any{
		"league_id": cmd.LeagueID,
		"team_id":   cmd.TeamID,
		"player_id": cmd.ReleasePlayerID,
	})
	if err != nil {
		return false, fmt.Errorf("build release query: %w", err)
	}

	rows, err := tx.QueryxContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("release player %s: %w", cmd.ReleasePlayerID, err)
	}
	released := rows.Next()
	if err := rows.Close(); err != nil {
		return false, fmt.Errorf("release player %s: %w", cmd.ReleasePlayerID, err)
	}
	if !released {
		return false, nil
	}

	if err := r.insertTransactionInTx(ctx, tx, cmd.ReleaseTxPublicID, cmd, cmd.ReleasePlayerID, roster.KindRelease, now); err != nil {
		return false, err
	}

	// The lineup projection is advisory; a missing row is fine.
	query, args, err = sqlx.Named(pruneLineupSlotsQuery, map[string]any{
		"league_id":  cmd.LeagueID,
		"team_id":    cmd.TeamID,
		"player_id":  cmd.ReleasePlayerID,
		"updated_at": now,
	})
	if err != nil {
		return false, fmt.Errorf("build lineup prune query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("prune lineup slots player=%s: %w", cmd.ReleasePlayerID, err)
	}

	return true, nil
}

func (r *RosterRepository) acquireInTx(ctx context.Context, tx *sqlx.Tx, cmd roster.MoveCommand, now time.Time) (roster.MoveStatus, string, error) {
	query, args, err := sqlx.Named(countTeamAssignmentsQuery, map[string]any{
		"league_id": cmd.LeagueID,
		"team_id":   cmd.TeamID,
	})
	if err != nil {
		return "", "", fmt.Errorf("build roster count query: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(query), args...); err != nil {
		return "", "", fmt.Errorf("count roster league=%s team=%s: %w", cmd.LeagueID, cmd.TeamID, err)
	}
	if cmd.RosterCap > 0 && count >= cmd.RosterCap {
		return roster.MoveRosterFull,
			fmt.Sprintf("team %s already holds %d of %d players", cmd.TeamID, count, cmd.RosterCap),
			nil
	}

	query, args, err = sqlx.Named(insertAssignmentQuery, map[string]any{
		"league_id":   cmd.LeagueID,
		"team_id":     cmd.TeamID,
		"player_id":   cmd.AcquirePlayerID,
		"acquired_at": now,
	})
	if err != nil {
		return "", "", fmt.Errorf("build acquire query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		if isUniqueViolation(err, "roster_assignments_league_player_unique") {
			return roster.MoveDuplicatePlayer,
				fmt.Sprintf("player %s is already owned in league %s", cmd.AcquirePlayerID, cmd.LeagueID),
				nil
		}
		return "", "", fmt.Errorf("acquire player %s: %w", cmd.AcquirePlayerID, err)
	}

	if err := r.insertTransactionInTx(ctx, tx, cmd.AcquireTxPublicID, cmd, cmd.AcquirePlayerID, cmd.AcquireKind, now); err != nil {
		return "", "", err
	}

	return roster.MoveSuccess, "", nil
}

func (r *RosterRepository) insertTransactionInTx(ctx context.Context, tx *sqlx.Tx, publicID string, cmd roster.MoveCommand, playerID string, kind roster.TransactionKind, now time.Time) error {
	query, args, err := sqlx.Named(insertTransactionQuery, map[string]any{
		"public_id":   publicID,
		"league_id":   cmd.LeagueID,
		"team_id":     cmd.TeamID,
		"user_id":     cmd.UserID,
		"player_id":   playerID,
		"kind":        string(kind),
		"note":        cmd.Note,
		"occurred_at": now,
	})
	if err != nil {
		return fmt.Errorf("build transaction insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert roster transaction kind=%s player=%s: %w", kind, playerID, err)
	}
	return nil
}

const listAssignmentsQuery = `
SELECT league_id, team_id, player_id, acquired_at
FROM roster_assignments
WHERE league_id = $1 AND team_id = $2
ORDER BY acquired_at, player_id`

func (r *RosterRepository) ListByTeam(ctx context.Context, leagueID, teamID string) ([]roster.Assignment, error) {
	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, listAssignmentsQuery, leagueID, teamID); err != nil {
		return nil, fmt.Errorf("list roster league=%s team=%s: %w", leagueID, teamID, err)
	}

	items := make([]roster.Assignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const getAssignmentQuery = `
SELECT league_id, team_id, player_id, acquired_at
FROM roster_assignments
WHERE league_id = $1 AND player_id = $2`

func (r *RosterRepository) GetAssignment(ctx context.Context, leagueID, playerID string) (roster.Assignment, bool, error) {
	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, getAssignmentQuery, leagueID, playerID); err != nil {
		if isNotFound(err) {
			return roster.Assignment{}, false, nil
		}
		return roster.Assignment{}, false, fmt.Errorf("get assignment league=%s player=%s: %w", leagueID, playerID, err)
	}
	return row.toDomain(), true, nil
}

const countAssignmentsQuery = `
SELECT COUNT(*)
FROM roster_assignments
WHERE league_id = $1 AND team_id = $2`

func (r *RosterRepository) CountByTeam(ctx context.Context, leagueID, teamID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countAssignmentsQuery, leagueID, teamID); err != nil {
		return 0, fmt.Errorf("count roster league=%s team=%s: %w", leagueID, teamID, err)
	}
	return count, nil
}
