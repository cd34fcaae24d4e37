package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	qb "github.com/riskibarqy/waiverwire/internal/platform/querybuilder"
)

type WaiverClaimRepository struct {
	db *sqlx.DB
}

func NewWaiverClaimRepository(db *sqlx.DB) *WaiverClaimRepository {
	return &WaiverClaimRepository{db: db}
}

const insertClaimQuery = `
INSERT INTO waiver_claims (public_id, league_id, team_id, player_id, drop_player_id, state, created_at)
VALUES (:public_id, :league_id, :team_id, :player_id, :drop_player_id, :state, :created_at)
RETURNING id, public_id, league_id, team_id, player_id, drop_player_id, state, priority_snapshot, failure_reason, created_at, processed_at`

func (r *WaiverClaimRepository) Submit(ctx context.Context, claim waiver.Claim) (waiver.Claim, error) {
	createdAt := claim.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := sqlx.Named(insertClaimQuery, map[string]any{
		"public_id":      claim.PublicID,
		"league_id":      claim.LeagueID,
		"team_id":        claim.TeamID,
		"player_id":      claim.PlayerID,
		"drop_player_id": claim.DropPlayerID,
		"state":          string(waiver.ClaimPending),
		"created_at":     createdAt,
	})
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("build claim insert: %w", err)
	}

	var row claimRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		return waiver.Claim{}, fmt.Errorf("submit waiver claim league=%s player=%s: %w", claim.LeagueID, claim.PlayerID, err)
	}
	return row.toDomain(), nil
}

const getClaimQuery = `
SELECT id, public_id, league_id, team_id, player_id, drop_player_id, state, priority_snapshot, failure_reason, created_at, processed_at
FROM waiver_claims
WHERE public_id = $1`

func (r *WaiverClaimRepository) GetByPublicID(ctx context.Context, publicID string) (waiver.Claim, bool, error) {
	var row claimRow
	if err := r.db.GetContext(ctx, &row, getClaimQuery, publicID); err != nil {
		if isNotFound(err) {
			return waiver.Claim{}, false, nil
		}
		return waiver.Claim{}, false, fmt.Errorf("get waiver claim %s: %w", publicID, err)
	}
	return row.toDomain(), true, nil
}

func (r *WaiverClaimRepository) ListByLeague(ctx context.Context, leagueID string, states []waiver.ClaimState, limit int) ([]waiver.Claim, error) {
	if limit <= 0 {
		limit = 100
	}

	conds := []qb.Condition{qb.Eq("league_id", leagueID)}
	if len(states) > 0 {
		values := make([]any, 0, len(states))
		for _, state := range states {
			values = append(values, string(state))
		}
		conds = append(conds, qb.In("state", values))
	}

	query, args, err := qb.
		Select("id", "public_id", "league_id", "team_id", "player_id", "drop_player_id", "state", "priority_snapshot", "failure_reason", "created_at", "processed_at").
		From("waiver_claims").
		Where(conds...).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build claim list query: %w", err)
	}

	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list waiver claims league=%s: %w", leagueID, err)
	}

	items := make([]waiver.Claim, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// Unranked teams sort to the back of the rotating queue and to the back
// of the reverse-standings queue alike.
const listPendingRotatingQuery = `
SELECT c.id, c.public_id, c.league_id, c.team_id, c.player_id, c.drop_player_id, c.state,
       c.priority_snapshot, c.failure_reason, c.created_at, c.processed_at, p.rank AS priority_rank
FROM waiver_claims c
LEFT JOIN waiver_priorities p ON p.league_id = c.league_id AND p.team_id = c.team_id
WHERE c.league_id = $1 AND c.state = 'pending'
ORDER BY COALESCE(p.rank, 2147483647) ASC, c.created_at ASC, c.id ASC
LIMIT $2`

const listPendingReverseQuery = `
SELECT c.id, c.public_id, c.league_id, c.team_id, c.player_id, c.drop_player_id, c.state,
       c.priority_snapshot, c.failure_reason, c.created_at, c.processed_at, p.rank AS priority_rank
FROM waiver_claims c
LEFT JOIN waiver_priorities p ON p.league_id = c.league_id AND p.team_id = c.team_id
WHERE c.league_id = $1 AND c.state = 'pending'
ORDER BY COALESCE(p.rank, 0) DESC, c.created_at ASC, c.id ASC
LIMIT $2`

func (r *WaiverClaimRepository) ListPendingOrdered(ctx context.Context, leagueID string, policy waiver.Policy, limit int) ([]waiver.Claim, error) {
	if limit <= 0 {
		limit = 100
	}

	query := listPendingRotatingQuery
	if policy == waiver.PolicyReverseStandings {
		query = listPendingReverseQuery
	}

	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, limit); err != nil {
		return nil, fmt.Errorf("list pending waiver claims league=%s: %w", leagueID, err)
	}

	items := make([]waiver.Claim, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

const cancelClaimQuery = `
UPDATE waiver_claims
SET state = 'cancelled', processed_at = $3
WHERE public_id = $1 AND team_id = $2 AND state = 'pending'`

// Cancel is a conditional update so a claim that was processed in the
// meantime stays untouched and the caller learns it lost the race.
func (r *WaiverClaimRepository) Cancel(ctx context.Context, publicID, teamID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, cancelClaimQuery, publicID, teamID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("cancel waiver claim %s: %w", publicID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel waiver claim %s: rows affected: %w", publicID, err)
	}
	return affected > 0, nil
}

const resolveClaimQuery = `
UPDATE waiver_claims
SET state = :state, priority_snapshot = :priority_snapshot, failure_reason = :failure_reason, processed_at = :processed_at
WHERE id = :id AND state = 'pending'`

func (r *WaiverClaimRepository) Resolve(ctx context.Context, claimID int64, state waiver.ClaimState, prioritySnapshot int, failureReason string, processedAt time.Time) error {
	query, args, err := sqlx.Named(resolveClaimQuery, map[string]any{
		"id":                claimID,
		"state":             string(state),
		"priority_snapshot": prioritySnapshot,
		"failure_reason":    failureReason,
		"processed_at":      processedAt,
	})
	if err != nil {
		return fmt.Errorf("build claim resolve query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("resolve waiver claim id=%d: %w", claimID, err)
	}
	return nil
}

const tryLeagueLockQuery = `SELECT pg_try_advisory_lock(hashtext('waiver-batch:' || $1))`
const releaseLeagueLockQuery = `SELECT pg_advisory_unlock(hashtext('waiver-batch:' || $1))`

// AcquireLeagueLock takes a session advisory lock on a dedicated
// connection so the lock lifetime is bound to that connection and not to
// any transaction. The release func must be called exactly once when
// acquired is true.
func (r *WaiverClaimRepository) AcquireLeagueLock(ctx context.Context, leagueID string) (func(), bool, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock conn league=%s: %w", leagueID, err)
	}

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, tryLeagueLockQuery, leagueID); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("try league lock league=%s: %w", leagueID, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}

	release := func() {
		// Unlock on a fresh context: the batch may have outlived the
		// request that started it.
		var unlocked bool
		_ = conn.GetContext(context.Background(), &unlocked, releaseLeagueLockQuery, leagueID)
		_ = conn.Close()
	}
	return release, true, nil
}
