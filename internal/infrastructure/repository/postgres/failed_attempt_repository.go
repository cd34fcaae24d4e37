package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
)

type FailedAttemptRepository struct {
	db *sqlx.DB
}

func NewFailedAttemptRepository(db *sqlx.DB) *FailedAttemptRepository {
	return &FailedAttemptRepository{db: db}
}

const insertFailedAttemptQuery = `
INSERT INTO failed_attempts (league_id, team_id, user_id, player_id, operation, reason, detail, occurred_at)
VALUES (:league_id, :team_id, :user_id, :player_id, :operation, :reason, :detail, :occurred_at)`

func (r *FailedAttemptRepository) Record(ctx context.Context, attempt roster.FailedAttempt) error {
	occurredAt := attempt.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	query, args, err := sqlx.Named(insertFailedAttemptQuery, map[string]any{
		"league_id":   attempt.LeagueID,
		"team_id":     attempt.TeamID,
		"user_id":     attempt.UserID,
		"player_id":   attempt.PlayerID,
		"operation":   attempt.Operation,
		"reason":      attempt.Reason,
		"detail":      attempt.Detail,
		"occurred_at": occurredAt,
	})
	if err != nil {
		return fmt.Errorf("build failed attempt insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("record failed attempt league=%s player=%s: %w", attempt.LeagueID, attempt.PlayerID, err)
	}
	return nil
}

const listFailedAttemptsQuery = `
SELECT id, league_id, team_id, user_id, player_id, operation, reason, detail, occurred_at
FROM failed_attempts
WHERE league_id = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2`

func (r *FailedAttemptRepository) ListByLeague(ctx context.Context, leagueID string, limit int) ([]roster.FailedAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []failedAttemptRow
	if err := r.db.SelectContext(ctx, &rows, listFailedAttemptsQuery, leagueID, limit); err != nil {
		return nil, fmt.Errorf("list failed attempts league=%s: %w", leagueID, err)
	}

	items := make([]roster.FailedAttempt, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}
