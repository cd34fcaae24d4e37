package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

type WaiverWindowRepository struct {
	db *sqlx.DB
}

func NewWaiverWindowRepository(db *sqlx.DB) *WaiverWindowRepository {
	return &WaiverWindowRepository{db: db}
}

const openWindowQuery = `
INSERT INTO waiver_windows (league_id, player_id, opened_at, expires_at)
VALUES (:league_id, :player_id, :opened_at, :expires_at)
ON CONFLICT (league_id, player_id) WHERE cleared_at IS NULL DO NOTHING`

const getOpenWindowQuery = `
SELECT id, league_id, player_id, opened_at, expires_at, cleared_at
FROM waiver_windows
WHERE league_id = $1 AND player_id = $2 AND cleared_at IS NULL`

// Open is idempotent: when the player already sits on waivers the
// existing window is returned unchanged.
func (r *WaiverWindowRepository) Open(ctx context.Context, leagueID, playerID string, openedAt, expiresAt time.Time) (waiver.Window, error) {
	query, args, err := sqlx.Named(openWindowQuery, map[string]any{
		"league_id":  leagueID,
		"player_id":  playerID,
		"opened_at":  openedAt,
		"expires_at": expiresAt,
	})
	if err != nil {
		return waiver.Window{}, fmt.Errorf("build window open query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return waiver.Window{}, fmt.Errorf("open waiver window league=%s player=%s: %w", leagueID, playerID, err)
	}

	var row windowRow
	if err := r.db.GetContext(ctx, &row, getOpenWindowQuery, leagueID, playerID); err != nil {
		return waiver.Window{}, fmt.Errorf("read waiver window league=%s player=%s: %w", leagueID, playerID, err)
	}
	return row.toDomain(), nil
}

const clearExpiredWindowQuery = `
UPDATE waiver_windows
SET cleared_at = $3
WHERE league_id = $1 AND player_id = $2 AND cleared_at IS NULL AND expires_at <= $3`

func (r *WaiverWindowRepository) Get(ctx context.Context, leagueID, playerID string, now time.Time) (waiver.Window, bool, error) {
	// Lazily close an expired window before answering so readers never
	// see a stale open window.
	if _, err := r.db.ExecContext(ctx, clearExpiredWindowQuery, leagueID, playerID, now.UTC()); err != nil {
		return waiver.Window{}, false, fmt.Errorf("clear expired window league=%s player=%s: %w", leagueID, playerID, err)
	}

	var row windowRow
	if err := r.db.GetContext(ctx, &row, getOpenWindowQuery, leagueID, playerID); err != nil {
		if isNotFound(err) {
			return waiver.Window{}, false, nil
		}
		return waiver.Window{}, false, fmt.Errorf("get waiver window league=%s player=%s: %w", leagueID, playerID, err)
	}
	return row.toDomain(), true, nil
}

const clearWindowQuery = `
UPDATE waiver_windows
SET cleared_at = $3
WHERE league_id = $1 AND player_id = $2 AND cleared_at IS NULL`

func (r *WaiverWindowRepository) Clear(ctx context.Context, leagueID, playerID string, clearedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, clearWindowQuery, leagueID, playerID, clearedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("clear waiver window league=%s player=%s: %w", leagueID, playerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear waiver window league=%s player=%s: rows affected: %w", leagueID, playerID, err)
	}
	return affected > 0, nil
}

const clearExpiredWindowsQuery = `
UPDATE waiver_windows
SET cleared_at = $2
WHERE league_id = $1 AND cleared_at IS NULL AND expires_at <= $2`

func (r *WaiverWindowRepository) ClearExpired(ctx context.Context, leagueID string, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, clearExpiredWindowsQuery, leagueID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired windows league=%s: %w", leagueID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear expired windows league=%s: rows affected: %w", leagueID, err)
	}
	return int(affected), nil
}

const listOpenWindowsQuery = `
SELECT id, league_id, player_id, opened_at, expires_at, cleared_at
FROM waiver_windows
WHERE league_id = $1 AND cleared_at IS NULL AND expires_at > $2
ORDER BY expires_at, id`

func (r *WaiverWindowRepository) ListOpen(ctx context.Context, leagueID string, now time.Time) ([]waiver.Window, error) {
	var rows []windowRow
	if err := r.db.SelectContext(ctx, &rows, listOpenWindowsQuery, leagueID, now.UTC()); err != nil {
		return nil, fmt.Errorf("list open windows league=%s: %w", leagueID, err)
	}

	items := make([]waiver.Window, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}
