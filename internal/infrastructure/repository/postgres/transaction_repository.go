package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	qb "github.com/riskibarqy/waiverwire/internal/platform/querybuilder"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ListByLeague(ctx context.Context, leagueID string, limit int) ([]roster.Transaction, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("league_id", leagueID)}, limit)
}

func (r *TransactionRepository) ListByTeam(ctx context.Context, leagueID, teamID string, limit int) ([]roster.Transaction, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("league_id", leagueID), qb.Eq("team_id", teamID)}, limit)
}

func (r *TransactionRepository) list(ctx context.Context, conds []qb.Condition, limit int) ([]roster.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	builder := qb.
		Select("id", "public_id", "league_id", "team_id", "user_id", "player_id", "kind", "note", "occurred_at").
		From("roster_transactions").
		Where(conds...).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit)

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build transaction list query: %w", err)
	}

	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster transactions: %w", err)
	}

	items := make([]roster.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}
