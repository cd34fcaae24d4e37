package postgres

import (
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
)

type assignmentRow struct {
	LeagueID   string    `db:"league_id"`
	TeamID     string    `db:"team_id"`
	PlayerID   string    `db:"player_id"`
	AcquiredAt time.Time `db:"acquired_at"`
}

func (r assignmentRow) toDomain() roster.Assignment {
	return roster.Assignment{
		LeagueID:   r.LeagueID,
		TeamID:     r.TeamID,
		PlayerID:   r.PlayerID,
		AcquiredAt: r.AcquiredAt,
	}
}

type transactionRow struct {
	ID         int64     `db:"id"`
	PublicID   string    `db:"public_id"`
	LeagueID   string    `db:"league_id"`
	TeamID     string    `db:"team_id"`
	UserID     string    `db:"user_id"`
	PlayerID   string    `db:"player_id"`
	Kind       string    `db:"kind"`
	Note       string    `db:"note"`
	OccurredAt time.Time `db:"occurred_at"`
}

func (r transactionRow) toDomain() roster.Transaction {
	return roster.Transaction{
		ID:         r.ID,
		PublicID:   r.PublicID,
		LeagueID:   r.LeagueID,
		TeamID:     r.TeamID,
		UserID:     r.UserID,
		PlayerID:   r.PlayerID,
		Kind:       roster.TransactionKind(r.Kind),
		Note:       r.Note,
		OccurredAt: r.OccurredAt,
	}
}

type failedAttemptRow struct {
	ID         int64     `db:"id"`
	LeagueID   string    `db:"league_id"`
	TeamID     string    `db:"team_id"`
	UserID     string    `db:"user_id"`
	PlayerID   string    `db:"player_id"`
	Operation  string    `db:"operation"`
	Reason     string    `db:"reason"`
	Detail     string    `db:"detail"`
	OccurredAt time.Time `db:"occurred_at"`
}

func (r failedAttemptRow) toDomain() roster.FailedAttempt {
	return roster.FailedAttempt{
		ID:         r.ID,
		LeagueID:   r.LeagueID,
		TeamID:     r.TeamID,
		UserID:     r.UserID,
		PlayerID:   r.PlayerID,
		Operation:  r.Operation,
		Reason:     r.Reason,
		Detail:     r.Detail,
		OccurredAt: r.OccurredAt,
	}
}
