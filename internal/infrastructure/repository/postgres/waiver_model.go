package postgres

import (
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

type claimRow struct {
	ID               int64      `db:"id"`
	PublicID         string     `db:"public_id"`
	LeagueID         string     `db:"league_id"`
	TeamID           string     `db:"team_id"`
	PlayerID         string     `db:"player_id"`
	DropPlayerID     string     `db:"drop_player_id"`
	State            string     `db:"state"`
	PrioritySnapshot int        `db:"priority_snapshot"`
	FailureReason    string     `db:"failure_reason"`
	CreatedAt        time.Time  `db:"created_at"`
	ProcessedAt      *time.Time `db:"processed_at"`

	// Populated only by the pending-ordered query.
	PriorityRank *int `db:"priority_rank"`
}

func (r claimRow) toDomain() waiver.Claim {
	claim := waiver.Claim{
		ID:               r.ID,
		PublicID:         r.PublicID,
		LeagueID:         r.LeagueID,
		TeamID:           r.TeamID,
		PlayerID:         r.PlayerID,
		DropPlayerID:     r.DropPlayerID,
		State:            waiver.ClaimState(r.State),
		PrioritySnapshot: r.PrioritySnapshot,
		FailureReason:    r.FailureReason,
		CreatedAt:        r.CreatedAt,
		ProcessedAt:      r.ProcessedAt,
	}
	if r.PriorityRank != nil {
		claim.PrioritySnapshot = *r.PriorityRank
	}
	return claim
}

type priorityRow struct {
	LeagueID  string    `db:"league_id"`
	TeamID    string    `db:"team_id"`
	Rank      int       `db:"rank"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r priorityRow) toDomain() waiver.Priority {
	return waiver.Priority{
		LeagueID:  r.LeagueID,
		TeamID:    r.TeamID,
		Rank:      r.Rank,
		UpdatedAt: r.UpdatedAt,
	}
}

type windowRow struct {
	ID        int64      `db:"id"`
	LeagueID  string     `db:"league_id"`
	PlayerID  string     `db:"player_id"`
	OpenedAt  time.Time  `db:"opened_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	ClearedAt *time.Time `db:"cleared_at"`
}

func (r windowRow) toDomain() waiver.Window {
	return waiver.Window{
		ID:        r.ID,
		LeagueID:  r.LeagueID,
		PlayerID:  r.PlayerID,
		OpenedAt:  r.OpenedAt,
		ExpiresAt: r.ExpiresAt,
		ClearedAt: r.ClearedAt,
	}
}
