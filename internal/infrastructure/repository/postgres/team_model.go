package postgres

import (
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/team"
)

type teamRow struct {
	ID          string `db:"id"`
	LeagueID    string `db:"league_id"`
	Name        string `db:"name"`
	OwnerUserID string `db:"owner_user_id"`
}

func (r teamRow) toDomain() team.Team {
	return team.Team{
		ID:          r.ID,
		LeagueID:    r.LeagueID,
		Name:        r.Name,
		OwnerUserID: r.OwnerUserID,
	}
}

type membershipRow struct {
	UserID    string    `db:"user_id"`
	LeagueID  string    `db:"league_id"`
	TeamID    string    `db:"team_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r membershipRow) toDomain() team.Membership {
	return team.Membership{
		UserID:    r.UserID,
		LeagueID:  r.LeagueID,
		TeamID:    r.TeamID,
		CreatedAt: r.CreatedAt,
	}
}
