package postgres

import (
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

type leagueRow struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	Season            string `db:"season"`
	RosterCap         int    `db:"roster_cap"`
	WaiverPolicy      string `db:"waiver_policy"`
	WaiverWindowHours int    `db:"waiver_window_hours"`
	IsDefault         bool   `db:"is_default"`
}

func (r leagueRow) toDomain() league.League {
	return league.League{
		ID:           r.ID,
		Name:         r.Name,
		Season:       r.Season,
		RosterCap:    r.RosterCap,
		WaiverPolicy: waiver.Policy(r.WaiverPolicy),
		WaiverWindow: time.Duration(r.WaiverWindowHours) * time.Hour,
		IsDefault:    r.IsDefault,
	}
}
