package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
)

type lineupSlotsRow struct {
	TeamID            string         `db:"team_id"`
	LeagueID          string         `db:"league_id"`
	StarterIDs        pq.StringArray `db:"starter_ids"`
	BenchIDs          pq.StringArray `db:"bench_ids"`
	InjuredReserveIDs pq.StringArray `db:"injured_reserve_ids"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r lineupSlotsRow) toDomain() lineup.Slots {
	return lineup.Slots{
		TeamID:            r.TeamID,
		LeagueID:          r.LeagueID,
		StarterIDs:        append([]string(nil), r.StarterIDs...),
		BenchIDs:          append([]string(nil), r.BenchIDs...),
		InjuredReserveIDs: append([]string(nil), r.InjuredReserveIDs...),
		UpdatedAt:         r.UpdatedAt,
	}
}
