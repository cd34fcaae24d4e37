package lineup

import "time"

// Slots is a denormalized projection of a team's roster split into
// lineup groups. It is advisory: roster_assignments stays authoritative
// and moves prune released players from these lists best effort.
type Slots struct {
	TeamID            string
	LeagueID          string
	StarterIDs        []string
	BenchIDs          []string
	InjuredReserveIDs []string
	UpdatedAt         time.Time
}

func (s Slots) Contains(playerID string) bool {
	for _, group := range [][]string{s.StarterIDs, s.BenchIDs, s.InjuredReserveIDs} {
		for _, id := range group {
			if id == playerID {
				return true
			}
		}
	}
	return false
}
