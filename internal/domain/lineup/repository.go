package lineup

import "context"

type Repository interface {
	GetByTeam(ctx context.Context, leagueID, teamID string) (Slots, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Slots, error)
	Upsert(ctx context.Context, slots Slots) error
}
