package team

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	GetByID(ctx context.Context, leagueID, teamID string) (Team, bool, error)
}

type MembershipRepository interface {
	GetByUserAndLeague(ctx context.Context, userID, leagueID string) (Membership, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Membership, error)
}
