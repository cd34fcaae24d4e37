package team

import "time"

type Team struct {
	ID          string
	LeagueID    string
	Name        string
	OwnerUserID string
}

// Membership binds a user to the single team they manage in a league.
type Membership struct {
	UserID    string
	LeagueID  string
	TeamID    string
	CreatedAt time.Time
}
