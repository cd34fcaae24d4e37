package memory

import (
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/domain/team"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

// Shared fixture ids used across service tests.
const (
	LeagueIDMainStreet = "main-street-2026"
	TeamIDSharks       = "sharks"
	TeamIDComets       = "comets"
	TeamIDOtters       = "otters"
	UserIDSharksOwner  = "user-sharks"
	UserIDCometsOwner  = "user-comets"
	UserIDOttersOwner  = "user-otters"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:           LeagueIDMainStreet,
			Name:         "Main Street League",
			Season:       "2026",
			RosterCap:    3,
			WaiverPolicy: waiver.PolicyRotating,
			WaiverWindow: 48 * time.Hour,
			IsDefault:    true,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDSharks, LeagueID: LeagueIDMainStreet, Name: "Sharks", OwnerUserID: UserIDSharksOwner},
		{ID: TeamIDComets, LeagueID: LeagueIDMainStreet, Name: "Comets", OwnerUserID: UserIDCometsOwner},
		{ID: TeamIDOtters, LeagueID: LeagueIDMainStreet, Name: "Otters", OwnerUserID: UserIDOttersOwner},
	}
}

func SeedMemberships() []team.Membership {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return []team.Membership{
		{UserID: UserIDSharksOwner, LeagueID: LeagueIDMainStreet, TeamID: TeamIDSharks, CreatedAt: now},
		{UserID: UserIDCometsOwner, LeagueID: LeagueIDMainStreet, TeamID: TeamIDComets, CreatedAt: now},
		{UserID: UserIDOttersOwner, LeagueID: LeagueIDMainStreet, TeamID: TeamIDOtters, CreatedAt: now},
	}
}

func SeedAssignments() []roster.Assignment {
	acquired := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	return []roster.Assignment{
		{LeagueID: LeagueIDMainStreet, TeamID: TeamIDSharks, PlayerID: "player-qb-1", AcquiredAt: acquired},
		{LeagueID: LeagueIDMainStreet, TeamID: TeamIDSharks, PlayerID: "player-rb-1", AcquiredAt: acquired},
		{LeagueID: LeagueIDMainStreet, TeamID: TeamIDComets, PlayerID: "player-wr-1", AcquiredAt: acquired},
	}
}
