package waiver

import (
	"fmt"
	"strings"
	"time"
)

// Policy controls how pending claims for the same player are ordered and
// how priority is adjusted after a claim is awarded.
type Policy string

const (
	// PolicyRotating awards by ascending rank and sends the winner to the
	// back of the queue.
	PolicyRotating Policy = "rotating"
	// PolicyReverseStandings awards by descending rank; ranks are kept in
	// reverse standings order by an external process and never rotate here.
	PolicyReverseStandings Policy = "reverse_standings"
	// PolicyBudgetBid is accepted at configuration time but claim
	// processing refuses it until bid accounting ships.
	PolicyBudgetBid Policy = "budget_bid"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.TrimSpace(strings.ToLower(raw))) {
	case PolicyRotating:
		return PolicyRotating, nil
	case PolicyReverseStandings:
		return PolicyReverseStandings, nil
	case PolicyBudgetBid:
		return PolicyBudgetBid, nil
	default:
		return "", fmt.Errorf("unknown waiver policy %q", raw)
	}
}

type ClaimState string

const (
	ClaimPending    ClaimState = "pending"
	ClaimSuccessful ClaimState = "successful"
	ClaimFailed     ClaimState = "failed"
	ClaimCancelled  ClaimState = "cancelled"
)

// Claim is a request by a team to acquire a player once their waiver
// window clears, optionally dropping another player to make room.
type Claim struct {
	ID               int64
	PublicID         string
	LeagueID         string
	TeamID           string
	PlayerID         string
	DropPlayerID     string
	State            ClaimState
	PrioritySnapshot int
	FailureReason    string
	CreatedAt        time.Time
	ProcessedAt      *time.Time
}

func (c Claim) Validate() error {
	if strings.TrimSpace(c.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(c.TeamID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(c.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	if c.DropPlayerID != "" && c.DropPlayerID == c.PlayerID {
		return fmt.Errorf("drop player must differ from claimed player")
	}
	return nil
}

// Priority is one team's position in the league waiver queue. Rank 1 is
// the head of the queue.
type Priority struct {
	LeagueID  string
	TeamID    string
	Rank      int
	UpdatedAt time.Time
}

// Window marks a player as unavailable for direct acquisition until it
// expires or is cleared by claim processing.
type Window struct {
	ID        int64
	LeagueID  string
	PlayerID  string
	OpenedAt  time.Time
	ExpiresAt time.Time
	ClearedAt *time.Time
}

func (w Window) OpenAt(now time.Time) bool {
	return w.ClearedAt == nil && w.ExpiresAt.After(now)
}
