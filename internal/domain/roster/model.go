package roster

import (
	"fmt"
	"strings"
	"time"
)

// Assignment is the single source of truth for who owns a player. A
// player appears at most once per league.
type Assignment struct {
	LeagueID   string
	TeamID     string
	PlayerID   string
	AcquiredAt time.Time
}

type TransactionKind string

const (
	KindAcquire TransactionKind = "acquire"
	KindRelease TransactionKind = "release"
	KindTrade   TransactionKind = "trade"
	KindDraft   TransactionKind = "draft"
)

func ParseTransactionKind(raw string) (TransactionKind, error) {
	switch TransactionKind(strings.TrimSpace(strings.ToLower(raw))) {
	case KindAcquire:
		return KindAcquire, nil
	case KindRelease:
		return KindRelease, nil
	case KindTrade:
		return KindTrade, nil
	case KindDraft:
		return KindDraft, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", raw)
	}
}

// Transaction is an append-only audit record of one ownership change.
// Moves that touch two players produce two rows sharing one move.
type Transaction struct {
	ID       int64
	PublicID string
	LeagueID string
	TeamID   string
	// UserID is the acting user, empty for system-driven writes such as
	// the waiver batch.
	UserID     string
	PlayerID   string
	Kind       TransactionKind
	Note       string
	OccurredAt time.Time
}

// FailedAttempt records a rejected mutation after its transaction rolled
// back, so the audit trail covers failures as well as successes.
type FailedAttempt struct {
	ID         int64
	LeagueID   string
	TeamID     string
	UserID     string
	PlayerID   string
	Operation  string
	Reason     string
	Detail     string
	OccurredAt time.Time
}

type MoveStatus string

const (
	MoveSuccess         MoveStatus = "success"
	MoveDuplicatePlayer MoveStatus = "duplicate_player"
	MoveRosterFull      MoveStatus = "roster_full"
	MoveNotOwned        MoveStatus = "not_owned"
	MoveNoTeam          MoveStatus = "no_team"
	MoveError           MoveStatus = "error"
)

// Failed reports whether the status describes a rejected move rather
// than a completed one.
func (s MoveStatus) Failed() bool {
	return s != MoveSuccess
}

// MoveCommand is the fully resolved instruction handed to storage: team
// already looked up, cap and kind already decided. At least one of the
// player fields is set; when both are set the release happens first so
// the acquire never trips the cap spuriously.
type MoveCommand struct {
	LeagueID        string
	TeamID          string
	UserID          string
	AcquirePlayerID string
	ReleasePlayerID string
	RosterCap       int
	AcquireKind     TransactionKind
	Note            string
	// Pre-generated audit ids so storage stays free of id concerns.
	AcquireTxPublicID string
	ReleaseTxPublicID string
}

type MoveResult struct {
	Status MoveStatus
	// Reason carries detail for failed statuses, e.g. which constraint
	// rejected the acquire.
	Reason         string
	TransactionIDs []string
	OccurredAt     time.Time
}
