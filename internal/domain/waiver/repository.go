package waiver

import (
	"context"
	"time"
)

// ClaimRepository persists waiver claims and serializes batch processing
// per league.
type ClaimRepository interface {
	Submit(ctx context.Context, claim Claim) (Claim, error)
	GetByPublicID(ctx context.Context, publicID string) (Claim, bool, error)
	ListByLeague(ctx context.Context, leagueID string, states []ClaimState, limit int) ([]Claim, error)
	// ListPendingOrdered returns up to limit pending claims ordered by the
	// owning team's priority rank (ascending for rotating, descending for
	// reverse standings) with submission time breaking ties.
	ListPendingOrdered(ctx context.Context, leagueID string, policy Policy, limit int) ([]Claim, error)
	// Cancel flips a claim to cancelled only while it is still pending and
	// owned by teamID. It reports whether a row was updated.
	Cancel(ctx context.Context, publicID, teamID string) (bool, error)
	// Resolve records the processing outcome for a pending claim.
	Resolve(ctx context.Context, claimID int64, state ClaimState, prioritySnapshot int, failureReason string, processedAt time.Time) error
	// AcquireLeagueLock takes a non-blocking per-league advisory lock held
	// for the lifetime of the returned release func. acquired=false means
	// another processor owns the league right now.
	AcquireLeagueLock(ctx context.Context, leagueID string) (release func(), acquired bool, err error)
}

type PriorityRepository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Priority, error)
	GetRank(ctx context.Context, leagueID, teamID string) (int, bool, error)
	// RotateToBack moves the team to the last rank and shifts everyone
	// behind it up one slot, atomically.
	RotateToBack(ctx context.Context, leagueID, teamID string) error
	Seed(ctx context.Context, leagueID string, teamIDs []string) error
}

type WindowRepository interface {
	Open(ctx context.Context, leagueID, playerID string, openedAt, expiresAt time.Time) (Window, error)
	// Get reports the open window for the player, lazily clearing it first
	// when it has already expired relative to now.
	Get(ctx context.Context, leagueID, playerID string, now time.Time) (Window, bool, error)
	// Clear closes the open window for the player and reports whether one
	// was open.
	Clear(ctx context.Context, leagueID, playerID string, clearedAt time.Time) (bool, error)
	// ClearExpired closes every window in the league whose expiry has
	// passed and returns how many were closed.
	ClearExpired(ctx context.Context, leagueID string, now time.Time) (int, error)
	ListOpen(ctx context.Context, leagueID string, now time.Time) ([]Window, error)
}
