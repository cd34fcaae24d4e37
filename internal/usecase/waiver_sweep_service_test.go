package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/waiverwire/internal/platform/id"
)

type sweepFixture struct {
	service *WaiverSweepService
	windows *memory.WindowRepository
	claims  *memory.ClaimRepository
	rosters *memory.RosterRepository
}

func newSweepFixture(t *testing.T) sweepFixture {
	t.Helper()

	leagues := memory.NewLeagueRepository([]league.League{
		{ID: "league-a", Name: "League A", Season: "2026", RosterCap: 15, WaiverPolicy: "rotating", WaiverWindow: 48 * time.Hour},
		{ID: "league-b", Name: "League B", Season: "2026", RosterCap: 15, WaiverPolicy: "rotating", WaiverWindow: 48 * time.Hour},
	})

	store := memory.NewWaiverStore()
	claims := memory.NewClaimRepository(store)
	priorities := memory.NewPriorityRepository(store)
	windows := memory.NewWindowRepository(store)
	rosters := memory.NewRosterRepository(nil)
	failures := memory.NewFailedAttemptRepository(rosters)

	require.NoError(t, priorities.Seed(t.Context(), "league-a", []string{"team-a1", "team-a2"}))
	require.NoError(t, priorities.Seed(t.Context(), "league-b", []string{"team-b1"}))

	processor := NewWaiverProcessService(leagues, claims, priorities, windows, rosters, failures, id.NewRandomGenerator(), nil, 0)

	return sweepFixture{
		service: NewWaiverSweepService(leagues, processor, 2),
		windows: windows,
		claims:  claims,
		rosters: rosters,
	}
}

func (fx sweepFixture) submitPendingClaim(t *testing.T, publicID, leagueID, teamID, playerID string) {
	t.Helper()

	_, err := fx.claims.Submit(t.Context(), waiver.Claim{
		PublicID:  publicID,
		LeagueID:  leagueID,
		TeamID:    teamID,
		PlayerID:  playerID,
		State:     waiver.ClaimPending,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestSweep_AllLeagues(t *testing.T) {
	fx := newSweepFixture(t)

	expired := time.Now().UTC().Add(-72 * time.Hour)
	_, err := fx.windows.Open(t.Context(), "league-a", "player-1", expired, expired.Add(48*time.Hour))
	require.NoError(t, err)
	_, err = fx.windows.Open(t.Context(), "league-a", "player-2", expired, expired.Add(48*time.Hour))
	require.NoError(t, err)

	// Still open in league-b.
	now := time.Now().UTC()
	_, err = fx.windows.Open(t.Context(), "league-b", "player-3", now, now.Add(48*time.Hour))
	require.NoError(t, err)

	// Pending claims in both leagues; the sweep runs the batch for each.
	fx.submitPendingClaim(t, "claim-a", "league-a", "team-a1", "player-9")
	fx.submitPendingClaim(t, "claim-b", "league-b", "team-b1", "player-10")

	report, err := fx.service.Sweep(t.Context(), "")
	require.NoError(t, err)

	require.Equal(t, 2, report.Succeeded)
	require.Equal(t, 0, report.Failed)
	require.Len(t, report.Rows, 2)

	// Rows come back sorted by league id.
	require.Equal(t, "league-a", report.Rows[0].LeagueID)
	require.Equal(t, 2, report.Rows[0].Cleared)
	require.Equal(t, 1, report.Rows[0].Awarded)
	require.Equal(t, "league-b", report.Rows[1].LeagueID)
	require.Equal(t, 0, report.Rows[1].Cleared)
	require.Equal(t, 1, report.Rows[1].Awarded)

	// Both claims resolved through the batch.
	claimA, exists, err := fx.claims.GetByPublicID(t.Context(), "claim-a")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, waiver.ClaimSuccessful, claimA.State)

	open, err := fx.windows.ListOpen(t.Context(), "league-b", now)
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestSweep_SingleLeague(t *testing.T) {
	fx := newSweepFixture(t)

	expired := time.Now().UTC().Add(-72 * time.Hour)
	_, err := fx.windows.Open(t.Context(), "league-a", "player-1", expired, expired.Add(48*time.Hour))
	require.NoError(t, err)
	_, err = fx.windows.Open(t.Context(), "league-b", "player-2", expired, expired.Add(48*time.Hour))
	require.NoError(t, err)

	fx.submitPendingClaim(t, "claim-a", "league-a", "team-a1", "player-9")
	fx.submitPendingClaim(t, "claim-b", "league-b", "team-b1", "player-10")

	report, err := fx.service.Sweep(t.Context(), "league-a")
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	require.Equal(t, 1, report.Rows[0].Cleared)
	require.Equal(t, 1, report.Rows[0].Awarded)

	// league-b was not touched: window still open, claim still pending.
	open, err := fx.windows.ListOpen(t.Context(), "league-b", expired.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, open, 1)

	claimB, exists, err := fx.claims.GetByPublicID(t.Context(), "claim-b")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, waiver.ClaimPending, claimB.State)
}

func TestSweep_UnknownLeague(t *testing.T) {
	fx := newSweepFixture(t)

	_, err := fx.service.Sweep(t.Context(), "no-such-league")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeSweepWorkerCount(t *testing.T) {
	require.Equal(t, defaultSweepWorkerCount, normalizeSweepWorkerCount(0, 10))
	require.Equal(t, maxSweepWorkerCount, normalizeSweepWorkerCount(16, 10))
	require.Equal(t, 1, normalizeSweepWorkerCount(3, 1))
	require.Equal(t, 3, normalizeSweepWorkerCount(3, 5))
}
