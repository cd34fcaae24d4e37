package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/waiverwire/internal/platform/id"
)

type moveFixture struct {
	service      *MoveService
	rosters      *memory.RosterRepository
	transactions *memory.TransactionRepository
	failures     *memory.FailedAttemptRepository
	windows      *memory.WindowRepository
}

func newMoveFixture(t *testing.T) moveFixture {
	t.Helper()

	rosters := memory.NewRosterRepository(memory.SeedAssignments())
	store := memory.NewWaiverStore()
	failures := memory.NewFailedAttemptRepository(rosters)
	windows := memory.NewWindowRepository(store)

	service := NewMoveService(
		memory.NewLeagueRepository(memory.SeedLeagues()),
		memory.NewMembershipRepository(memory.SeedMemberships()),
		rosters,
		windows,
		failures,
		id.NewRandomGenerator(),
	)

	return moveFixture{
		service:      service,
		rosters:      rosters,
		transactions: memory.NewTransactionRepository(rosters),
		failures:     failures,
		windows:      windows,
	}
}

func TestExecuteMove_AcquireSuccess(t *testing.T) {
	fx := newMoveFixture(t)

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDOttersOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Reason)
	}
	if len(result.TransactionIDs) != 1 {
		t.Fatalf("expected 1 transaction id, got %d", len(result.TransactionIDs))
	}

	assignment, owned, err := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-te-9")
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if !owned || assignment.TeamID != memory.TeamIDOtters {
		t.Fatalf("expected player owned by otters, got owned=%v team=%s", owned, assignment.TeamID)
	}

	txs, err := fx.transactions.ListByTeam(t.Context(), memory.LeagueIDMainStreet, memory.TeamIDOtters, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Kind != roster.KindAcquire {
		t.Fatalf("expected one acquire transaction, got %+v", txs)
	}
	if txs[0].UserID != memory.UserIDOttersOwner {
		t.Fatalf("expected transaction attributed to the acting user, got %q", txs[0].UserID)
	}
}

func TestExecuteMove_DuplicatePlayerRejected(t *testing.T) {
	fx := newMoveFixture(t)

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDCometsOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-qb-1", // owned by sharks
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveDuplicatePlayer {
		t.Fatalf("expected duplicate_player, got %s", result.Status)
	}

	attempts, err := fx.failures.ListByLeague(t.Context(), memory.LeagueIDMainStreet, 10)
	if err != nil {
		t.Fatalf("list failed attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Reason != string(roster.MoveDuplicatePlayer) {
		t.Fatalf("expected one duplicate_player attempt, got %+v", attempts)
	}
}

func TestExecuteMove_RosterFullRejected(t *testing.T) {
	fx := newMoveFixture(t)

	// Seeded cap is 3; sharks start with 2 players.
	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-k-3",
	})
	if err != nil {
		t.Fatalf("fill roster: %v", err)
	}
	if result.Status != roster.MoveSuccess {
		t.Fatalf("expected success filling roster, got %s", result.Status)
	}

	result, err = fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-def-4",
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveRosterFull {
		t.Fatalf("expected roster_full, got %s", result.Status)
	}

	if count, _ := fx.rosters.CountByTeam(t.Context(), memory.LeagueIDMainStreet, memory.TeamIDSharks); count != 3 {
		t.Fatalf("expected roster unchanged at 3, got %d", count)
	}
}

func TestExecuteMove_CapCheckedBeforeDuplicate(t *testing.T) {
	fx := newMoveFixture(t)

	if _, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-k-3",
	}); err != nil {
		t.Fatalf("fill roster: %v", err)
	}

	// Full roster acquiring an already-owned player: the cap check runs
	// before the insert ever trips the unique constraint.
	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-wr-1", // owned by comets
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveRosterFull {
		t.Fatalf("expected roster_full to win precedence, got %s", result.Status)
	}
}

func TestExecuteMove_SwapAtCapSucceeds(t *testing.T) {
	fx := newMoveFixture(t)

	if _, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-k-3",
	}); err != nil {
		t.Fatalf("fill roster: %v", err)
	}

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-wr-7",
		ReleasePlayerID: "player-rb-1",
	})
	if err != nil {
		t.Fatalf("execute swap: %v", err)
	}
	if result.Status != roster.MoveSuccess {
		t.Fatalf("expected swap at cap to succeed, got %s (%s)", result.Status, result.Reason)
	}
	if len(result.TransactionIDs) != 2 {
		t.Fatalf("expected 2 transaction ids for a swap, got %d", len(result.TransactionIDs))
	}
}

func TestExecuteMove_SwapRolledBackOnDuplicateAcquire(t *testing.T) {
	fx := newMoveFixture(t)

	// The acquire leg hits a player comets already own, so the whole
	// move rolls back, release included.
	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-wr-1",
		ReleasePlayerID: "player-qb-1",
	})
	if err != nil {
		t.Fatalf("execute swap: %v", err)
	}
	if result.Status != roster.MoveDuplicatePlayer {
		t.Fatalf("expected duplicate_player, got %s (%s)", result.Status, result.Reason)
	}

	assignment, owned, err := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-qb-1")
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if !owned || assignment.TeamID != memory.TeamIDSharks {
		t.Fatalf("expected release restored to sharks, got owned=%v team=%s", owned, assignment.TeamID)
	}
	if assignment, _, _ := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-wr-1"); assignment.TeamID != memory.TeamIDComets {
		t.Fatalf("expected comets to keep their player, got %s", assignment.TeamID)
	}

	txs, err := fx.transactions.ListByTeam(t.Context(), memory.LeagueIDMainStreet, memory.TeamIDSharks, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no audit rows from the rolled-back move, got %+v", txs)
	}
}

func TestExecuteMove_ConcurrentAcquiresSingleWinner(t *testing.T) {
	fx := newMoveFixture(t)

	users := []string{memory.UserIDSharksOwner, memory.UserIDCometsOwner, memory.UserIDOttersOwner}
	results := make(chan roster.MoveResult, len(users))
	errs := make(chan error, len(users))

	var wg sync.WaitGroup
	for _, userID := range users {
		userID := userID
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fx.service.ExecuteMove(context.Background(), userID, MoveRequest{
				LeagueID:        memory.LeagueIDMainStreet,
				AcquirePlayerID: "player-te-9",
			})
			results <- result
			errs <- err
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("execute move: %v", err)
		}
	}

	var wins, duplicates int
	for result := range results {
		switch result.Status {
		case roster.MoveSuccess:
			wins++
		case roster.MoveDuplicatePlayer:
			duplicates++
		default:
			t.Fatalf("unexpected status %s (%s)", result.Status, result.Reason)
		}
	}
	if wins != 1 || duplicates != 2 {
		t.Fatalf("expected exactly one winner, got wins=%d duplicates=%d", wins, duplicates)
	}

	if _, owned, _ := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-te-9"); !owned {
		t.Fatalf("expected the contested player to be owned")
	}
}

func TestExecuteMove_ReleaseNotOwned(t *testing.T) {
	fx := newMoveFixture(t)

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		ReleasePlayerID: "player-wr-1", // owned by comets
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveNotOwned {
		t.Fatalf("expected not_owned, got %s", result.Status)
	}

	if _, owned, _ := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-wr-1"); !owned {
		t.Fatalf("expected comets to keep the player after rejected release")
	}
}

func TestExecuteMove_NoTeamRecorded(t *testing.T) {
	fx := newMoveFixture(t)

	result, err := fx.service.ExecuteMove(t.Context(), "user-without-team", MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveNoTeam {
		t.Fatalf("expected no_team, got %s", result.Status)
	}

	attempts, err := fx.failures.ListByLeague(t.Context(), memory.LeagueIDMainStreet, 10)
	if err != nil {
		t.Fatalf("list failed attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Reason != string(roster.MoveNoTeam) {
		t.Fatalf("expected one no_team attempt, got %+v", attempts)
	}
	if attempts[0].UserID != "user-without-team" {
		t.Fatalf("expected attempt attributed to the acting user, got %q", attempts[0].UserID)
	}
}

func TestExecuteMove_OnWaiversRejected(t *testing.T) {
	fx := newMoveFixture(t)

	now := time.Now().UTC()
	if _, err := fx.windows.Open(t.Context(), memory.LeagueIDMainStreet, "player-te-9", now, now.Add(time.Hour)); err != nil {
		t.Fatalf("open window: %v", err)
	}

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDOttersOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		AcquirePlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveError {
		t.Fatalf("expected error status for on-waivers acquire, got %s", result.Status)
	}
	if !strings.Contains(result.Reason, "waivers") {
		t.Fatalf("expected reason to mention waivers, got %q", result.Reason)
	}

	if _, owned, _ := fx.rosters.GetAssignment(t.Context(), memory.LeagueIDMainStreet, "player-te-9"); owned {
		t.Fatalf("expected player to stay unowned")
	}
}

func TestExecuteMove_ReleaseOpensWaiverWindow(t *testing.T) {
	fx := newMoveFixture(t)

	result, err := fx.service.ExecuteMove(t.Context(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        memory.LeagueIDMainStreet,
		ReleasePlayerID: "player-rb-1",
	})
	if err != nil {
		t.Fatalf("execute move: %v", err)
	}
	if result.Status != roster.MoveSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Reason)
	}

	window, open, err := fx.windows.Get(t.Context(), memory.LeagueIDMainStreet, "player-rb-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("get window: %v", err)
	}
	if !open {
		t.Fatalf("expected waiver window to open on release")
	}
	if got := window.ExpiresAt.Sub(window.OpenedAt); got != 48*time.Hour {
		t.Fatalf("expected 48h window, got %s", got)
	}
}

func TestExecuteMove_ValidatesInput(t *testing.T) {
	fx := newMoveFixture(t)

	cases := []struct {
		name   string
		userID string
		req    MoveRequest
	}{
		{name: "missing user", userID: "", req: MoveRequest{LeagueID: memory.LeagueIDMainStreet, AcquirePlayerID: "p1"}},
		{name: "missing league", userID: memory.UserIDSharksOwner, req: MoveRequest{AcquirePlayerID: "p1"}},
		{name: "no players", userID: memory.UserIDSharksOwner, req: MoveRequest{LeagueID: memory.LeagueIDMainStreet}},
		{name: "same player", userID: memory.UserIDSharksOwner, req: MoveRequest{LeagueID: memory.LeagueIDMainStreet, AcquirePlayerID: "p1", ReleasePlayerID: "p1"}},
		{name: "bad kind", userID: memory.UserIDSharksOwner, req: MoveRequest{LeagueID: memory.LeagueIDMainStreet, AcquirePlayerID: "p1", Kind: "loan"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.ExecuteMove(t.Context(), tt.userID, tt.req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestExecuteMove_UnknownLeague(t *testing.T) {
	fx := newMoveFixture(t)

	_, err := fx.service.ExecuteMove(context.Background(), memory.UserIDSharksOwner, MoveRequest{
		LeagueID:        "no-such-league",
		AcquirePlayerID: "p1",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
