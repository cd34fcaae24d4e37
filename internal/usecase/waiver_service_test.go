package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/waiverwire/internal/platform/id"
)

type waiverFixture struct {
	service *WaiverService
	store   *memory.WaiverStore
	claims  *memory.ClaimRepository
}

func newWaiverFixture(t *testing.T) waiverFixture {
	t.Helper()

	store := memory.NewWaiverStore()
	claims := memory.NewClaimRepository(store)

	service := NewWaiverService(
		memory.NewLeagueRepository(memory.SeedLeagues()),
		memory.NewMembershipRepository(memory.SeedMemberships()),
		memory.NewRosterRepository(memory.SeedAssignments()),
		claims,
		memory.NewPriorityRepository(store),
		memory.NewWindowRepository(store),
		id.NewRandomGenerator(),
	)

	return waiverFixture{service: service, store: store, claims: claims}
}

func TestSubmitClaim_Success(t *testing.T) {
	fx := newWaiverFixture(t)

	claim, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	if claim.PublicID == "" {
		t.Fatalf("expected a public id")
	}
	if claim.State != waiver.ClaimPending {
		t.Fatalf("expected pending claim, got %s", claim.State)
	}
	if claim.TeamID != memory.TeamIDOtters {
		t.Fatalf("expected claim for otters, got %s", claim.TeamID)
	}
}

func TestSubmitClaim_WithDropPlayer(t *testing.T) {
	fx := newWaiverFixture(t)

	claim, err := fx.service.SubmitClaim(t.Context(), memory.UserIDSharksOwner, ClaimRequest{
		LeagueID:     memory.LeagueIDMainStreet,
		PlayerID:     "player-te-9",
		DropPlayerID: "player-rb-1",
	})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	if claim.DropPlayerID != "player-rb-1" {
		t.Fatalf("expected drop player recorded, got %q", claim.DropPlayerID)
	}
}

func TestSubmitClaim_DropPlayerNotOnRoster(t *testing.T) {
	fx := newWaiverFixture(t)

	// player-wr-1 belongs to comets, not sharks.
	_, err := fx.service.SubmitClaim(t.Context(), memory.UserIDSharksOwner, ClaimRequest{
		LeagueID:     memory.LeagueIDMainStreet,
		PlayerID:     "player-te-9",
		DropPlayerID: "player-wr-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitClaim_DuplicatePendingRejected(t *testing.T) {
	fx := newWaiverFixture(t)

	claim, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}

	// Same team, same player, first claim still pending.
	_, err = fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate pending claim, got %v", err)
	}

	// A different team may queue up for the same player.
	if _, err := fx.service.SubmitClaim(t.Context(), memory.UserIDSharksOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	}); err != nil {
		t.Fatalf("submit competing claim: %v", err)
	}

	// Once the pending claim is gone, resubmitting works.
	if err := fx.service.CancelClaim(t.Context(), memory.UserIDOttersOwner, claim.PublicID); err != nil {
		t.Fatalf("cancel claim: %v", err)
	}
	if _, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	}); err != nil {
		t.Fatalf("resubmit after cancel: %v", err)
	}
}

func TestSubmitClaim_NoTeamInLeague(t *testing.T) {
	fx := newWaiverFixture(t)

	_, err := fx.service.SubmitClaim(t.Context(), "user-without-team", ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListClaims_StateFilter(t *testing.T) {
	fx := newWaiverFixture(t)

	if _, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	}); err != nil {
		t.Fatalf("submit claim: %v", err)
	}

	pending, err := fx.service.ListClaims(t.Context(), memory.LeagueIDMainStreet, []string{"pending"}, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending claim, got %d", len(pending))
	}

	failed, err := fx.service.ListClaims(t.Context(), memory.LeagueIDMainStreet, []string{"failed"}, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("expected no failed claims, got %d", len(failed))
	}

	if _, err := fx.service.ListClaims(t.Context(), memory.LeagueIDMainStreet, []string{"bogus"}, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown state, got %v", err)
	}
}

func TestCancelClaim(t *testing.T) {
	fx := newWaiverFixture(t)

	claim, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}

	if err := fx.service.CancelClaim(t.Context(), memory.UserIDOttersOwner, claim.PublicID); err != nil {
		t.Fatalf("cancel claim: %v", err)
	}

	got, exists, err := fx.claims.GetByPublicID(t.Context(), claim.PublicID)
	if err != nil || !exists {
		t.Fatalf("reload claim: exists=%v err=%v", exists, err)
	}
	if got.State != waiver.ClaimCancelled {
		t.Fatalf("expected cancelled, got %s", got.State)
	}

	// Cancelling again is rejected: the claim is no longer pending.
	if err := fx.service.CancelClaim(t.Context(), memory.UserIDOttersOwner, claim.PublicID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on second cancel, got %v", err)
	}
}

func TestCancelClaim_ForeignTeamRejected(t *testing.T) {
	fx := newWaiverFixture(t)

	claim, err := fx.service.SubmitClaim(t.Context(), memory.UserIDOttersOwner, ClaimRequest{
		LeagueID: memory.LeagueIDMainStreet,
		PlayerID: "player-te-9",
	})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}

	if err := fx.service.CancelClaim(t.Context(), memory.UserIDSharksOwner, claim.PublicID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	got, _, _ := fx.claims.GetByPublicID(t.Context(), claim.PublicID)
	if got.State != waiver.ClaimPending {
		t.Fatalf("expected claim untouched, got %s", got.State)
	}
}

func TestCancelClaim_UnknownClaim(t *testing.T) {
	fx := newWaiverFixture(t)

	if err := fx.service.CancelClaim(t.Context(), memory.UserIDOttersOwner, "missing-claim"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
