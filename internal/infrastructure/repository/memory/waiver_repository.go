package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

// WaiverStore holds claims, priorities, and windows together because the
// pending-claim ordering joins claims against priority ranks. The three
// repository views share this store.
type WaiverStore struct {
	mu          sync.Mutex
	claims      []waiver.Claim
	priorities  map[string][]waiver.Priority // leagueID -> ranked
	windows     []waiver.Window
	leagueLocks map[string]bool
	nextClaimID int64
	nextWindow  int64
}

func NewWaiverStore() *WaiverStore {
	return &WaiverStore{
		priorities:  make(map[string][]waiver.Priority),
		leagueLocks: make(map[string]bool),
		nextClaimID: 1,
		nextWindow:  1,
	}
}

func (s *WaiverStore) rankOf(leagueID, teamID string) (int, bool) {
	for _, p := range s.priorities[leagueID] {
		if p.TeamID == teamID {
			return p.Rank, true
		}
	}
	return 0, false
}

// ClaimRepository is the claim view over a WaiverStore.
type ClaimRepository struct {
	store *WaiverStore
}

func NewClaimRepository(store *WaiverStore) *ClaimRepository {
	return &ClaimRepository{store: store}
}

func (r *ClaimRepository) Submit(_ context.Context, claim waiver.Claim) (waiver.Claim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	claim.ID = r.store.nextClaimID
	r.store.nextClaimID++
	claim.State = waiver.ClaimPending
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now().UTC()
	}
	r.store.claims = append(r.store.claims, claim)
	return claim, nil
}

func (r *ClaimRepository) GetByPublicID(_ context.Context, publicID string) (waiver.Claim, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, claim := range r.store.claims {
		if claim.PublicID == publicID {
			return claim, true, nil
		}
	}
	return waiver.Claim{}, false, nil
}

func (r *ClaimRepository) ListByLeague(_ context.Context, leagueID string, states []waiver.ClaimState, limit int) ([]waiver.Claim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	wanted := make(map[waiver.ClaimState]bool, len(states))
	for _, state := range states {
		wanted[state] = true
	}

	items := make([]waiver.Claim, 0)
	for i := len(r.store.claims) - 1; i >= 0; i-- {
		claim := r.store.claims[i]
		if claim.LeagueID != leagueID {
			continue
		}
		if len(wanted) > 0 && !wanted[claim.State] {
			continue
		}
		items = append(items, claim)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (r *ClaimRepository) ListPendingOrdered(_ context.Context, leagueID string, policy waiver.Policy, limit int) ([]waiver.Claim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := make([]waiver.Claim, 0)
	for _, claim := range r.store.claims {
		if claim.LeagueID != leagueID || claim.State != waiver.ClaimPending {
			continue
		}
		if rank, ok := r.store.rankOf(leagueID, claim.TeamID); ok {
			claim.PrioritySnapshot = rank
		} else if policy == waiver.PolicyReverseStandings {
			claim.PrioritySnapshot = 0
		} else {
			claim.PrioritySnapshot = int(^uint(0) >> 1)
		}
		items = append(items, claim)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PrioritySnapshot != items[j].PrioritySnapshot {
			if policy == waiver.PolicyReverseStandings {
				return items[i].PrioritySnapshot > items[j].PrioritySnapshot
			}
			return items[i].PrioritySnapshot < items[j].PrioritySnapshot
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *ClaimRepository) Cancel(_ context.Context, publicID, teamID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.claims {
		claim := &r.store.claims[i]
		if claim.PublicID != publicID || claim.TeamID != teamID {
			continue
		}
		if claim.State != waiver.ClaimPending {
			return false, nil
		}
		now := time.Now().UTC()
		claim.State = waiver.ClaimCancelled
		claim.ProcessedAt = &now
		return true, nil
	}
	return false, nil
}

func (r *ClaimRepository) Resolve(_ context.Context, claimID int64, state waiver.ClaimState, prioritySnapshot int, failureReason string, processedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.claims {
		claim := &r.store.claims[i]
		if claim.ID != claimID || claim.State != waiver.ClaimPending {
			continue
		}
		claim.State = state
		claim.PrioritySnapshot = prioritySnapshot
		claim.FailureReason = failureReason
		processedAt = processedAt.UTC()
		claim.ProcessedAt = &processedAt
		return nil
	}
	return nil
}

func (r *ClaimRepository) AcquireLeagueLock(_ context.Context, leagueID string) (func(), bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.leagueLocks[leagueID] {
		return nil, false, nil
	}
	r.store.leagueLocks[leagueID] = true

	release := func() {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
		delete(r.store.leagueLocks, leagueID)
	}
	return release, true, nil
}

// PriorityRepository is the priority view over a WaiverStore.
type PriorityRepository struct {
	store *WaiverStore
}

func NewPriorityRepository(store *WaiverStore) *PriorityRepository {
	return &PriorityRepository{store: store}
}

func (r *PriorityRepository) ListByLeague(_ context.Context, leagueID string) ([]waiver.Priority, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := append([]waiver.Priority(nil), r.store.priorities[leagueID]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })
	return items, nil
}

func (r *PriorityRepository) GetRank(_ context.Context, leagueID, teamID string) (int, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rank, ok := r.store.rankOf(leagueID, teamID)
	return rank, ok, nil
}

func (r *PriorityRepository) RotateToBack(_ context.Context, leagueID, teamID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ranked := r.store.priorities[leagueID]
	current, ok := 0, false
	for _, p := range ranked {
		if p.TeamID == teamID {
			current, ok = p.Rank, true
			break
		}
	}
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	max := 0
	for _, p := range ranked {
		if p.Rank > max {
			max = p.Rank
		}
	}
	for i := range ranked {
		switch {
		case ranked[i].TeamID == teamID:
			ranked[i].Rank = max
			ranked[i].UpdatedAt = now
		case ranked[i].Rank > current:
			ranked[i].Rank--
			ranked[i].UpdatedAt = now
		}
	}
	r.store.priorities[leagueID] = ranked
	return nil
}

func (r *PriorityRepository) Seed(_ context.Context, leagueID string, teamIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for i, teamID := range teamIDs {
		if _, exists := r.store.rankOf(leagueID, teamID); exists {
			continue
		}
		r.store.priorities[leagueID] = append(r.store.priorities[leagueID], waiver.Priority{
			LeagueID:  leagueID,
			TeamID:    teamID,
			Rank:      i + 1,
			UpdatedAt: now,
		})
	}
	return nil
}

// WindowRepository is the waiver-window view over a WaiverStore.
type WindowRepository struct {
	store *WaiverStore
}

func NewWindowRepository(store *WaiverStore) *WindowRepository {
	return &WindowRepository{store: store}
}

func (r *WindowRepository) Open(_ context.Context, leagueID, playerID string, openedAt, expiresAt time.Time) (waiver.Window, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, window := range r.store.windows {
		if window.LeagueID == leagueID && window.PlayerID == playerID && window.ClearedAt == nil {
			return window, nil
		}
	}

	window := waiver.Window{
		ID:        r.store.nextWindow,
		LeagueID:  leagueID,
		PlayerID:  playerID,
		OpenedAt:  openedAt.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	r.store.nextWindow++
	r.store.windows = append(r.store.windows, window)
	return window, nil
}

func (r *WindowRepository) Get(_ context.Context, leagueID, playerID string, now time.Time) (waiver.Window, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.windows {
		window := &r.store.windows[i]
		if window.LeagueID != leagueID || window.PlayerID != playerID || window.ClearedAt != nil {
			continue
		}
		if !window.ExpiresAt.After(now) {
			cleared := now.UTC()
			window.ClearedAt = &cleared
			return waiver.Window{}, false, nil
		}
		return *window, true, nil
	}
	return waiver.Window{}, false, nil
}

func (r *WindowRepository) Clear(_ context.Context, leagueID, playerID string, clearedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.windows {
		window := &r.store.windows[i]
		if window.LeagueID == leagueID && window.PlayerID == playerID && window.ClearedAt == nil {
			cleared := clearedAt.UTC()
			window.ClearedAt = &cleared
			return true, nil
		}
	}
	return false, nil
}

func (r *WindowRepository) ClearExpired(_ context.Context, leagueID string, now time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cleared := 0
	clearedAt := now.UTC()
	for i := range r.store.windows {
		window := &r.store.windows[i]
		if window.LeagueID != leagueID || window.ClearedAt != nil {
			continue
		}
		if !window.ExpiresAt.After(now) {
			window.ClearedAt = &clearedAt
			cleared++
		}
	}
	return cleared, nil
}

func (r *WindowRepository) ListOpen(_ context.Context, leagueID string, now time.Time) ([]waiver.Window, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := make([]waiver.Window, 0)
	for _, window := range r.store.windows {
		if window.LeagueID == leagueID && window.ClearedAt == nil && window.ExpiresAt.After(now) {
			items = append(items, window)
		}
	}
	return items, nil
}
