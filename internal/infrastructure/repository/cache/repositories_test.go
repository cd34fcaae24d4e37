package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
	basecache "github.com/riskibarqy/waiverwire/internal/platform/cache"
)

type countingLeagueRepo struct {
	mu    sync.Mutex
	loads int
	items map[string]league.League
}

func (r *countingLeagueRepo) List(ctx context.Context) ([]league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	out := make([]league.League, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *countingLeagueRepo) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	item, ok := r.items[leagueID]
	return item, ok, nil
}

type countingLineupRepo struct {
	mu    sync.Mutex
	loads int
	slots map[string]lineup.Slots
}

func lineupKey(leagueID, teamID string) string {
	return leagueID + "/" + teamID
}

func (r *countingLineupRepo) GetByTeam(ctx context.Context, leagueID, teamID string) (lineup.Slots, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	item, ok := r.slots[lineupKey(leagueID, teamID)]
	return item, ok, nil
}

func (r *countingLineupRepo) ListByLeague(ctx context.Context, leagueID string) ([]lineup.Slots, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	out := make([]lineup.Slots, 0, len(r.slots))
	for _, item := range r.slots {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *countingLineupRepo) Upsert(ctx context.Context, slots lineup.Slots) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[lineupKey(slots.LeagueID, slots.TeamID)] = slots
	return nil
}

func TestLeagueRepository_CachesGetByID(t *testing.T) {
	t.Parallel()

	next := &countingLeagueRepo{items: map[string]league.League{
		"league-1": {ID: "league-1"},
	}}
	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		item, exists, err := repo.GetByID(context.Background(), "league-1")
		if err != nil {
			t.Fatalf("get league: %v", err)
		}
		if !exists || item.ID != "league-1" {
			t.Fatalf("unexpected result: %+v exists=%v", item, exists)
		}
	}

	if next.loads != 1 {
		t.Fatalf("expected one backing load, got %d", next.loads)
	}
}

func TestLineupRepository_UpsertInvalidates(t *testing.T) {
	t.Parallel()

	next := &countingLineupRepo{slots: map[string]lineup.Slots{
		lineupKey("league-1", "team-1"): {LeagueID: "league-1", TeamID: "team-1", StarterIDs: []string{"player-1"}},
	}}
	repo := NewLineupRepository(next, basecache.NewStore(time.Minute))

	if _, _, err := repo.GetByTeam(context.Background(), "league-1", "team-1"); err != nil {
		t.Fatalf("get slots: %v", err)
	}
	if _, _, err := repo.GetByTeam(context.Background(), "league-1", "team-1"); err != nil {
		t.Fatalf("get slots: %v", err)
	}
	if next.loads != 1 {
		t.Fatalf("expected one backing load before upsert, got %d", next.loads)
	}

	err := repo.Upsert(context.Background(), lineup.Slots{
		LeagueID:   "league-1",
		TeamID:     "team-1",
		StarterIDs: []string{"player-1", "player-2"},
	})
	if err != nil {
		t.Fatalf("upsert slots: %v", err)
	}

	item, exists, err := repo.GetByTeam(context.Background(), "league-1", "team-1")
	if err != nil {
		t.Fatalf("get slots after upsert: %v", err)
	}
	if !exists || len(item.StarterIDs) != 2 {
		t.Fatalf("expected refreshed slots, got %+v exists=%v", item, exists)
	}
	if next.loads != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", next.loads)
	}
}

func TestLineupRepository_WarmLeaguePrimesCache(t *testing.T) {
	t.Parallel()

	next := &countingLineupRepo{slots: map[string]lineup.Slots{
		lineupKey("league-1", "team-1"): {LeagueID: "league-1", TeamID: "team-1"},
		lineupKey("league-1", "team-2"): {LeagueID: "league-1", TeamID: "team-2"},
	}}
	repo := NewLineupRepository(next, basecache.NewStore(time.Minute))

	if err := repo.WarmLeague(context.Background(), "league-1", []string{"team-1", "team-2"}); err != nil {
		t.Fatalf("warm league: %v", err)
	}
	warmLoads := next.loads

	for _, teamID := range []string{"team-1", "team-2"} {
		if _, _, err := repo.GetByTeam(context.Background(), "league-1", teamID); err != nil {
			t.Fatalf("get slots: %v", err)
		}
	}

	if next.loads != warmLoads {
		t.Fatalf("expected warmed reads to hit the cache, got %d extra loads", next.loads-warmLoads)
	}
}
