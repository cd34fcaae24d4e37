package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
)

type LineupRepository struct {
	mu    sync.RWMutex
	items map[string]lineup.Slots // teamID::leagueID
}

func NewLineupRepository(items []lineup.Slots) *LineupRepository {
	repo := &LineupRepository{items: make(map[string]lineup.Slots, len(items))}
	for _, item := range items {
		repo.items[lineupKey(item.TeamID, item.LeagueID)] = cloneSlots(item)
	}
	return repo
}

func lineupKey(teamID, leagueID string) string {
	return teamID + "::" + leagueID
}

func cloneSlots(item lineup.Slots) lineup.Slots {
	out := item
	out.StarterIDs = append([]string(nil), item.StarterIDs...)
	out.BenchIDs = append([]string(nil), item.BenchIDs...)
	out.InjuredReserveIDs = append([]string(nil), item.InjuredReserveIDs...)
	return out
}

func (r *LineupRepository) GetByTeam(_ context.Context, leagueID, teamID string) (lineup.Slots, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[lineupKey(teamID, leagueID)]
	if !ok {
		return lineup.Slots{}, false, nil
	}
	return cloneSlots(item), true, nil
}

func (r *LineupRepository) ListByLeague(_ context.Context, leagueID string) ([]lineup.Slots, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]lineup.Slots, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			items = append(items, cloneSlots(item))
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].TeamID < items[j].TeamID })
	return items, nil
}

func (r *LineupRepository) Upsert(_ context.Context, slots lineup.Slots) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slots.UpdatedAt.IsZero() {
		slots.UpdatedAt = time.Now().UTC()
	}
	r.items[lineupKey(slots.TeamID, slots.LeagueID)] = cloneSlots(slots)
	return nil
}
