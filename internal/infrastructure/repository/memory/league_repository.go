package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[string]league.League
	orders []string
}

func NewLeagueRepository(items []league.League) *LeagueRepository {
	repo := &LeagueRepository{
		items:  make(map[string]league.League, len(items)),
		orders: make([]string, 0, len(items)),
	}
	for _, item := range items {
		repo.items[item.ID] = item
		repo.orders = append(repo.orders, item.ID)
	}
	return repo
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		items = append(items, r.items[id])
	}
	return items, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	return item, ok, nil
}
