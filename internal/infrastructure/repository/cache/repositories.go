package cache

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
	"github.com/riskibarqy/waiverwire/internal/domain/team"
	basecache "github.com/riskibarqy/waiverwire/internal/platform/cache"
)

// LeagueRepository is a read-through cache over league settings. Settings
// gate every move and claim, so they are the hottest read in the system.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	key := "team:list:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, leagueID, teamID string) (team.Team, bool, error) {
	key := "team:id:" + leagueID + ":" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

// LineupRepository caches the lineup-slot projections and invalidates on
// writes. Roster moves prune slots in storage directly, so move handlers
// also call InvalidateTeam.
type LineupRepository struct {
	next  lineup.Repository
	cache *basecache.Store
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store) *LineupRepository {
	return &LineupRepository{next: next, cache: cache}
}

func (r *LineupRepository) GetByTeam(ctx context.Context, leagueID, teamID string) (lineup.Slots, bool, error) {
	key := lineupSlotsKey(leagueID, teamID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByTeam(ctx, leagueID, teamID)
		if err != nil {
			return nil, err
		}
		return cachedSlotsByTeam{value: cloneSlots(item), exists: exists}, nil
	})
	if err != nil {
		return lineup.Slots{}, false, err
	}

	cached, _ := v.(cachedSlotsByTeam)
	return cloneSlots(cached.value), cached.exists, nil
}

func (r *LineupRepository) ListByLeague(ctx context.Context, leagueID string) ([]lineup.Slots, error) {
	key := "lineup:list:league:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		out := make([]lineup.Slots, 0, len(items))
		for _, item := range items {
			out = append(out, cloneSlots(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]lineup.Slots)
	out := make([]lineup.Slots, 0, len(items))
	for _, item := range items {
		out = append(out, cloneSlots(item))
	}
	return out, nil
}

func (r *LineupRepository) Upsert(ctx context.Context, slots lineup.Slots) error {
	if err := r.next.Upsert(ctx, slots); err != nil {
		return err
	}
	r.InvalidateTeam(ctx, slots.LeagueID, slots.TeamID)
	return nil
}

func (r *LineupRepository) InvalidateTeam(ctx context.Context, leagueID, teamID string) {
	r.cache.Delete(ctx, lineupSlotsKey(leagueID, teamID))
	r.cache.Delete(ctx, "lineup:list:league:"+leagueID)
}

// WarmLeague drops and re-primes every cached lineup for the league in
// parallel. Best effort: the first load error wins, nothing retries.
func (r *LineupRepository) WarmLeague(ctx context.Context, leagueID string, teamIDs []string) error {
	r.cache.Delete(ctx, "lineup:list:league:"+leagueID)

	workers := pool.New().WithErrors().WithMaxGoroutines(4)
	for _, teamID := range teamIDs {
		teamID := teamID
		workers.Go(func() error {
			r.cache.Delete(ctx, lineupSlotsKey(leagueID, teamID))
			_, _, err := r.GetByTeam(ctx, leagueID, teamID)
			return err
		})
	}
	return workers.Wait()
}

type cachedSlotsByTeam struct {
	value  lineup.Slots
	exists bool
}

func cloneSlots(item lineup.Slots) lineup.Slots {
	out := item
	out.StarterIDs = append([]string(nil), item.StarterIDs...)
	out.BenchIDs = append([]string(nil), item.BenchIDs...)
	out.InjuredReserveIDs = append([]string(nil), item.InjuredReserveIDs...)
	return out
}

func lineupSlotsKey(leagueID, teamID string) string {
	return "lineup:slots:" + leagueID + ":" + teamID
}
