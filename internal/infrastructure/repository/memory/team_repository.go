package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/waiverwire/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items []team.Team
}

func NewTeamRepository(items []team.Team) *TeamRepository {
	return &TeamRepository{items: append([]team.Team(nil), items...)}
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *TeamRepository) GetByID(_ context.Context, leagueID, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.LeagueID == leagueID && item.ID == teamID {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

type MembershipRepository struct {
	mu    sync.RWMutex
	items []team.Membership
}

func NewMembershipRepository(items []team.Membership) *MembershipRepository {
	return &MembershipRepository{items: append([]team.Membership(nil), items...)}
}

func (r *MembershipRepository) GetByUserAndLeague(_ context.Context, userID, leagueID string) (team.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.LeagueID == leagueID {
			return item, true, nil
		}
	}
	return team.Membership{}, false, nil
}

func (r *MembershipRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]team.Membership, 0, len(r.items))
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			items = append(items, item)
		}
	}
	return items, nil
}
