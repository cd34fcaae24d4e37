package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/roster"
)

// RosterRepository keeps assignments, the audit trail, and failed
// attempts behind one mutex so ExecuteMove stays atomic, mirroring the
// single-transaction behavior of the SQL implementation. The audit and
// failure views hang off the same store.
type RosterRepository struct {
	mu             sync.Mutex
	assignments    map[string]roster.Assignment // leagueID::playerID
	transactions   []roster.Transaction
	failedAttempts []roster.FailedAttempt
	nextTxID       int64
}

func NewRosterRepository(items []roster.Assignment) *RosterRepository {
	repo := &RosterRepository{
		assignments: make(map[string]roster.Assignment, len(items)),
		nextTxID:    1,
	}
	for _, item := range items {
		repo.assignments[assignmentKey(item.LeagueID, item.PlayerID)] = item
	}
	return repo
}

func assignmentKey(leagueID, playerID string) string {
	return leagueID + "::" + playerID
}

func (r *RosterRepository) ExecuteMove(_ context.Context, cmd roster.MoveCommand) (roster.MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	result := roster.MoveResult{Status: roster.MoveSuccess, OccurredAt: now}

	var staged []roster.Transaction

	if cmd.ReleasePlayerID != "" {
		key := assignmentKey(cmd.LeagueID, cmd.ReleasePlayerID)
		owned, ok := r.assignments[key]
		if !ok || owned.TeamID != cmd.TeamID {
			return roster.MoveResult{
				Status:     roster.MoveNotOwned,
				Reason:     fmt.Sprintf("player %s is not on the roster of team %s", cmd.ReleasePlayerID, cmd.TeamID),
				OccurredAt: now,
			}, nil
		}
		delete(r.assignments, key)
		staged = append(staged, roster.Transaction{
			PublicID:   cmd.ReleaseTxPublicID,
			LeagueID:   cmd.LeagueID,
			TeamID:     cmd.TeamID,
			UserID:     cmd.UserID,
			PlayerID:   cmd.ReleasePlayerID,
			Kind:       roster.KindRelease,
			Note:       cmd.Note,
			OccurredAt: now,
		})
		result.TransactionIDs = append(result.TransactionIDs, cmd.ReleaseTxPublicID)
	}

	if cmd.AcquirePlayerID != "" {
		// Cap first, then exclusivity, matching the SQL order: the count
		// check precedes the insert that trips the unique constraint.
		if count := r.countLocked(cmd.LeagueID, cmd.TeamID); cmd.RosterCap > 0 && count >= cmd.RosterCap {
			r.undoRelease(staged, cmd)
			return roster.MoveResult{
				Status:     roster.MoveRosterFull,
				Reason:     fmt.Sprintf("team %s already holds %d of %d players", cmd.TeamID, count, cmd.RosterCap),
				OccurredAt: now,
			}, nil
		}
		key := assignmentKey(cmd.LeagueID, cmd.AcquirePlayerID)
		if _, taken := r.assignments[key]; taken {
			r.undoRelease(staged, cmd)
			return roster.MoveResult{
				Status:     roster.MoveDuplicatePlayer,
				Reason:     fmt.Sprintf("player %s is already owned in league %s", cmd.AcquirePlayerID, cmd.LeagueID),
				OccurredAt: now,
			}, nil
		}
		r.assignments[key] = roster.Assignment{
			LeagueID:   cmd.LeagueID,
			TeamID:     cmd.TeamID,
			PlayerID:   cmd.AcquirePlayerID,
			AcquiredAt: now,
		}
		staged = append(staged, roster.Transaction{
			PublicID:   cmd.AcquireTxPublicID,
			LeagueID:   cmd.LeagueID,
			TeamID:     cmd.TeamID,
			UserID:     cmd.UserID,
			PlayerID:   cmd.AcquirePlayerID,
			Kind:       cmd.AcquireKind,
			Note:       cmd.Note,
			OccurredAt: now,
		})
		result.TransactionIDs = append(result.TransactionIDs, cmd.AcquireTxPublicID)
	}

	for _, tx := range staged {
		tx.ID = r.nextTxID
		r.nextTxID++
		r.transactions = append(r.transactions, tx)
	}
	return result, nil
}

// undoRelease restores the staged release when the acquire leg fails,
// keeping the whole move atomic.
func (r *RosterRepository) undoRelease(staged []roster.Transaction, cmd roster.MoveCommand) {
	for _, tx := range staged {
		if tx.Kind != roster.KindRelease {
			continue
		}
		r.assignments[assignmentKey(cmd.LeagueID, tx.PlayerID)] = roster.Assignment{
			LeagueID:   cmd.LeagueID,
			TeamID:     cmd.TeamID,
			PlayerID:   tx.PlayerID,
			AcquiredAt: tx.OccurredAt,
		}
	}
}

func (r *RosterRepository) countLocked(leagueID, teamID string) int {
	count := 0
	for _, item := range r.assignments {
		if item.LeagueID == leagueID && item.TeamID == teamID {
			count++
		}
	}
	return count
}

func (r *RosterRepository) ListByTeam(_ context.Context, leagueID, teamID string) ([]roster.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]roster.Assignment, 0)
	for _, item := range r.assignments {
		if item.LeagueID == leagueID && item.TeamID == teamID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *RosterRepository) GetAssignment(_ context.Context, leagueID, playerID string) (roster.Assignment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.assignments[assignmentKey(leagueID, playerID)]
	return item, ok, nil
}

func (r *RosterRepository) CountByTeam(_ context.Context, leagueID, teamID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(leagueID, teamID), nil
}

func (r *RosterRepository) listTransactions(leagueID, teamID string, limit int) []roster.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]roster.Transaction, 0)
	for i := len(r.transactions) - 1; i >= 0; i-- {
		tx := r.transactions[i]
		if tx.LeagueID != leagueID {
			continue
		}
		if teamID != "" && tx.TeamID != teamID {
			continue
		}
		items = append(items, tx)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items
}

// TransactionRepository is the audit-trail view over a RosterRepository.
type TransactionRepository struct {
	store *RosterRepository
}

func NewTransactionRepository(store *RosterRepository) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) ListByLeague(_ context.Context, leagueID string, limit int) ([]roster.Transaction, error) {
	return r.store.listTransactions(leagueID, "", limit), nil
}

func (r *TransactionRepository) ListByTeam(_ context.Context, leagueID, teamID string, limit int) ([]roster.Transaction, error) {
	return r.store.listTransactions(leagueID, teamID, limit), nil
}

// FailedAttemptRepository is the failure-trail view over a
// RosterRepository.
type FailedAttemptRepository struct {
	store *RosterRepository
}

func NewFailedAttemptRepository(store *RosterRepository) *FailedAttemptRepository {
	return &FailedAttemptRepository{store: store}
}

func (r *FailedAttemptRepository) Record(_ context.Context, attempt roster.FailedAttempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if attempt.OccurredAt.IsZero() {
		attempt.OccurredAt = time.Now().UTC()
	}
	attempt.ID = int64(len(r.store.failedAttempts) + 1)
	r.store.failedAttempts = append(r.store.failedAttempts, attempt)
	return nil
}

func (r *FailedAttemptRepository) ListByLeague(_ context.Context, leagueID string, limit int) ([]roster.FailedAttempt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := make([]roster.FailedAttempt, 0)
	for i := len(r.store.failedAttempts) - 1; i >= 0; i-- {
		if r.store.failedAttempts[i].LeagueID != leagueID {
			continue
		}
		items = append(items, r.store.failedAttempts[i])
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}
