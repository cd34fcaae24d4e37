package roster

import "context"

// Repository owns roster_assignments. ExecuteMove applies release and
// acquire in one storage transaction; any non-success result means the
// transaction rolled back and ownership is unchanged.
type Repository interface {
	ExecuteMove(ctx context.Context, cmd MoveCommand) (MoveResult, error)
	ListByTeam(ctx context.Context, leagueID, teamID string) ([]Assignment, error)
	GetAssignment(ctx context.Context, leagueID, playerID string) (Assignment, bool, error)
	CountByTeam(ctx context.Context, leagueID, teamID string) (int, error)
}

// TransactionRepository reads the append-only audit trail written by
// ExecuteMove.
type TransactionRepository interface {
	ListByLeague(ctx context.Context, leagueID string, limit int) ([]Transaction, error)
	ListByTeam(ctx context.Context, leagueID, teamID string, limit int) ([]Transaction, error)
}

// FailedAttemptRepository records rejected mutations. Writes happen
// outside the move transaction, after rollback.
type FailedAttemptRepository interface {
	Record(ctx context.Context, attempt FailedAttempt) error
	ListByLeague(ctx context.Context, leagueID string, limit int) ([]FailedAttempt, error)
}
