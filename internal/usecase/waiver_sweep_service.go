package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/waiverwire/internal/domain/league"
)

const (
	defaultSweepWorkerCount = 2
	maxSweepWorkerCount     = 4
)

// ClaimBatchProcessor runs the waiver batch for one league.
type ClaimBatchProcessor interface {
	ProcessClaims(ctx context.Context, leagueID string) (ProcessReport, error)
}

// WaiverSweepService runs the claim batch across leagues on a worker
// pool, so a stuck league cannot stall the rest. Each league's run
// clears its expired windows and awards its pending claims.
type WaiverSweepService struct {
	leagues     league.Repository
	processor   ClaimBatchProcessor
	workerCount int
	now         func() time.Time
}

func NewWaiverSweepService(leagues league.Repository, processor ClaimBatchProcessor, workerCount int) *WaiverSweepService {
	return &WaiverSweepService{
		leagues:     leagues,
		processor:   processor,
		workerCount: workerCount,
		now:         time.Now,
	}
}

type SweepRow struct {
	LeagueID     string
	Skipped      bool
	Cleared      int
	Processed    int
	Awarded      int
	FailedClaims int
	Status       string
	ErrorMessage string
	DurationMs   int64
}

type SweepReport struct {
	StartedAt time.Time
	Succeeded int
	Failed    int
	Rows      []SweepRow
}

// Sweep processes claims for one league, or for every league when
// leagueID is empty.
func (s *WaiverSweepService) Sweep(ctx context.Context, leagueID string) (SweepReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverSweepService.Sweep")
	defer span.End()

	targets, err := s.pickLeagues(ctx, strings.TrimSpace(leagueID))
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{StartedAt: s.now().UTC()}
	if len(targets) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(normalizeSweepWorkerCount(s.workerCount, len(targets)))
	if err != nil {
		return SweepReport{}, fmt.Errorf("create sweep worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers   sync.WaitGroup
		succeeded atomic.Int32
		failed    atomic.Int32
	)
	results := make(chan SweepRow, len(targets))

	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			leagueReport, sweepErr := s.processor.ProcessClaims(ctx, target.ID)
			row := SweepRow{
				LeagueID:     target.ID,
				Skipped:      leagueReport.Skipped,
				Cleared:      leagueReport.WindowsCleared,
				Processed:    leagueReport.Processed,
				Awarded:      leagueReport.Awarded,
				FailedClaims: leagueReport.Failed,
				Status:       "success",
				DurationMs:   time.Since(start).Milliseconds(),
			}
			if sweepErr != nil {
				row.Status = "failed"
				row.ErrorMessage = sweepErr.Error()
				failed.Add(1)
			} else {
				succeeded.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return SweepReport{}, fmt.Errorf("submit sweep task league=%s: %w", target.ID, err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		report.Rows = append(report.Rows, row)
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].LeagueID < report.Rows[j].LeagueID
	})

	report.Succeeded = int(succeeded.Load())
	report.Failed = int(failed.Load())
	return report, nil
}

func (s *WaiverSweepService) pickLeagues(ctx context.Context, leagueID string) ([]league.League, error) {
	if leagueID == "" {
		items, err := s.leagues.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list leagues: %w", err)
		}
		return items, nil
	}

	item, exists, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load league %s: %w", leagueID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return []league.League{item}, nil
}

func normalizeSweepWorkerCount(configured, taskCount int) int {
	count := configured
	if count <= 0 {
		count = defaultSweepWorkerCount
	}
	if count > maxSweepWorkerCount {
		count = maxSweepWorkerCount
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	return count
}
