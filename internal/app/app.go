package app

import (
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/riskibarqy/waiverwire/internal/config"
	"github.com/riskibarqy/waiverwire/internal/domain/league"
	"github.com/riskibarqy/waiverwire/internal/domain/lineup"
	"github.com/riskibarqy/waiverwire/internal/domain/team"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/jobqueue"
	cacherepo "github.com/riskibarqy/waiverwire/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/waiverwire/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/waiverwire/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/waiverwire/internal/platform/cache"
	idgen "github.com/riskibarqy/waiverwire/internal/platform/id"
	"github.com/riskibarqy/waiverwire/internal/platform/logging"
	"github.com/riskibarqy/waiverwire/internal/platform/resilience"
	"github.com/riskibarqy/waiverwire/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var leagueRepo league.Repository = postgres.NewLeagueRepository(db)
	var teamRepo team.Repository = postgres.NewTeamRepository(db)
	var lineupRepo lineup.Repository = postgres.NewLineupRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	rosterRepo := postgres.NewRosterRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	failedAttemptRepo := postgres.NewFailedAttemptRepository(db)
	claimRepo := postgres.NewWaiverClaimRepository(db)
	priorityRepo := postgres.NewWaiverPriorityRepository(db)
	windowRepo := postgres.NewWaiverWindowRepository(db)
	jobDispatchRepo := postgres.NewJobDispatchRepository(db)

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		leagueRepo = cacherepo.NewLeagueRepository(leagueRepo, store)
		teamRepo = cacherepo.NewTeamRepository(teamRepo, store)
		lineupRepo = cacherepo.NewLineupRepository(lineupRepo, store)
	}

	ids := idgen.NewRandomGenerator()

	moveSvc := usecase.NewMoveService(
		leagueRepo,
		membershipRepo,
		rosterRepo,
		windowRepo,
		failedAttemptRepo,
		ids,
	)
	rosterSvc := usecase.NewRosterService(
		leagueRepo,
		teamRepo,
		membershipRepo,
		rosterRepo,
		transactionRepo,
		failedAttemptRepo,
		lineupRepo,
	)
	waiverSvc := usecase.NewWaiverService(
		leagueRepo,
		membershipRepo,
		rosterRepo,
		claimRepo,
		priorityRepo,
		windowRepo,
		ids,
	)
	processSvc := usecase.NewWaiverProcessService(
		leagueRepo,
		claimRepo,
		priorityRepo,
		windowRepo,
		rosterRepo,
		failedAttemptRepo,
		ids,
		logging.Default(),
		cfg.WaiverBatchSize,
	)
	sweepSvc := usecase.NewWaiverSweepService(leagueRepo, processSvc, cfg.WaiverSweepWorkers)

	var queue usecase.JobQueue = usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}
	schedulerSvc := usecase.NewWaiverSchedulerService(
		leagueRepo,
		queue,
		jobDispatchRepo,
		logging.Default(),
		cfg.WaiverScheduleInterval,
	)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		anubis.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(
		moveSvc,
		rosterSvc,
		waiverSvc,
		processSvc,
		sweepSvc,
		schedulerSvc,
		jobDispatchRepo,
		logging.Default(),
	)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
