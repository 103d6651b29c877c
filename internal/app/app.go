package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/draftline/draftline/external/leaguedata"
	"github.com/draftline/draftline/internal/config"
	cacherepo "github.com/draftline/draftline/internal/infrastructure/repository/cache"
	"github.com/draftline/draftline/internal/infrastructure/repository/memory"
	"github.com/draftline/draftline/internal/interfaces/httpapi"
	"github.com/draftline/draftline/internal/platform/cache"
	idgen "github.com/draftline/draftline/internal/platform/id"
	"github.com/draftline/draftline/internal/platform/logging"
	"github.com/draftline/draftline/internal/platform/resilience"
	"github.com/draftline/draftline/internal/usecase"
)

// App bundles the HTTP server with the background workers that share its
// lifetime: the cache sweeper and the draft reconciler's poll loops.
type App struct {
	Server *http.Server

	cfg        config.Config
	logger     *logging.Logger
	cacheStore *cache.Store
	reconciler *usecase.Reconciler
	leagueSvc  *usecase.LeagueService
	cancelBG   context.CancelFunc
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cacheStore := cache.NewStore(cfg.CacheTTL, cfg.CacheEnabled)

	leagueMem := memory.NewLeagueRepository(memory.SeedLeagues())
	teamMem := memory.NewTeamRepository(memory.SeedTeams())
	sessionRepo := memory.NewSessionRepository()

	leagueRepo := cacherepo.NewLeagueRepository(leagueMem, cacheStore)
	teamRepo := cacherepo.NewTeamRepository(teamMem, cacheStore)

	var provider usecase.LeagueProvider
	var fetcher usecase.DraftStatusFetcher
	if cfg.LeagueDataEnabled {
		client := leaguedata.NewClient(leaguedata.ClientConfig{
			BaseURL:    cfg.LeagueDataBaseURL,
			Token:      cfg.LeagueDataToken,
			Timeout:    cfg.LeagueDataTimeout,
			MaxRetries: cfg.LeagueDataMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.LeagueDataCircuitEnabled,
				FailureThreshold: cfg.LeagueDataCircuitFailureCount,
				OpenTimeout:      cfg.LeagueDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.LeagueDataCircuitHalfOpenMaxReq,
			},
		})
		provider = client
		fetcher = client
	} else {
		fetcher = seededDraftFeed{}
	}

	notifier := usecase.NewTurnNotifier(func(sessionID string) {
		logger.Info("user on the clock", "session_id", sessionID)
	})

	reconciler, err := usecase.NewReconciler(sessionRepo, fetcher, notifier, logger, usecase.ReconcilerConfig{
		PollInterval: cfg.DraftPollInterval,
		SyncErrorCap: cfg.DraftSyncErrorCap,
	})
	if err != nil {
		return nil, fmt.Errorf("build reconciler: %w", err)
	}

	leagueSvc := usecase.NewLeagueService(leagueRepo, teamRepo, provider, leagueMem, teamMem, logger)
	draftSvc := usecase.NewDraftService(sessionRepo, leagueRepo, reconciler, idgen.NewRandomGenerator(), logger, cfg.DraftPushEnabled)

	handler := httpapi.NewHandler(draftSvc, leagueSvc, cacheStore, logger)
	router := httpapi.NewRouter(handler, cacheStore, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:     server,
		cfg:        cfg,
		logger:     logger,
		cacheStore: cacheStore,
		reconciler: reconciler,
		leagueSvc:  leagueSvc,
	}, nil
}

// StartBackground launches the cache sweeper and performs the initial league
// catalog refresh. Workers stop when Shutdown runs.
func (a *App) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBG = cancel

	go a.cacheStore.RunSweeper(ctx, a.cfg.CacheSweepInterval, func(removed int) {
		if removed > 0 {
			a.logger.Info("cache sweep", "removed", removed)
		}
	})

	go func() {
		if err := a.leagueSvc.RefreshCatalog(ctx); err != nil {
			a.logger.Warn("initial league catalog refresh failed, serving seed data", "error", err)
		}
	}()
}

// Shutdown stops background workers and drains the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancelBG != nil {
		a.cancelBG()
	}
	a.reconciler.Close()

	return a.Server.Shutdown(ctx)
}

// seededDraftFeed stands in for the live provider when LEAGUEDATA_ENABLED is
// off: pulls succeed with an empty snapshot so local sessions keep working.
type seededDraftFeed struct{}

func (seededDraftFeed) FetchDraftStatus(context.Context, string) (usecase.LiveDraftStatus, error) {
	return usecase.LiveDraftStatus{}, nil
}
