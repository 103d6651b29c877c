package usecase

import (
	"context"
	"fmt"

	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/domain/team"
	"github.com/draftline/draftline/internal/platform/logging"
)

// LeagueProvider is the league-data service surface the catalog refresh
// consumes.
type LeagueProvider interface {
	ListLeagues(ctx context.Context) ([]league.League, error)
	ListTeams(ctx context.Context, leagueID string) ([]team.Team, error)
}

// LeagueCatalogWriter accepts refreshed provider data.
type LeagueCatalogWriter interface {
	UpsertLeagues(ctx context.Context, leagues []league.League) error
}

// TeamCatalogWriter accepts refreshed provider data.
type TeamCatalogWriter interface {
	UpsertTeams(ctx context.Context, teams []team.Team) error
}

// LeagueService serves the read-only league and team catalog. Reads go
// through the caching repositories; RefreshCatalog re-pulls from the
// provider into the backing store.
type LeagueService struct {
	leagues      league.Repository
	teams        team.Repository
	provider     LeagueProvider
	leagueWriter LeagueCatalogWriter
	teamWriter   TeamCatalogWriter
	logger       *logging.Logger
}

func NewLeagueService(
	leagues league.Repository,
	teams team.Repository,
	provider LeagueProvider,
	leagueWriter LeagueCatalogWriter,
	teamWriter TeamCatalogWriter,
	logger *logging.Logger,
) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		leagues:      leagues,
		teams:        teams,
		provider:     provider,
		leagueWriter: leagueWriter,
		teamWriter:   teamWriter,
		logger:       logger,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	return s.leagues.List(ctx)
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	item, found, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return item, nil
}

func (s *LeagueService) ListTeams(ctx context.Context, leagueID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListTeams")
	defer span.End()

	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	return s.teams.ListByLeague(ctx, leagueID)
}

// RefreshCatalog pulls the league and team catalog from the provider into
// the backing store. Failures leave the previous catalog in place.
func (s *LeagueService) RefreshCatalog(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.RefreshCatalog")
	defer span.End()

	if s.provider == nil {
		return nil
	}

	leagues, err := s.provider.ListLeagues(ctx)
	if err != nil {
		return fmt.Errorf("list provider leagues: %w", err)
	}
	if s.leagueWriter != nil {
		if err := s.leagueWriter.UpsertLeagues(ctx, leagues); err != nil {
			return fmt.Errorf("store leagues: %w", err)
		}
	}

	refreshedTeams := 0
	for _, item := range leagues {
		teams, err := s.provider.ListTeams(ctx, item.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "team refresh failed for league, keeping stored teams",
				"league_id", item.ID, "error", err)
			continue
		}
		if s.teamWriter != nil {
			if err := s.teamWriter.UpsertTeams(ctx, teams); err != nil {
				return fmt.Errorf("store teams for league %s: %w", item.ID, err)
			}
		}
		refreshedTeams += len(teams)
	}

	s.logger.InfoContext(ctx, "league catalog refreshed",
		"leagues", len(leagues), "teams", refreshedTeams)
	return nil
}
