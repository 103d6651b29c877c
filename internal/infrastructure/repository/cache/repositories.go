package cache

import (
	"context"

	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/domain/team"
	basecache "github.com/draftline/draftline/internal/platform/cache"
)

// loadTyped runs a typed loader through the store's GetOrLoad, so
// concurrent misses for one key collapse into a single upstream call.
func loadTyped[T any](ctx context.Context, store *basecache.Store, key string, loader func(context.Context) (T, error)) (T, error) {
	v, err := store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := v.(T)
	return typed, nil
}

type lookup[T any] struct {
	Value  T
	Exists bool
}

// LeagueRepository is a read-through cache over the league catalog.
type LeagueRepository struct {
	next  league.Repository
	store *basecache.Store
}

func NewLeagueRepository(next league.Repository, store *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, store: store}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	items, err := loadTyped(ctx, r.store, "league:list", func(ctx context.Context) ([]league.League, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	found, err := loadTyped(ctx, r.store, "league:id:"+leagueID, func(ctx context.Context) (lookup[league.League], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return lookup[league.League]{Value: item, Exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return found.Value, found.Exists, nil
}

// TeamRepository is a read-through cache over per-league team rosters.
type TeamRepository struct {
	next  team.Repository
	store *basecache.Store
}

func NewTeamRepository(next team.Repository, store *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, store: store}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	items, err := loadTyped(ctx, r.store, "team:list:"+leagueID, func(ctx context.Context) ([]team.Team, error) {
		return r.next.ListByLeague(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, leagueID, teamID string) (team.Team, bool, error) {
	found, err := loadTyped(ctx, r.store, "team:id:"+leagueID+":"+teamID, func(ctx context.Context) (lookup[team.Team], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID, teamID)
		return lookup[team.Team]{Value: item, Exists: exists}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return found.Value, found.Exists, nil
}
