package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/draftline/draftline/internal/domain/team"
)

// TeamRepository keeps fantasy teams grouped per league. Listings come back
// in draft-slot order so callers can render the board columns directly.
type TeamRepository struct {
	mu      sync.RWMutex
	leagues map[string]map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{leagues: make(map[string]map[string]team.Team)}
	_ = r.UpsertTeams(context.Background(), teams)
	return r
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := r.leagues[leagueID]
	out := make([]team.Team, 0, len(byID))
	for _, item := range byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DraftSlot != out[j].DraftSlot {
			return out[i].DraftSlot < out[j].DraftSlot
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, leagueID, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.leagues[leagueID][teamID]
	return item, ok, nil
}

// UpsertTeams inserts or replaces teams keyed by (leagueID, teamID). Rows
// missing either key are skipped.
func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		leagueID := strings.TrimSpace(item.LeagueID)
		teamID := strings.TrimSpace(item.ID)
		if leagueID == "" || teamID == "" {
			continue
		}
		byID := r.leagues[leagueID]
		if byID == nil {
			byID = make(map[string]team.Team)
			r.leagues[leagueID] = byID
		}
		byID[teamID] = item
	}

	return nil
}
