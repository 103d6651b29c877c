package httpapi

import (
	"net/http"
	"strings"

	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/domain/team"
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	item, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) ListTeamsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamsByLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	teams, err := h.leagueService.ListTeams(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type leagueDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Season      string `json:"season"`
	TeamCount   int    `json:"teamCount"`
	TotalRounds int    `json:"totalRounds"`
	ScoringType string `json:"scoringType"`
}

type teamDTO struct {
	ID           string `json:"id"`
	LeagueID     string `json:"leagueId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	OwnerName    string `json:"ownerName,omitempty"`
	DraftSlot    int    `json:"draftSlot"`
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:          v.ID,
		Name:        v.Name,
		Season:      v.Season,
		TeamCount:   v.TeamCount,
		TotalRounds: v.TotalRounds,
		ScoringType: v.ScoringType,
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:           v.ID,
		LeagueID:     v.LeagueID,
		Name:         v.Name,
		Abbreviation: v.Abbreviation,
		OwnerName:    v.OwnerName,
		DraftSlot:    v.DraftSlot,
	}
}
