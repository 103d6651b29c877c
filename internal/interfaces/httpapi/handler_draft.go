package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/draftline/draftline/internal/domain/draftboard"
	"github.com/draftline/draftline/internal/domain/draftsession"
	"github.com/draftline/draftline/internal/usecase"
)

func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartDraft")
	defer span.End()

	var req startDraftRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.draftService.StartSession(ctx, usecase.StartSessionInput{
		LeagueID:         req.LeagueID,
		UserPickPosition: req.UserPickPosition,
		UserTeamID:       req.UserTeamID,
		TotalRounds:      req.TotalRounds,
		TeamCount:        req.TeamCount,
		LiveSynced:       req.LiveSynced,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start draft failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(session))
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraft")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	session, err := h.draftService.GetSession(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(session))
}

func (h *Handler) RecordPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPick")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req pickRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.draftService.RecordManualPick(ctx, sessionID, req.toEvent())
	if err != nil {
		h.logger.WarnContext(ctx, "record pick failed",
			"session_id", sessionID, "pick_number", req.PickNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(session))
}

func (h *Handler) IngestDraftEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestDraftEvent")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req draftEventRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		session draftsession.Session
		err     error
	)
	switch req.Type {
	case draftEventTypePick:
		if req.Pick == nil {
			writeError(ctx, w, fmt.Errorf("%w: pick payload is required for pick events", usecase.ErrInvalidInput))
			return
		}
		session, err = h.draftService.IngestPickEvent(ctx, sessionID, req.Pick.toEvent())
	case draftEventTypeTurn:
		session, err = h.draftService.IngestTurnEvent(ctx, sessionID, req.OnClock)
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown event type %q", usecase.ErrInvalidInput, req.Type))
		return
	}
	if err != nil {
		h.logger.WarnContext(ctx, "draft event rejected",
			"session_id", sessionID, "event_type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, sessionToDTO(session))
}

func (h *Handler) ToggleDraftSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleDraftSync")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req toggleSyncRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.draftService.ToggleSync(ctx, sessionID, req.Enabled)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(session))
}

func (h *Handler) GetDraftLiveStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraftLiveStatus")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	view, err := h.draftService.LiveStatus(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveViewToDTO(view))
}

const (
	draftEventTypePick = "pick"
	draftEventTypeTurn = "turn"
)

type startDraftRequest struct {
	LeagueID         string `json:"leagueId" validate:"required"`
	UserPickPosition int    `json:"userPickPosition" validate:"required,min=1"`
	UserTeamID       string `json:"userTeamId"`
	TotalRounds      int    `json:"totalRounds" validate:"min=0"`
	TeamCount        int    `json:"teamCount" validate:"min=0"`
	LiveSynced       bool   `json:"liveSynced"`
}

type pickRequest struct {
	PlayerID   string `json:"playerId" validate:"required"`
	PlayerName string `json:"playerName" validate:"required"`
	Position   string `json:"position"`
	Team       string `json:"team"`
	PickNumber int    `json:"pickNumber" validate:"required,min=1"`
	TeamID     string `json:"teamId"`
}

func (p pickRequest) toEvent() usecase.LivePickEvent {
	return usecase.LivePickEvent{
		PlayerID:   p.PlayerID,
		PlayerName: p.PlayerName,
		Position:   p.Position,
		Team:       p.Team,
		PickNumber: p.PickNumber,
		TeamID:     p.TeamID,
	}
}

type draftEventRequest struct {
	Type    string       `json:"type" validate:"required,oneof=pick turn"`
	Pick    *pickRequest `json:"pick"`
	OnClock bool         `json:"onClock"`
}

type toggleSyncRequest struct {
	Enabled bool `json:"enabled"`
}

type sessionDTO struct {
	ID               string    `json:"id"`
	LeagueID         string    `json:"leagueId"`
	TotalRounds      int       `json:"totalRounds"`
	TeamCount        int       `json:"teamCount"`
	UserPickPosition int       `json:"userPickPosition"`
	UserTeamID       string    `json:"userTeamId,omitempty"`
	CurrentPick      int       `json:"currentPick"`
	CurrentRound     int       `json:"currentRound"`
	IsActive         bool      `json:"isActive"`
	IsLiveSynced     bool      `json:"isLiveSynced"`
	IsUserTurn       bool      `json:"isUserTurn"`
	Picks            []pickDTO `json:"picks"`
	SyncErrors       []string  `json:"syncErrors,omitempty"`
	StaleEventCount  int       `json:"staleEventCount"`
	LastSyncAt       string    `json:"lastSyncAt,omitempty"`
}

type pickDTO struct {
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName"`
	Position      string `json:"position,omitempty"`
	Team          string `json:"team,omitempty"`
	PickNumber    int    `json:"pickNumber"`
	Round         int    `json:"round"`
	TeamID        string `json:"teamId,omitempty"`
	DraftedByUser bool   `json:"draftedByUser"`
}

type liveViewDTO struct {
	Session            sessionDTO `json:"session"`
	NextUserPick       int        `json:"nextUserPick"`
	PicksUntilUserTurn int        `json:"picksUntilUserTurn"`
	UserOnClock        bool       `json:"userOnClock"`
	Board              [][]string `json:"board"`
}

func sessionToDTO(v draftsession.Session) sessionDTO {
	picks := make([]pickDTO, 0, len(v.Picks))
	for _, p := range v.Picks {
		picks = append(picks, pickDTO{
			PlayerID:      p.PlayerID,
			PlayerName:    p.PlayerName,
			Position:      p.Position,
			Team:          p.Team,
			PickNumber:    p.PickNumber,
			Round:         p.Round,
			TeamID:        p.TeamID,
			DraftedByUser: p.DraftedByUser,
		})
	}

	lastSync := ""
	if !v.LastSyncAt.IsZero() {
		lastSync = v.LastSyncAt.UTC().Format(time.RFC3339)
	}

	return sessionDTO{
		ID:               v.ID,
		LeagueID:         v.LeagueID,
		TotalRounds:      v.TotalRounds,
		TeamCount:        v.TeamCount,
		UserPickPosition: v.UserPickPosition,
		UserTeamID:       v.UserTeamID,
		CurrentPick:      v.CurrentPick,
		CurrentRound:     v.CurrentRound,
		IsActive:         v.IsActive,
		IsLiveSynced:     v.IsLiveSynced,
		IsUserTurn:       v.IsUserTurn,
		Picks:            picks,
		SyncErrors:       append([]string(nil), v.SyncErrors...),
		StaleEventCount:  v.StaleEventCount,
		LastSyncAt:       lastSync,
	}
}

func liveViewToDTO(v usecase.LiveView) liveViewDTO {
	return liveViewDTO{
		Session:            sessionToDTO(v.Session),
		NextUserPick:       v.NextUserPick,
		PicksUntilUserTurn: v.PicksUntilUserTurn,
		UserOnClock:        v.UserOnClock,
		Board:              boardGrid(v.Session),
	}
}

// boardGrid renders the snake board as rounds of cell states, one row per
// round and one column per draft slot.
func boardGrid(s draftsession.Session) [][]string {
	filled := make(map[int]bool, len(s.Picks))
	for _, p := range s.Picks {
		filled[p.PickNumber] = true
	}

	grid := make([][]string, 0, s.TotalRounds)
	for round := 1; round <= s.TotalRounds; round++ {
		row := make([]string, 0, s.TeamCount)
		for slot := 0; slot < s.TeamCount; slot++ {
			pickNumber := draftboard.PickNumber(round, slot, s.TeamCount)
			row = append(row, string(draftboard.Classify(pickNumber, s.CurrentPick, filled[pickNumber])))
		}
		grid = append(grid, row)
	}

	return grid
}
