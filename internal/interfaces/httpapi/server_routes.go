package httpapi

import (
	"net/http"

	"github.com/draftline/draftline/internal/platform/cache"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/cache/stats", handler.GetCacheStats)
	mux.HandleFunc("DELETE /v1/cache", handler.ClearCache)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler, cacheStore *cache.Store) {
	// Catalog reads are served through the response cache; draft state is
	// live and never cached.
	mux.Handle("GET /v1/leagues", ResponseCache(cacheStore, http.HandlerFunc(handler.ListLeagues)))
	mux.Handle("GET /v1/leagues/{leagueID}", ResponseCache(cacheStore, http.HandlerFunc(handler.GetLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/teams", ResponseCache(cacheStore, http.HandlerFunc(handler.ListTeamsByLeague)))
}

func registerDraftRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/drafts", handler.StartDraft)
	mux.HandleFunc("GET /v1/drafts/{sessionID}", handler.GetDraft)
	mux.HandleFunc("POST /v1/drafts/{sessionID}/picks", handler.RecordPick)
	mux.HandleFunc("POST /v1/drafts/{sessionID}/events", handler.IngestDraftEvent)
	mux.HandleFunc("PUT /v1/drafts/{sessionID}/sync", handler.ToggleDraftSync)
	mux.HandleFunc("GET /v1/drafts/{sessionID}/live", handler.GetDraftLiveStatus)
}
