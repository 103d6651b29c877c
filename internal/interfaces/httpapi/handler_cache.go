package httpapi

import "net/http"

func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCacheStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.cacheStore.Stats(ctx))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	removed := h.cacheStore.Clear(ctx)
	h.logger.InfoContext(ctx, "cache cleared", "removed", removed)

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"removed": removed})
}
