package httpapi

import (
	"net/http"

	"github.com/valyala/bytebufferpool"

	"github.com/draftline/draftline/internal/platform/cache"
)

const (
	cacheStatusHeader = "Cache-Status"
	cacheKeyHeader    = "Cache-Key"
)

type cachedResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// ResponseCache serves GET responses from the shared TTL store, keyed on
// method, path and sorted query. Only 2xx responses are stored; everything
// else passes through untouched. Every response carries Cache-Status and
// Cache-Key headers so clients can see what they got.
func ResponseCache(store *cache.Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.ResponseCache")
		defer span.End()

		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		key := cache.Key(r.Method, r.URL.Path, r.URL.Query())
		w.Header().Set(cacheKeyHeader, key)

		if v, ok := store.Get(ctx, key); ok {
			if cached, ok := v.(cachedResponse); ok {
				w.Header().Set(cacheStatusHeader, "HIT")
				if cached.ContentType != "" {
					w.Header().Set("Content-Type", cached.ContentType)
				}
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}
		}

		w.Header().Set(cacheStatusHeader, "MISS")

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		recorder := &captureWriter{ResponseWriter: w, buf: buf, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		if recorder.status >= 200 && recorder.status < 300 {
			store.Set(ctx, key, cachedResponse{
				Status:      recorder.status,
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        append([]byte(nil), buf.B...),
			})
		}
	})
}

// captureWriter tees the response body into a pooled buffer while writing
// through to the client.
type captureWriter struct {
	http.ResponseWriter
	buf         *bytebufferpool.ByteBuffer
	status      int
	wroteHeader bool
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	_, _ = c.buf.Write(p)
	return c.ResponseWriter.Write(p)
}
