package cache

import (
	"net/url"
	"strings"
)

// Key derives a deterministic cache key from an HTTP read request. Query
// parameters are normalized (sorted by url.Values.Encode) so two requests
// that differ only in parameter order map to the same key.
func Key(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(method)))
	b.WriteByte(' ')
	b.WriteString(path)
	if encoded := query.Encode(); encoded != "" {
		b.WriteByte('?')
		b.WriteString(encoded)
	}
	return b.String()
}
