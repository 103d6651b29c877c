package httpapi

import "testing"

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/healthz", want: false},
		{path: "/health", want: false},
		{path: "/livez", want: false},
		{path: "/readyz", want: false},
		{path: " /healthz ", want: false},
		{path: "/", want: true},
		{path: "/v1/drafts", want: true},
		{path: "/v1/drafts/sess-1/live", want: true},
		{path: "/v1/leagues", want: true},
		{path: "/v1/cache/stats", want: true},
	}

	for _, tt := range tests {
		if got := shouldTraceRequest(tt.path); got != tt.want {
			t.Fatalf("shouldTraceRequest(%q)=%v want=%v", tt.path, got, tt.want)
		}
	}
}
