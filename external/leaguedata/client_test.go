package leaguedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftline/draftline/internal/platform/resilience"
	"github.com/draftline/draftline/internal/usecase"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:    baseURL,
		Token:      "secret-token",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	})
}

func TestListLeagues_MapsProviderPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "secret-token" {
			t.Errorf("expected apikey query param, got=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"lg-100","name":"Gridiron Classic","season":"2026","teamCount":10,"totalRounds":15,"scoringType":"ppr"},
			{"id":"lg-200","name":"Dynasty Twelve","season":"2026","teamCount":12,"totalRounds":16,"scoringType":"half-ppr"}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	leagues, err := client.ListLeagues(context.Background())
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	if len(leagues) != 2 {
		t.Fatalf("expected two leagues, got=%d", len(leagues))
	}
	first := leagues[0]
	if first.ID != "lg-100" || first.Name != "Gridiron Classic" {
		t.Fatalf("unexpected league mapping: %+v", first)
	}
	if first.TeamCount != 10 || first.TotalRounds != 15 || first.ScoringType != "ppr" {
		t.Fatalf("unexpected league attributes: %+v", first)
	}
}

func TestListTeams_SetsLeagueIDOnEveryTeam(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues/lg-100/teams" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"tm-1","name":"Mad Hatters","abbreviation":"MAD","ownerName":"Riley","draftSlot":1},
			{"id":"tm-2","name":"End Zone Elite","abbreviation":"EZE","ownerName":"Jordan","draftSlot":2}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	teams, err := client.ListTeams(context.Background(), "lg-100")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected two teams, got=%d", len(teams))
	}
	for _, tm := range teams {
		if tm.LeagueID != "lg-100" {
			t.Fatalf("expected league id on team %s, got=%q", tm.ID, tm.LeagueID)
		}
	}
	if teams[1].DraftSlot != 2 || teams[1].OwnerName != "Jordan" {
		t.Fatalf("unexpected team mapping: %+v", teams[1])
	}
}

func TestListTeams_RequiresLeagueID(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:0", 0)
	if _, err := client.ListTeams(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank league id")
	}
}

func TestFetchDraftStatus_MapsSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues/lg-100/draft/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"currentPick":23,
			"currentRound":3,
			"isUserTurn":true,
			"recentPicks":[
				{"playerId":"pl-9","playerName":"T. Marsh","position":"RB","team":"DET","pickNumber":22,"teamId":"tm-4"}
			],
			"syncErrors":["missed pick 19"]
		}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	status, err := client.FetchDraftStatus(context.Background(), "lg-100")
	if err != nil {
		t.Fatalf("fetch draft status: %v", err)
	}
	if status.CurrentPick != 23 || status.CurrentRound != 3 || !status.IsUserTurn {
		t.Fatalf("unexpected snapshot counters: %+v", status)
	}
	if len(status.RecentPicks) != 1 {
		t.Fatalf("expected one recent pick, got=%d", len(status.RecentPicks))
	}
	pick := status.RecentPicks[0]
	if pick.PlayerID != "pl-9" || pick.PickNumber != 22 || pick.TeamID != "tm-4" {
		t.Fatalf("unexpected pick mapping: %+v", pick)
	}
	if len(status.SyncErrors) != 1 || status.SyncErrors[0] != "missed pick 19" {
		t.Fatalf("unexpected sync errors: %v", status.SyncErrors)
	}
}

func TestExecuteRequest_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 1)
	if _, err := client.ListLeagues(context.Background()); err != nil {
		t.Fatalf("expected retry to recover, got=%v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected two attempts, got=%d", got)
	}
}

func TestExecuteRequest_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"unknown league"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2)
	if _, err := client.ListLeagues(context.Background()); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt for non-retryable status, got=%d", got)
	}
}

func TestCircuitBreaker_OpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.ListLeagues(context.Background()); err == nil {
		t.Fatal("expected first call to fail")
	}
	attemptsBeforeOpen := calls.Load()

	_, err := client.ListLeagues(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable after circuit opened, got=%v", err)
	}
	if calls.Load() != attemptsBeforeOpen {
		t.Fatal("expected open circuit to short-circuit without a request")
	}
}

func TestSanitizeSensitiveText_RedactsTokenAndQueryParam(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText("dial https://host/path?apikey=secret-token failed", "secret-token")
	if got != "dial https://host/path?apikey=REDACTED failed" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestRedactAPIURL_HidesKey(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://host/leagues?apikey=abc123&page=2")
	if got != "https://host/leagues?apikey=REDACTED&page=2" {
		t.Fatalf("unexpected redacted url: %q", got)
	}
}
