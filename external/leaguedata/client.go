package leaguedata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/domain/team"
	"github.com/draftline/draftline/internal/platform/logging"
	"github.com/draftline/draftline/internal/platform/resilience"
	"github.com/draftline/draftline/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.leaguedata.example.com/v1"

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errProviderTransient = crerr.New("league data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the third-party league-data API: leagues and teams as
// read-only reference data, plus the live draft status feed the reconciler
// polls.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) ListLeagues(ctx context.Context) ([]league.League, error) {
	var payload envelope[[]leagueItem]
	if err := c.doJSON(ctx, "/leagues", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch leagues: %w", err)
	}

	out := make([]league.League, 0, len(payload.Data))
	for _, item := range payload.Data {
		out = append(out, league.League{
			ID:          item.ID,
			Name:        item.Name,
			Season:      item.Season,
			TeamCount:   item.TeamCount,
			TotalRounds: item.TotalRounds,
			ScoringType: item.ScoringType,
		})
	}

	return out, nil
}

func (c *Client) ListTeams(ctx context.Context, leagueID string) ([]team.Team, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id is required")
	}

	var payload envelope[[]teamItem]
	path := "/leagues/" + url.PathEscape(leagueID) + "/teams"
	if err := c.doJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch teams league_id=%s: %w", leagueID, err)
	}

	out := make([]team.Team, 0, len(payload.Data))
	for _, item := range payload.Data {
		out = append(out, team.Team{
			ID:           item.ID,
			LeagueID:     leagueID,
			Name:         item.Name,
			Abbreviation: item.Abbreviation,
			OwnerName:    item.OwnerName,
			DraftSlot:    item.DraftSlot,
		})
	}

	return out, nil
}

// FetchDraftStatus returns the authoritative draft snapshot for a league.
func (c *Client) FetchDraftStatus(ctx context.Context, leagueID string) (usecase.LiveDraftStatus, error) {
	if strings.TrimSpace(leagueID) == "" {
		return usecase.LiveDraftStatus{}, fmt.Errorf("league id is required")
	}

	var payload envelope[draftStatusItem]
	path := "/leagues/" + url.PathEscape(leagueID) + "/draft/status"
	if err := c.doJSON(ctx, path, nil, &payload); err != nil {
		return usecase.LiveDraftStatus{}, fmt.Errorf("fetch draft status league_id=%s: %w", leagueID, err)
	}

	status := usecase.LiveDraftStatus{
		CurrentPick:  payload.Data.CurrentPick,
		CurrentRound: payload.Data.CurrentRound,
		IsUserTurn:   payload.Data.IsUserTurn,
		SyncErrors:   payload.Data.SyncErrors,
		RecentPicks:  make([]usecase.LivePickEvent, 0, len(payload.Data.RecentPicks)),
	}
	for _, item := range payload.Data.RecentPicks {
		status.RecentPicks = append(status.RecentPicks, usecase.LivePickEvent(item))
	}

	return status, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "league data circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: league data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if c.token != "" {
		values.Set("apikey", c.token)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errProviderTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errProviderTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d", errProviderTransient, resp.StatusCode)
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "league data request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "apikey=REDACTED")
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
