package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/draftline/draftline/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	CacheEnabled       bool
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	DraftPollInterval time.Duration
	DraftSyncErrorCap int
	DraftPushEnabled  bool

	LeagueDataEnabled               bool
	LeagueDataBaseURL               string
	LeagueDataToken                 string
	LeagueDataTimeout               time.Duration
	LeagueDataMaxRetries            int
	LeagueDataCircuitEnabled        bool
	LeagueDataCircuitFailureCount   int
	LeagueDataCircuitOpenTimeout    time.Duration
	LeagueDataCircuitHalfOpenMaxReq int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cacheSweepInterval, err := time.ParseDuration(getEnv("CACHE_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_SWEEP_INTERVAL: %w", err)
	}
	if cacheSweepInterval <= 0 {
		return Config{}, fmt.Errorf("CACHE_SWEEP_INTERVAL must be > 0")
	}

	draftPollInterval, err := time.ParseDuration(getEnv("DRAFT_POLL_INTERVAL", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_POLL_INTERVAL: %w", err)
	}
	if draftPollInterval <= 0 {
		return Config{}, fmt.Errorf("DRAFT_POLL_INTERVAL must be > 0")
	}
	draftSyncErrorCap, err := getEnvAsInt("DRAFT_SYNC_ERROR_CAP", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_SYNC_ERROR_CAP: %w", err)
	}
	if draftSyncErrorCap < 1 {
		return Config{}, fmt.Errorf("DRAFT_SYNC_ERROR_CAP must be >= 1")
	}
	draftPushEnabled, err := strconv.ParseBool(getEnv("DRAFT_PUSH_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_PUSH_ENABLED: %w", err)
	}

	leagueDataEnabled, err := strconv.ParseBool(getEnv("LEAGUEDATA_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_ENABLED: %w", err)
	}
	leagueDataTimeout, err := time.ParseDuration(getEnv("LEAGUEDATA_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_TIMEOUT: %w", err)
	}
	if leagueDataTimeout <= 0 {
		return Config{}, fmt.Errorf("LEAGUEDATA_TIMEOUT must be > 0")
	}
	leagueDataMaxRetries, err := getEnvAsInt("LEAGUEDATA_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_MAX_RETRIES: %w", err)
	}
	if leagueDataMaxRetries < 0 {
		return Config{}, fmt.Errorf("LEAGUEDATA_MAX_RETRIES must be >= 0")
	}
	leagueDataCircuitEnabled, err := strconv.ParseBool(getEnv("LEAGUEDATA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_CIRCUIT_ENABLED: %w", err)
	}
	leagueDataCircuitFailureCount, err := getEnvAsInt("LEAGUEDATA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if leagueDataCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("LEAGUEDATA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	leagueDataCircuitOpenTimeout, err := time.ParseDuration(getEnv("LEAGUEDATA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if leagueDataCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("LEAGUEDATA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	leagueDataCircuitHalfOpenMaxReq, err := getEnvAsInt("LEAGUEDATA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEDATA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if leagueDataCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("LEAGUEDATA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	leagueDataBaseURL := strings.TrimSpace(getEnv("LEAGUEDATA_BASE_URL", ""))
	leagueDataToken := strings.TrimSpace(getEnv("LEAGUEDATA_TOKEN", ""))
	if leagueDataEnabled && leagueDataBaseURL == "" {
		return Config{}, fmt.Errorf("LEAGUEDATA_BASE_URL is required when LEAGUEDATA_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "draftline-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		CacheEnabled:       cacheEnabled,
		CacheTTL:           cacheTTL,
		CacheSweepInterval: cacheSweepInterval,

		DraftPollInterval: draftPollInterval,
		DraftSyncErrorCap: draftSyncErrorCap,
		DraftPushEnabled:  draftPushEnabled,

		LeagueDataEnabled:               leagueDataEnabled,
		LeagueDataBaseURL:               leagueDataBaseURL,
		LeagueDataToken:                 leagueDataToken,
		LeagueDataTimeout:               leagueDataTimeout,
		LeagueDataMaxRetries:            leagueDataMaxRetries,
		LeagueDataCircuitEnabled:        leagueDataCircuitEnabled,
		LeagueDataCircuitFailureCount:   leagueDataCircuitFailureCount,
		LeagueDataCircuitOpenTimeout:    leagueDataCircuitOpenTimeout,
		LeagueDataCircuitHalfOpenMaxReq: leagueDataCircuitHalfOpenMaxReq,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
