package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/2beens/fitdash/internal/activities"
)

const (
	DefaultIngestPageSize          = activities.PageSize
	DefaultIngestMaxPages          = activities.DefaultMaxPages
	DefaultIngestRequestTimeout    = 30 * time.Second
	DefaultIngestRequestsPerMinute = 90
	DefaultStravaBaseURL           = "https://www.strava.com"
	DefaultOpenAIModel             = "gpt-3.5-turbo"
	DefaultChatMaxOutputTokens     = 300
	DefaultChatTemperature         = 0.5
	DefaultSessionTTL              = 7 * 24 * time.Hour
	DefaultStatsCacheSizeMB        = 16
	DefaultStatsCacheTTL           = 10 * time.Minute
	DefaultLoginRateLimitPerMin    = 10
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// used to build absolute links and to decide on secure cookies
	BaseURL string `toml:"base_url"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int           `toml:"login_rate_limit_allowed_per_min"`
	SessionTTL                  time.Duration `toml:"session_ttl"`

	// strava
	StravaBaseURL           string        `toml:"strava_base_url"`
	StravaRedirectURL       string        `toml:"strava_redirect_url"`
	StravaScopes            []string      `toml:"strava_scopes"`
	IngestPageSize          int           `toml:"ingest_page_size"`
	IngestMaxPages          int           `toml:"ingest_max_pages"`
	IngestRequestTimeout    time.Duration `toml:"ingest_request_timeout"`
	IngestRequestsPerMinute int           `toml:"ingest_requests_per_minute"`

	// chat coach
	OpenAIModel         string  `toml:"openai_model"`
	ChatMaxOutputTokens int     `toml:"chat_max_output_tokens"`
	ChatTemperature     float32 `toml:"chat_temperature"`

	// aggregations cache
	StatsCacheSizeMB int           `toml:"stats_cache_size_mb"`
	StatsCacheTTL    time.Duration `toml:"stats_cache_ttl"`
}

type Toml struct {
	Development *Config `toml:"development"`
	DockerDev   *Config `toml:"dockerdev"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the config section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.IngestPageSize <= 0 {
		c.IngestPageSize = DefaultIngestPageSize
	}
	if c.IngestMaxPages <= 0 {
		c.IngestMaxPages = DefaultIngestMaxPages
	}
	if c.IngestRequestTimeout <= 0 {
		c.IngestRequestTimeout = DefaultIngestRequestTimeout
	}
	if c.IngestRequestsPerMinute <= 0 {
		c.IngestRequestsPerMinute = DefaultIngestRequestsPerMinute
	}
	if c.StravaBaseURL == "" {
		c.StravaBaseURL = DefaultStravaBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultOpenAIModel
	}
	if c.ChatMaxOutputTokens <= 0 {
		c.ChatMaxOutputTokens = DefaultChatMaxOutputTokens
	}
	if c.ChatTemperature <= 0 {
		c.ChatTemperature = DefaultChatTemperature
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.StatsCacheSizeMB <= 0 {
		c.StatsCacheSizeMB = DefaultStatsCacheSizeMB
	}
	if c.StatsCacheTTL <= 0 {
		c.StatsCacheTTL = DefaultStatsCacheTTL
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = DefaultLoginRateLimitPerMin
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
}
