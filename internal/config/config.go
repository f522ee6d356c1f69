// Package config loads the service configuration from an optional YAML file, a .env file and the
// environment, in that order of precedence (environment wins).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_FILE is unset
const DefaultPath = "config.yaml"

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Storage  StorageConfig  `yaml:"storage"`
	Chart    ChartConfig    `yaml:"chart"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig describes the exchange API
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// FetchDelay paces the per-date requests of a chart cycle; 0 disables pacing
	FetchDelay time.Duration `yaml:"fetch_delay"`
	// TodayCacheTTL bounds how long the current day's snapshot is reused; 0 disables caching it
	TodayCacheTTL time.Duration `yaml:"today_cache_ttl"`
}

// StorageConfig holds the snapshot store settings
type StorageConfig struct {
	// BadgerDir is the on-disk store; empty keeps snapshots in memory only
	BadgerDir string `yaml:"badger_dir"`
}

// ChartConfig holds the chart defaults
type ChartConfig struct {
	DefaultRange string        `yaml:"default_range"`
	Timezone     string        `yaml:"timezone"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
}

// ScheduleConfig holds cron specs with a seconds field. An empty spec disables the job.
type ScheduleConfig struct {
	RefreshCron   string `yaml:"refresh_cron"`
	WarmTodayCron string `yaml:"warm_today_cron"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    3 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:       "https://exchange.intern.demo.pigasoft.com",
			Timeout:       10 * time.Second,
			FetchDelay:    50 * time.Millisecond,
			TodayCacheTTL: 5 * time.Minute,
		},
		Storage: StorageConfig{
			BadgerDir: "./data",
		},
		Chart: ChartConfig{
			DefaultRange: string(entity.DefaultGranularity),
			Timezone:     "Europe/Istanbul",
			WaitTimeout:  2 * time.Minute,
		},
		Schedule: ScheduleConfig{
			RefreshCron:   "0 5 0 * * *",
			WarmTodayCron: "0 */5 * * * *",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (a missing file is fine), then a .env file, then applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PathFromEnv returns CONFIG_FILE or DefaultPath
func PathFromEnv() string {
	return getEnv("CONFIG_FILE", DefaultPath)
}

func (c *Config) applyEnv() error {
	lookupString("SERVER_ADDR", &c.Server.Addr)
	lookupString("UPSTREAM_BASE_URL", &c.Upstream.BaseURL)
	lookupString("BADGER_DIR", &c.Storage.BadgerDir)
	lookupString("DEFAULT_RANGE", &c.Chart.DefaultRange)
	lookupString("TIMEZONE", &c.Chart.Timezone)
	lookupString("REFRESH_CRON", &c.Schedule.RefreshCron)
	lookupString("WARM_TODAY_CRON", &c.Schedule.WarmTodayCron)
	lookupString("LOG_LEVEL", &c.Log.Level)

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORS.AllowedOrigins = splitList(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &c.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &c.Server.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout},
		{"UPSTREAM_TIMEOUT", &c.Upstream.Timeout},
		{"FETCH_DELAY", &c.Upstream.FetchDelay},
		{"TODAY_CACHE_TTL", &c.Upstream.TodayCacheTTL},
		{"CHART_WAIT_TIMEOUT", &c.Chart.WaitTimeout},
	}
	for _, d := range durations {
		v, ok := os.LookupEnv(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks that every field holds a usable value
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	if c.Upstream.FetchDelay < 0 {
		return fmt.Errorf("upstream.fetch_delay must not be negative")
	}
	if c.Upstream.TodayCacheTTL < 0 {
		return fmt.Errorf("upstream.today_cache_ttl must not be negative")
	}
	if _, err := entity.ParseGranularity(c.Chart.DefaultRange); err != nil {
		return fmt.Errorf("chart.default_range: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("chart.timezone: %w", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"schedule.refresh_cron":    c.Schedule.RefreshCron,
		"schedule.warm_today_cron": c.Schedule.WarmTodayCron,
	} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Location returns the timezone that decides calendar dates
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Chart.Timezone)
}

// Granularity returns the parsed default chart range
func (c *Config) Granularity() entity.Granularity {
	g, err := entity.ParseGranularity(c.Chart.DefaultRange)
	if err != nil {
		return entity.DefaultGranularity
	}
	return g
}

// LogLevel returns the parsed log level, INFO when unparsable
func (c *Config) LogLevel() logger.Level {
	level, _ := logger.ParseLevel(c.Log.Level)
	return level
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
