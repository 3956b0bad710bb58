// Package config は環境変数と任意のYAMLファイルから設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// キャッシュの保存先
const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
)

// ConfigFileEnv は設定ファイルのパスを指定する環境変数名。
const ConfigFileEnv = "CONFIG_FILE"

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Upstream
	HNAPIBaseURL         string
	AllowPrivateUpstream bool

	// Cache
	CacheTTL     time.Duration
	CacheBackend string

	// Database
	DatabaseURL string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64
	StoryLimit   int

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitRefresh int

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// source は環境変数、設定ファイルの順に値を探す。
type source struct {
	file map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	v, ok := s.file[strings.ToLower(key)]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Load は設定を読み込む。
// CONFIG_FILEが指定されていればそのYAMLファイルを既定値として使い、環境変数で上書きする。
func Load() (*Config, error) {
	file, err := readConfigFile(os.Getenv(ConfigFileEnv))
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	cfg := &Config{}

	cfg.HNAPIBaseURL = src.getString("HN_API_BASE_URL", "https://hacker-news.firebaseio.com/v0/")
	cfg.AllowPrivateUpstream = src.getBool("ALLOW_PRIVATE_UPSTREAM", false)
	cfg.CacheTTL = src.getDuration("CACHE_TTL", 5*time.Minute)
	cfg.CacheBackend = strings.ToLower(src.getString("CACHE_BACKEND", CacheBackendMemory))
	cfg.DatabaseURL = src.getString("DATABASE_URL", "")
	cfg.FetchTimeout = src.getDuration("FETCH_TIMEOUT", 0)
	cfg.FetchMaxSize = src.getInt64("FETCH_MAX_SIZE", 5242880)
	cfg.StoryLimit = src.getInt("STORY_LIMIT", 30)
	cfg.RateLimitGeneral = src.getInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRefresh = src.getInt("RATE_LIMIT_REFRESH", 10)
	cfg.LogLevel = strings.ToLower(src.getString("LOG_LEVEL", "info"))
	cfg.ServerPort = src.getString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = src.getString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証する。
// 複数の問題がある場合はまとめて返す。
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.HNAPIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("HN_API_BASE_URL must be an absolute http(s) URL: %q", c.HNAPIBaseURL))
	}

	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when CACHE_BACKEND is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be %q or %q: %q", CacheBackendMemory, CacheBackendPostgres, c.CacheBackend))
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive: %s", c.CacheTTL))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must not be negative: %s", c.FetchTimeout))
	}
	if c.FetchMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_SIZE must be positive: %d", c.FetchMaxSize))
	}
	if c.StoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("STORY_LIMIT must be positive: %d", c.StoryLimit))
	}
	if c.RateLimitGeneral <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_GENERAL must be positive: %d", c.RateLimitGeneral))
	}
	if c.RateLimitRefresh <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REFRESH must be positive: %d", c.RateLimitRefresh))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// readConfigFile はYAMLファイルをキーと値の組として読み込む。
// キーは小文字の環境変数名（例: cache_ttl）で記述する。pathが空の場合は何もしない。
func readConfigFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[strings.ToLower(k)] = v
	}
	return values, nil
}

func (s source) getString(key, defaultVal string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return defaultVal
}

func (s source) getInt(key string, defaultVal int) int {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s source) getInt64(key string, defaultVal int64) int64 {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s source) getDuration(key string, defaultVal time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s source) getBool(key string, defaultVal bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
