// Package config assembles the service configuration from defaults, an
// optional JSON file and environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/wangbinyq/ja-tokenizer/internal/analysis"
	"github.com/wangbinyq/ja-tokenizer/internal/source"
)

// Environment variables read by Load.
const (
	EnvDictPath     = "DICT_PATH"
	EnvUserDictPath = "USER_DICT_PATH"
	EnvAddr         = "JTOK_ADDR"
	EnvLogLevel     = "JTOK_LOG_LEVEL"
	EnvEngine       = "JTOK_ENGINE"
	EnvMaxTextBytes = "JTOK_MAX_TEXT_BYTES"
	EnvMaxBatch     = "JTOK_MAX_BATCH"
	EnvMaxInflight  = "JTOK_MAX_INFLIGHT"
	EnvRateLimit    = "JTOK_RATE_LIMIT"
	EnvRateBurst    = "JTOK_RATE_BURST"
	EnvS3Endpoint   = "JTOK_S3_ENDPOINT"
	EnvS3AccessKey  = "JTOK_S3_ACCESS_KEY"
	EnvS3SecretKey  = "JTOK_S3_SECRET_KEY"
	EnvS3Region     = "JTOK_S3_REGION"
	EnvS3Secure     = "JTOK_S3_SECURE"
)

var (
	ErrMissingDictPath = errors.New("DICT_PATH is not set")
	ErrInvalid         = errors.New("invalid configuration")
)

// Config configures the tokenizer service.
type Config struct {
	// DictPath locates the compiled dictionary artifact: a file path or an
	// s3://bucket/key URL.
	DictPath string `json:"dict_path"`

	// UserDictPath optionally names a lexicon CSV merged into the user
	// lexicon at startup.
	UserDictPath string `json:"user_dict_path"`

	// Addr is the listen address.
	Addr string `json:"addr"`

	LogLevel string `json:"log_level"`

	// Engine selects the analysis engine by registry name.
	Engine string `json:"engine"`

	// MaxTextBytes bounds the size of a single text.
	MaxTextBytes int `json:"max_text_bytes"`

	// MaxBatch bounds the number of texts in a batch request.
	MaxBatch int `json:"max_batch"`

	// MaxInflight bounds concurrent tokenize calls. Zero is unbounded.
	MaxInflight int `json:"max_inflight"`

	// RateLimit is requests per second. Zero disables limiting.
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	S3 source.S3Config `json:"s3"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:5000",
		LogLevel:     "info",
		Engine:       analysis.DefaultEngine,
		MaxTextBytes: 1 << 20,
		MaxBatch:     256,
		RateBurst:    1,
		S3:           source.S3Config{Secure: true},
	}
}

// Load builds a Config from defaults, the JSON file at path (if non-empty)
// and the process environment.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
	}

	env := envReader{getenv: getenv}
	cfg.DictPath = env.str(EnvDictPath, cfg.DictPath)
	cfg.UserDictPath = env.str(EnvUserDictPath, cfg.UserDictPath)
	cfg.Addr = env.str(EnvAddr, cfg.Addr)
	cfg.LogLevel = env.str(EnvLogLevel, cfg.LogLevel)
	cfg.Engine = env.str(EnvEngine, cfg.Engine)
	cfg.MaxTextBytes = env.int(EnvMaxTextBytes, cfg.MaxTextBytes)
	cfg.MaxBatch = env.int(EnvMaxBatch, cfg.MaxBatch)
	cfg.MaxInflight = env.int(EnvMaxInflight, cfg.MaxInflight)
	cfg.RateLimit = env.float(EnvRateLimit, cfg.RateLimit)
	cfg.RateBurst = env.int(EnvRateBurst, cfg.RateBurst)
	cfg.S3.Endpoint = env.str(EnvS3Endpoint, cfg.S3.Endpoint)
	cfg.S3.AccessKey = env.str(EnvS3AccessKey, cfg.S3.AccessKey)
	cfg.S3.SecretKey = env.str(EnvS3SecretKey, cfg.S3.SecretKey)
	cfg.S3.Region = env.str(EnvS3Region, cfg.S3.Region)
	cfg.S3.Secure = env.bool(EnvS3Secure, cfg.S3.Secure)
	if env.err != nil {
		return cfg, env.err
	}
	return cfg, nil
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.DictPath == "":
		return fmt.Errorf("%w: %w", ErrInvalid, ErrMissingDictPath)
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	case c.MaxTextBytes <= 0:
		return fmt.Errorf("%w: max_text_bytes must be positive, got %d", ErrInvalid, c.MaxTextBytes)
	case c.MaxBatch <= 0:
		return fmt.Errorf("%w: max_batch must be positive, got %d", ErrInvalid, c.MaxBatch)
	case c.MaxInflight < 0:
		return fmt.Errorf("%w: max_inflight must not be negative, got %d", ErrInvalid, c.MaxInflight)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must not be negative, got %g", ErrInvalid, c.RateLimit)
	case c.RateLimit > 0 && c.RateBurst <= 0:
		return fmt.Errorf("%w: rate_burst must be positive when rate_limit is set", ErrInvalid)
	}
	return nil
}

// envReader applies environment overrides and keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(key, fallback string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v)
		return fallback
	}
	return n
}

func (e *envReader) float(key string, fallback float64) float64 {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v)
		return fallback
	}
	return f
}

func (e *envReader) bool(key string, fallback bool) bool {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v)
		return fallback
	}
	return b
}

func (e *envReader) fail(key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, value)
	}
}
