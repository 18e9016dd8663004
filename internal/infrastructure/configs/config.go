package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hilthontt/quorum/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Token       TokenConfig       `koanf:"token"`
	Store       StoreConfig       `koanf:"store"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type TokenConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// RoomsConfig holds the room lifetime and the per-kind join-after-start
// policy. Polls lock at start; quizzes keep accepting joiners by default.
type RoomsConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	PollLockOnStart bool          `koanf:"poll_lock_on_start"`
	QuizLockOnStart bool          `koanf:"quiz_lock_on_start"`
}

type RateLimiterConfig struct {
	Enabled bool          `koanf:"enabled"`
	Limit   int           `koanf:"limit"`
	Window  time.Duration `koanf:"window"`
}

type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
	Environment string `koanf:"environment"`
	Endpoint    string `koanf:"endpoint"`
}

type LoggingConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Token.Secret == "" {
		return nil, errors.New("token secret is required: set token.secret or TOKEN_SECRET")
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	setDefault(k, "token.ttl", 2*time.Hour)

	setDefault(k, "store.path", "./data")
	setDefault(k, "store.in_memory", false)

	setDefault(k, "rooms.ttl", 2*time.Hour)
	setDefault(k, "rooms.poll_lock_on_start", true)
	setDefault(k, "rooms.quiz_lock_on_start", false)

	setDefault(k, "rateLimiter.enabled", true)
	setDefault(k, "rateLimiter.limit", 100)
	setDefault(k, "rateLimiter.window", time.Minute)

	setDefault(k, "tracing.enabled", false)
	setDefault(k, "tracing.service_name", "quorum")
	setDefault(k, "tracing.environment", "development")
	setDefault(k, "tracing.endpoint", "http://localhost:4318")

	setDefault(k, "logging.level", "info")
	setDefault(k, "logging.encoding", "json")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}

	if secret := env.GetString("TOKEN_SECRET", ""); secret != "" {
		k.Set("token.secret", secret)
	}
	if ttl := env.GetDuration("TOKEN_TTL", 0); ttl > 0 {
		k.Set("token.ttl", ttl)
	}

	if path := env.GetString("STORE_PATH", ""); path != "" {
		k.Set("store.path", path)
	}
	if env.GetBool("STORE_IN_MEMORY", false) {
		k.Set("store.in_memory", true)
	}

	if ttl := env.GetDuration("ROOMS_TTL", 0); ttl > 0 {
		k.Set("rooms.ttl", ttl)
	}

	if limit := env.GetInt("RATE_LIMIT_LIMIT", 0); limit > 0 {
		k.Set("rateLimiter.limit", limit)
	}
	if window := env.GetDuration("RATE_LIMIT_WINDOW", 0); window > 0 {
		k.Set("rateLimiter.window", window)
	}

	if endpoint := env.GetString("OTLP_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
		k.Set("tracing.enabled", true)
	}
	if environment := env.GetString("ENVIRONMENT", ""); environment != "" {
		k.Set("tracing.environment", environment)
	}

	if level := env.GetString("LOG_LEVEL", ""); level != "" {
		k.Set("logging.level", level)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
