package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// ErrMissingCredential is returned when no inference credential is configured.
// It is fatal at assembly time; requests are never attempted without one.
var ErrMissingCredential = errors.New("missing inference credential: set the INFERENCE_API_TOKEN environment variable")

// Config holds runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	DBURL string `env:"DB_URL"`

	// Queue
	QueueURL string `env:"QUEUE_URL"`

	// Progress cache; optional, a no-op cache is used when unset
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Inference
	InferenceProvider string        `env:"INFERENCE_PROVIDER" envDefault:"huggingface"` // "huggingface" or "openai"
	InferenceURL      string        `env:"INFERENCE_URL" envDefault:"https://api-inference.huggingface.co/models/ibm-granite/granite-3.3-2b-base"`
	InferenceToken    string        `env:"INFERENCE_API_TOKEN" validate:"required"`
	InferenceModel    string        `env:"INFERENCE_MODEL" envDefault:"gpt-4o-mini"` // openai provider only; huggingface encodes the model in the URL
	InferenceTimeout  time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"120s"`

	// Analysis bounds
	ClauseCap      int `env:"CLAUSE_CAP" envDefault:"20"`
	MaxClauseChars int `env:"MAX_CLAUSE_CHARS" envDefault:"1500"`
	ClauseTokens   int `env:"CLAUSE_MAX_NEW_TOKENS" envDefault:"400"`
	SummaryTokens  int `env:"SUMMARY_MAX_NEW_TOKENS" envDefault:"400"`
}

// Load reads configuration from environment variables with defaults and
// validates it. A missing credential surfaces here, once, with a user-facing
// message rather than as a per-request failure.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "InferenceToken" {
					return Config{}, ErrMissingCredential
				}
			}
		}
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
