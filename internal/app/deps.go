package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"clausewise/internal/cache"
	"clausewise/internal/config"
	"clausewise/internal/inference"
	"clausewise/internal/logger"
	"clausewise/internal/queue"
	"clausewise/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Queue     queue.Queue
	Cache     cache.Cache
	Inference inference.Client
}

// Build loads env, config, and shared components. A missing inference
// credential fails here, once, before any service starts.
func Build() (Deps, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	ca, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	inf, err := buildInference(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize inference client: %w", err)
	}
	return Deps{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Queue:     q,
		Cache:     ca,
		Inference: inf,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	db, err := store.NewPostgres(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
	}
	log.Info("using Postgres store")
	return db, nil
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("QUEUE_URL is required")
	}
	nc, err := nats.Connect(cfg.QueueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS queue")
	return queue.NewNATS(log, nc), nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; progress tracking disabled")
		return cache.NewNoOpCache(), nil
	}
	rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	log.Info("using Redis progress cache")
	return rc, nil
}

func buildInference(cfg config.Config, log *slog.Logger) (inference.Client, error) {
	switch cfg.InferenceProvider {
	case "huggingface":
		client, err := inference.NewHuggingFace(cfg.InferenceURL, cfg.InferenceToken, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("using HuggingFace inference endpoint", "url", cfg.InferenceURL)
		return client, nil
	case "openai":
		client, err := inference.NewOpenAIClient(cfg.InferenceToken, openai.ChatModel(cfg.InferenceModel))
		if err != nil {
			return nil, err
		}
		log.Info("using OpenAI inference client", "model", cfg.InferenceModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid INFERENCE_PROVIDER: %s (valid options: huggingface, openai)", cfg.InferenceProvider)
	}
}
