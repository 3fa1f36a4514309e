// Package bootstrap provides dependency initialization for the AdReel API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/adreel/adreel-api/internal/config"
	"github.com/adreel/adreel-api/internal/httpx"
	"github.com/adreel/adreel-api/internal/job"
	"github.com/adreel/adreel-api/internal/kling"
	"github.com/adreel/adreel-api/internal/openai"
	"github.com/adreel/adreel-api/internal/pipeline"
	"github.com/adreel/adreel-api/internal/storage"
	"github.com/adreel/adreel-api/internal/tavily"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	JobService *job.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	httpClient := httpx.NewClient(httpx.WithLogger(logger))

	searcher := tavily.NewClient(cfg.TavilyAPIKey, httpClient, tavilyOptions(cfg)...)
	completer := openai.NewClient(cfg.OpenAIAPIKey, httpClient, openaiOptions(cfg)...)
	renderer := kling.NewClient(cfg.KlingAPIKey, httpClient, klingOptions(cfg)...)

	p := pipeline.New(searcher, completer, renderer, logger,
		pipeline.WithPollInterval(cfg.PollInterval()),
		pipeline.WithPollMaxAttempts(cfg.PollMaxAttempts),
		pipeline.WithPollTimeout(cfg.PollTimeout()),
	)

	ledger, err := initLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	var svcOpts []job.ServiceOption
	if cfg.S3Enabled() {
		publisher, err := storage.NewS3Publisher(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 publisher: %w", err)
		}
		logger.Info("S3 artifact mirroring configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		svcOpts = append(svcOpts, job.WithArtifactPublisher(publisher))
	}

	svc := job.NewService(ledger, p, logger, svcOpts...)

	return &Dependencies{
		JobService: svc,
	}, nil
}

// initLedger creates the appropriate job ledger based on configuration.
func initLedger(cfg *config.Config, logger *slog.Logger) (job.Ledger, error) {
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Info("redis job ledger configured",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return job.NewRedisLedger(rdb), nil
	}

	logger.Info("in-memory job ledger configured")
	return job.NewMemoryLedger(), nil
}

func tavilyOptions(cfg *config.Config) []tavily.Option {
	var opts []tavily.Option
	if cfg.TavilyBaseURL != "" {
		opts = append(opts, tavily.WithBaseURL(cfg.TavilyBaseURL))
	}
	return opts
}

func openaiOptions(cfg *config.Config) []openai.Option {
	var opts []openai.Option
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.OpenAIModel != "" {
		opts = append(opts, openai.WithModel(cfg.OpenAIModel))
	}
	return opts
}

func klingOptions(cfg *config.Config) []kling.Option {
	var opts []kling.Option
	if cfg.KlingBaseURL != "" {
		opts = append(opts, kling.WithBaseURL(cfg.KlingBaseURL))
	}
	return opts
}
