package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/ats"
	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/scoring"
	"github.com/jonathan/hiring-pipeline/internal/server"
	"github.com/jonathan/hiring-pipeline/internal/server/ratelimit"
	"github.com/jonathan/hiring-pipeline/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the HTTP server. Without database.url the server runs on an in-memory store,
without storage.bucket uploads are kept in memory, and without llm.api_key resumes are
accepted with a zero score.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	log := logging.New(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, err := openBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	notifier, err := openNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer notifier.Wait()

	scorer, closeScorer, err := openScorer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeScorer()

	limiter, closeRedis, err := openLimiter(cfg, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	svc := ats.NewService(ats.Deps{
		Store:     store,
		Uploader:  storage.NewUploader(blobs, cfg.Storage.MaxUploadBytes),
		Scorer:    scorer,
		Extractor: ingestion.Extractor{},
		Notifier:  notifier,
		Logger:    log.With("component", "ats"),
	})

	srv, err := server.New(
		server.Config{Port: cfg.Server.Port, ShutdownTimeout: cfg.Server.ShutdownTimeout},
		server.Deps{
			Service:        svc,
			Users:          server.NewUserService(users, &cfg.Password),
			JWT:            server.NewJWTService(&cfg.JWT),
			Limiter:        limiter,
			Logger:         log.With("component", "http"),
			AllowedOrigin:  cfg.Server.AllowedOrigin,
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx)
}

// openStore picks Postgres when a database URL is configured, otherwise the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (ats.Store, server.DBClient, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn("database.url not set; using in-memory store, data will not survive a restart")
		mem := ats.NewMemoryStore()
		return mem, mem, func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, nil, err
	}
	return ats.NewPostgresStore(database), database, database.Close, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (storage.Store, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("storage.bucket not set; uploads are kept in memory")
		baseURL := cfg.Storage.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d/files", cfg.Server.Port)
		}
		return storage.NewMemoryStore(baseURL), nil
	}
	s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}
	return s3Store, nil
}

func openNotifier(ctx context.Context, cfg *config.Config, log *logging.Logger) (*notify.Notifier, error) {
	renderer, err := notify.NewRenderer()
	if err != nil {
		return nil, err
	}

	var mailer notify.Mailer
	if cfg.Mail.Enabled {
		ses, err := notify.NewSESMailer(ctx, cfg.Mail)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES mailer: %w", err)
		}
		mailer = ses
	} else {
		log.Info("mail disabled; candidate emails are logged")
		mailer = notify.NewLogMailer(log.With("component", "mail"))
	}
	return notify.NewNotifier(mailer, renderer, log.With("component", "notify"), cfg.Mail.Timeout), nil
}

// openScorer builds the Gemini-backed scorer. Without an API key the scorer stays
// usable and reports scoring as unavailable.
func openScorer(ctx context.Context, cfg *config.Config, log *logging.Logger) (*scoring.Scorer, func(), error) {
	opts := []scoring.Option{scoring.WithTier(llm.ParseTier(cfg.LLM.ModelTier))}
	if cfg.LLM.APIKey == "" {
		log.Warn("llm.api_key not set; resumes will be stored with a zero score")
		return scoring.NewScorer(nil, log.With("component", "scoring"), opts...), func() {}, nil
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.LLM.APIKey)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close LLM client", "error", err)
		}
	}
	return scoring.NewScorer(client, log.With("component", "scoring"), opts...), closeClient, nil
}

// openLimiter shares counters through Redis when redis.url is set.
func openLimiter(cfg *config.Config, log *logging.Logger) (*ratelimit.Limiter, func(), error) {
	rlConfig := ratelimit.FromConfig(cfg.RateLimit)
	log = log.With("component", "ratelimit")

	if cfg.Redis.URL == "" {
		store := ratelimit.NewMemoryStore(rlConfig.CleanupInterval)
		return ratelimit.NewLimiter(rlConfig, store, log), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis.url: %w", err)
	}
	client := redis.NewClient(opts)
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	store := ratelimit.NewRedisStore(client, "ratelimit")
	return ratelimit.NewLimiter(rlConfig, store, log), closeClient, nil
}
