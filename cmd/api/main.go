package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bloomery/backend/internal/config"
	"bloomery/backend/internal/db"
	"bloomery/backend/internal/identity"
	"bloomery/backend/internal/llm"
	"bloomery/backend/internal/meaning"
	"bloomery/backend/internal/observability"
	"bloomery/backend/internal/recommend"
	"bloomery/backend/internal/server"
	"bloomery/backend/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("database ping failed", zap.Error(err))
	}
	if cfg.AutoApplySchema {
		if err := db.ApplySchema(ctx, pool); err != nil {
			logger.Fatal("apply schema failed", zap.Error(err))
		}
	}
	if err := db.ValidateRuntimeSchema(ctx, pool); err != nil {
		logger.Fatal("database schema mismatch", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	scorer, err := recommend.NewScorer(recommend.DefaultRuleset)
	if err != nil {
		logger.Fatal("invalid recommendation ruleset", zap.Error(err))
	}
	chat := recommend.NewChatClient(newAdvisorStreamer(cfg, logger), recommend.ChatConfig{
		Model:       cfg.OpenAIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxOutputTokens,
	})

	var cache meaning.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisCache, err := meaning.NewRedisCacheFromURL(ctx, cfg.RedisURL)
		if err != nil {
			// Best-effort: meanings are still served uncached.
			logger.Warn("meaning cache disabled", zap.Error(err))
		} else {
			defer func() { _ = redisCache.Close() }()
			cache = redisCache
		}
	}
	meaningOpts := meaning.DefaultOptions
	meaningOpts.Model = cfg.MeaningModel
	meaningOpts.CacheTTL = time.Duration(cfg.MeaningCacheTTLHours) * time.Hour
	meaningOpts.Timeout = time.Duration(cfg.AITimeoutSeconds) * time.Second
	meaningOpts.OnCacheLookup = func(result string) {
		metrics.MeaningCache.WithLabelValues(result).Inc()
	}

	verifier, err := identity.NewSvixVerifier(cfg.ClerkWebhookSecret)
	if err != nil {
		logger.Fatal("invalid CLERK_WEBHOOK_SECRET", zap.Error(err))
	}
	users := store.NewUsers(pool)

	app := server.New(cfg, server.Deps{
		Logger:      logger,
		Metrics:     metrics,
		Recommender: recommend.NewService(chat, scorer, logger.Named("recommend")),
		Meanings:    meaning.NewGenerator(newMeaningStreamer(cfg, logger), cache, meaningOpts, logger.Named("meaning")),
		Webhooks:    identity.NewHandler(verifier, users, logger.Named("identity")),
		Users:       users,
		Shop:        store.NewBouquets(pool),
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("bloomery api listening",
			zap.String("addr", "http://localhost:"+cfg.AppPort),
			zap.String("ai_provider", cfg.AIProvider),
			zap.String("ruleset", scorer.Version()),
			zap.Bool("meaning_cache", cache != nil),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newAdvisorStreamer(cfg config.Config, logger *zap.Logger) llm.Streamer {
	if cfg.AIProvider == config.AIProviderMock {
		return &llm.MockStreamer{}
	}
	return llm.NewOpenAIStreamer(llm.OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
	}, logger.Named("advisor"))
}

// newMeaningStreamer talks to the meaning provider, which may be a different
// OpenAI-compatible endpoint than the advisor.
func newMeaningStreamer(cfg config.Config, logger *zap.Logger) llm.Streamer {
	if cfg.AIProvider == config.AIProviderMock || strings.TrimSpace(cfg.MeaningAPIKey) == "" {
		return &llm.MockStreamer{}
	}
	return llm.NewOpenAIStreamer(llm.OpenAIOptions{
		APIKey:  cfg.MeaningAPIKey,
		BaseURL: cfg.MeaningBaseURL,
		Model:   cfg.MeaningModel,
		Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
	}, logger.Named("meaning-provider"))
}
