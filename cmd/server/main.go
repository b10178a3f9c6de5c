package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/lymcoach/backend/config"
	httpDelivery "github.com/lymcoach/backend/internal/delivery/http"
	"github.com/lymcoach/backend/internal/infrastructure/cache"
	"github.com/lymcoach/backend/internal/infrastructure/ciqual"
	"github.com/lymcoach/backend/internal/infrastructure/knowledge"
	"github.com/lymcoach/backend/internal/infrastructure/openai"
	"github.com/lymcoach/backend/internal/infrastructure/openfoodfacts"
	"github.com/lymcoach/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting LYM backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	// Food sources
	ciqualRepo, err := ciqual.Load(cfg.Sources.CiqualPath, logger)
	if err != nil {
		logger.Fatal("failed to load ciqual dataset", zap.Error(err))
	}
	offClient := openfoodfacts.NewClient(cfg.Sources.OFFBaseURL, cfg.RateLimit.OFFPerMinute, logger)

	// Knowledge base
	ctx := context.Background()
	pool, err := knowledge.NewPool(ctx, cfg.Database.URL, knowledge.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	knowledgeRepo := knowledge.NewRepository(pool)
	conversations := knowledge.NewConversationStore(pool)

	// OpenAI-compatible provider with a cached embedder in front
	aiClient := openai.NewClient(openai.Config{
		APIKey:          cfg.OpenAI.APIKey,
		BaseURL:         cfg.OpenAI.BaseURL,
		EmbeddingModel:  cfg.OpenAI.EmbeddingModel,
		CompletionModel: cfg.OpenAI.CompletionModel,
		Dimensions:      cfg.OpenAI.Dimensions,
		Temperature:     cfg.OpenAI.Temperature,
	})
	embedder, err := openai.NewCachedEmbedder(aiClient, cfg.OpenAI.CacheSize)
	if err != nil {
		logger.Fatal("failed to create embedding cache", zap.Error(err))
	}

	// Usecase layer
	searchService := usecase.NewProductSearchService(
		ciqualRepo,
		offClient,
		offClient,
		cache.NewMemoryCache(),
		logger,
		usecase.ProductSearchConfig{CacheTTL: cfg.Cache.TTL},
	)
	coachService := usecase.NewCoachService(
		embedder,
		knowledgeRepo,
		aiClient,
		conversations,
		logger,
		usecase.CoachConfig{
			SimilarityThreshold: cfg.Coach.SimilarityThreshold,
			RetrievalLimit:      cfg.Coach.RetrievalLimit,
		},
	)
	mealPlanner := usecase.NewMealPlanner(ciqualRepo, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, coachService, mealPlanner, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
