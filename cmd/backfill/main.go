package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lymcoach/backend/config"
	"github.com/lymcoach/backend/internal/infrastructure/knowledge"
	"github.com/lymcoach/backend/internal/infrastructure/openai"
)

// backfill embeds every knowledge-base chunk that has no vector yet. The
// id-cursor pagination makes an interrupted run resumable: rows already
// embedded no longer match the IS NULL filter.
func main() {
	batchSize := flag.Int("batch", 50, "chunks fetched per database page")
	perMinute := flag.Int("rate", 60, "embedding calls per minute")
	dryRun := flag.Bool("dry-run", false, "list chunks without embedding them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := knowledge.NewPool(ctx, cfg.Database.URL, knowledge.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	repo := knowledge.NewRepository(pool)
	embedder := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Dimensions:     cfg.OpenAI.Dimensions,
	})

	limiter := rate.NewLimiter(rate.Limit(float64(*perMinute)/60.0), 1)

	var cursor string
	processed := 0
	for {
		chunks, err := repo.MissingEmbeddings(ctx, cursor, *batchSize)
		if err != nil {
			logger.Fatal("failed to fetch chunks", zap.Error(err))
		}
		if len(chunks) == 0 {
			break
		}

		for _, chunk := range chunks {
			cursor = chunk.ID
			if *dryRun {
				logger.Info("would embed", zap.String("id", chunk.ID))
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				logger.Fatal("rate limiter interrupted", zap.Error(err))
			}

			vector, err := embedder.Embed(ctx, chunk.Content)
			if err != nil {
				logger.Error("embedding failed, skipping chunk", zap.String("id", chunk.ID), zap.Error(err))
				continue
			}
			if err := repo.UpdateEmbedding(ctx, chunk.ID, vector); err != nil {
				logger.Error("failed to store embedding", zap.String("id", chunk.ID), zap.Error(err))
				continue
			}
			processed++
		}

		logger.Info("batch done", zap.String("cursor", cursor), zap.Int("processed", processed))
	}

	logger.Info("backfill complete", zap.Int("processed", processed), zap.Bool("dryRun", *dryRun))
}
