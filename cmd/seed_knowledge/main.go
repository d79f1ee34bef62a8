package main

import (
	"context"
	"log"

	"qa-paper-be/internal/config"
	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/knowledge"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/repository/implementation"
	"qa-paper-be/pkg/database"
	"qa-paper-be/pkg/embedding"
	"qa-paper-be/pkg/utils"

	"github.com/google/uuid"
)

// chunkSize keeps each stored entry within a single embedding call.
const (
	chunkSize    = 1500
	chunkOverlap = 200
)

func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else if cfg.Ai.GeminiKey != "" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiKey)
	} else {
		log.Fatal("Error: no embedding provider configured (set GEMINI_API_KEY or EMBEDDING_PROVIDER=ollama)")
	}

	repo := implementation.NewKnowledgeRepository(db, logger.NewZapLogger(cfg.App.LogFilePath, false))
	ctx := context.Background()

	var entries []*entity.KnowledgeEntry
	var embeddings [][]float32

	for _, seed := range knowledge.SeedEntries() {
		// Long entries are chunked so each row stays inside the embedding
		// model's comfortable input size.
		for _, chunk := range utils.SplitText(seed.Content, chunkSize, chunkOverlap) {
			vector, err := provider.Generate(ctx, chunk, embedding.TaskDocument)
			if err != nil {
				log.Fatalf("Error: failed to embed %q: %v", seed.Topic, err)
			}

			entries = append(entries, &entity.KnowledgeEntry{
				Id:         uuid.New(),
				Subject:    seed.Subject,
				Topic:      seed.Topic,
				Content:    chunk,
				Language:   seed.Language,
				References: seed.References,
				Metadata:   seed.Metadata,
			})
			embeddings = append(embeddings, vector)
		}
	}

	if err := repo.CreateBulk(ctx, entries, embeddings); err != nil {
		log.Fatalf("Error: failed to insert seed corpus: %v", err)
	}

	log.Printf("✅ Success: seeded %d knowledge entries", len(entries))
}
