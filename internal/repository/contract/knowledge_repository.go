package contract

import (
	"context"

	"qa-paper-be/internal/entity"

	"github.com/google/uuid"
)

type KnowledgeRepository interface {
	Create(ctx context.Context, entry *entity.KnowledgeEntry, embedding []float32) error
	CreateBulk(ctx context.Context, entries []*entity.KnowledgeEntry, embeddings [][]float32) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByLanguage(ctx context.Context, language string) (int64, error)

	// SearchSimilar ranks entries for one language by cosine similarity
	// descending, oldest-first on ties, filtered by threshold.
	SearchSimilar(ctx context.Context, embedding []float32, language string, limit int, threshold float64) ([]*entity.ScoredKnowledgeEntry, error)

	// SearchKeyword is the degraded path used when no embedding provider is
	// available: case-insensitive substring match over topic, subject and
	// content.
	SearchKeyword(ctx context.Context, query, language string, limit int) ([]*entity.ScoredKnowledgeEntry, error)
}
