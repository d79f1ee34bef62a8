package knowledge

import (
	"context"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/repository/contract"
	"qa-paper-be/pkg/embedding"
)

// Retriever is the pipeline-facing search contract. Implementations never
// return an error: absence of knowledge must not block answer generation, so
// every failure degrades to an empty result.
type Retriever interface {
	Search(ctx context.Context, question, language string, topK int) []*entity.ScoredKnowledgeEntry
}

// CorpusRetriever embeds the question and ranks the language-tagged corpus by
// cosine similarity. Without an embedding provider it falls back to keyword
// matching, and on any failure it logs and returns nothing.
type CorpusRetriever struct {
	repo      contract.KnowledgeRepository
	embedder  embedding.Provider // nil enables the keyword fallback
	threshold float64
	log       logger.ILogger
}

func NewCorpusRetriever(repo contract.KnowledgeRepository, embedder embedding.Provider, threshold float64, log logger.ILogger) *CorpusRetriever {
	return &CorpusRetriever{
		repo:      repo,
		embedder:  embedder,
		threshold: threshold,
		log:       log,
	}
}

var _ Retriever = (*CorpusRetriever)(nil)

func (r *CorpusRetriever) Search(ctx context.Context, question, language string, topK int) []*entity.ScoredKnowledgeEntry {
	if r.repo == nil {
		// No corpus backend configured; answers come from general knowledge.
		return nil
	}
	if r.embedder == nil {
		return r.keyword(ctx, question, language, topK)
	}

	vector, err := r.embedder.Generate(ctx, question, embedding.TaskQuery)
	if err != nil {
		r.log.Warn("knowledge", "embedding failed, falling back to keyword search", map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return r.keyword(ctx, question, language, topK)
	}

	entries, err := r.repo.SearchSimilar(ctx, vector, language, topK, r.threshold)
	if err != nil {
		r.log.Warn("knowledge", "similarity search failed", map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return nil
	}
	return entries
}

func (r *CorpusRetriever) keyword(ctx context.Context, question, language string, topK int) []*entity.ScoredKnowledgeEntry {
	entries, err := r.repo.SearchKeyword(ctx, question, language, topK)
	if err != nil {
		r.log.Warn("knowledge", "keyword search failed", map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return nil
	}
	return entries
}
