package implementation

import (
	"context"
	"fmt"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/mapper"
	"qa-paper-be/internal/model"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB, log logger.ILogger) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(log),
	}
}

func (r *KnowledgeRepositoryImpl) Create(ctx context.Context, entry *entity.KnowledgeEntry, embedding []float32) error {
	m := r.mapper.ToModel(entry, embedding)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *KnowledgeRepositoryImpl) CreateBulk(ctx context.Context, entries []*entity.KnowledgeEntry, embeddings [][]float32) error {
	if len(entries) != len(embeddings) {
		return fmt.Errorf("entries/embeddings length mismatch: %d vs %d", len(entries), len(embeddings))
	}
	models := make([]*model.KnowledgeEntry, len(entries))
	for i, ent := range entries {
		models[i] = r.mapper.ToModel(ent, embeddings[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *KnowledgeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeEntry{}, id).Error
}

func (r *KnowledgeRepositoryImpl) CountByLanguage(ctx context.Context, language string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.KnowledgeEntry{}).
		Where("language = ?", language).Count(&count).Error
	return count, err
}

func (r *KnowledgeRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, language string, limit int, threshold float64) ([]*entity.ScoredKnowledgeEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity. created_at ASC keeps
	// the ranking stable when scores tie.
	type result struct {
		model.KnowledgeEntry
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_entries").
		Select("knowledge_entries.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("language = ?", language).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC, created_at ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredKnowledgeEntry, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredKnowledgeEntry{
			Entry: r.mapper.ToEntity(&res.KnowledgeEntry),
			Score: res.Similarity,
		}
	}
	return scored, nil
}

func (r *KnowledgeRepositoryImpl) SearchKeyword(ctx context.Context, query, language string, limit int) ([]*entity.ScoredKnowledgeEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	var models []*model.KnowledgeEntry
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("language = ?", language).
		Where("topic ILIKE ? OR subject ILIKE ? OR content ILIKE ?", pattern, pattern, pattern).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredKnowledgeEntry, len(models))
	for i, m := range models {
		// Keyword matches carry no meaningful similarity; a flat score keeps
		// the insertion order and still satisfies the ranked contract.
		scored[i] = &entity.ScoredKnowledgeEntry{Entry: r.mapper.ToEntity(m), Score: 0.5}
	}
	return scored, nil
}
