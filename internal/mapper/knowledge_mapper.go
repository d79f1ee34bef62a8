package mapper

import (
	"encoding/json"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/model"
	"qa-paper-be/internal/pkg/logger"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeMapper struct {
	log logger.ILogger
}

func NewKnowledgeMapper(log logger.ILogger) *KnowledgeMapper {
	return &KnowledgeMapper{log: log}
}

func (m *KnowledgeMapper) ToEntity(mod *model.KnowledgeEntry) *entity.KnowledgeEntry {
	var references []string
	if len(mod.References) > 0 {
		if err := json.Unmarshal(mod.References, &references); err != nil {
			m.log.Warn("knowledge_mapper", "corrupt references column, dropping", map[string]interface{}{
				"entry_id": mod.Id.String(),
				"error":    err.Error(),
			})
		}
	}
	var metadata map[string]interface{}
	if len(mod.Metadata) > 0 {
		if err := json.Unmarshal(mod.Metadata, &metadata); err != nil {
			m.log.Warn("knowledge_mapper", "corrupt metadata column, dropping", map[string]interface{}{
				"entry_id": mod.Id.String(),
				"error":    err.Error(),
			})
		}
	}

	return &entity.KnowledgeEntry{
		Id:         mod.Id,
		Subject:    mod.Subject,
		Topic:      mod.Topic,
		Content:    mod.Content,
		Language:   mod.Language,
		References: references,
		Metadata:   metadata,
		CreatedAt:  mod.CreatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(ent *entity.KnowledgeEntry, embedding []float32) *model.KnowledgeEntry {
	references, _ := json.Marshal(ent.References)
	metadata, _ := json.Marshal(ent.Metadata)

	return &model.KnowledgeEntry{
		Id:         ent.Id,
		Subject:    ent.Subject,
		Topic:      ent.Topic,
		Content:    ent.Content,
		Language:   ent.Language,
		References: datatypes.JSON(references),
		Metadata:   datatypes.JSON(metadata),
		Embedding:  pgvector.NewVector(embedding),
		CreatedAt:  ent.CreatedAt,
	}
}
