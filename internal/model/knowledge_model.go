package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeEntry struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Subject    string    `gorm:"size:64;index"`
	Topic      string    `gorm:"size:255"`
	Content    string    `gorm:"type:text"`
	Language   string    `gorm:"size:8;index"`
	References datatypes.JSON
	Metadata   datatypes.JSON
	// 768 dimensions matches both text-embedding-004 and nomic-embed-text.
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}
