package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeEntry is one piece of the language-tagged educational corpus.
type KnowledgeEntry struct {
	Id         uuid.UUID
	Subject    string
	Topic      string
	Content    string
	Language   string // ISO 639-1 tag of Content
	References []string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

// ScoredKnowledgeEntry pairs an entry with its retrieval similarity,
// 0.0 to 1.0 where 1.0 is identical.
type ScoredKnowledgeEntry struct {
	Entry *KnowledgeEntry
	Score float64
}
