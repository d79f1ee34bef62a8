package embedding

import "context"

// Task types passed to providers that distinguish query and document vectors.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

// Provider turns text into a vector suitable for cosine similarity search.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
