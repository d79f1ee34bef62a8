package mapper

import (
	"testing"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// warnRecorder captures Warn calls so tests can assert decode failures are
// reported rather than swallowed.
type warnRecorder struct {
	warns []string
}

func (r *warnRecorder) Debug(string, string, map[string]interface{}) {}
func (r *warnRecorder) Info(string, string, map[string]interface{})  {}
func (r *warnRecorder) Warn(_, message string, _ map[string]interface{}) {
	r.warns = append(r.warns, message)
}
func (r *warnRecorder) Error(string, string, map[string]interface{}) {}
func (r *warnRecorder) Sync() error                                  { return nil }

func TestToEntityRoundTrip(t *testing.T) {
	rec := &warnRecorder{}
	m := NewKnowledgeMapper(rec)

	ent := &entity.KnowledgeEntry{
		Id:         uuid.New(),
		Subject:    "physics",
		Topic:      "Gravity",
		Content:    "Masses attract.",
		Language:   "en",
		References: []string{"Physics Fundamentals"},
		Metadata:   map[string]interface{}{"difficulty": "intermediate"},
	}

	got := m.ToEntity(m.ToModel(ent, []float32{0.1, 0.2}))
	assert.Equal(t, ent.Id, got.Id)
	assert.Equal(t, ent.References, got.References)
	assert.Equal(t, "intermediate", got.Metadata["difficulty"])
	assert.Empty(t, rec.warns)
}

func TestToEntityCorruptColumnsAreReported(t *testing.T) {
	rec := &warnRecorder{}
	m := NewKnowledgeMapper(rec)

	mod := &model.KnowledgeEntry{
		Id:         uuid.New(),
		Subject:    "physics",
		Topic:      "Gravity",
		Content:    "Masses attract.",
		Language:   "en",
		References: datatypes.JSON(`{not json`),
		Metadata:   datatypes.JSON(`[broken`),
	}

	got := m.ToEntity(mod)
	require.NotNil(t, got)
	// The row still maps; only the corrupt columns are dropped.
	assert.Equal(t, "Gravity", got.Topic)
	assert.Nil(t, got.References)
	assert.Nil(t, got.Metadata)
	assert.Len(t, rec.warns, 2)
}
