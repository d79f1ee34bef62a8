package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/knowledge"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	entries []*entity.ScoredKnowledgeEntry
}

func (r *stubRetriever) Search(context.Context, string, string, int) []*entity.ScoredKnowledgeEntry {
	return r.entries
}

var _ knowledge.Retriever = (*stubRetriever)(nil)

type stubGenerator struct {
	answer string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	g.prompt = prompt
	return g.answer, g.err
}

type recordedEmit struct {
	stage  Stage
	weight int
}

func recordingSink(into *[]recordedEmit) ProgressSink {
	return SinkFunc(func(_ context.Context, stage Stage, weight int, _ string) {
		*into = append(*into, recordedEmit{stage: stage, weight: weight})
	})
}

func english(t *testing.T) language.Config {
	t.Helper()
	cfg, err := language.Lookup("en")
	require.NoError(t, err)
	return cfg
}

func scored(topic, content string, refs ...string) *entity.ScoredKnowledgeEntry {
	return &entity.ScoredKnowledgeEntry{
		Entry: &entity.KnowledgeEntry{
			Id:         uuid.New(),
			Subject:    "science",
			Topic:      topic,
			Content:    content,
			Language:   "en",
			References: refs,
		},
		Score: 0.9,
	}
}

func TestStageWeights(t *testing.T) {
	tests := []struct {
		stage Stage
		want  int
	}{
		{StageKnowledgeSearch, 10},
		{StageContextBuilding, 20},
		{StageAnswerGeneration, 40},
		{StageVisualDetection, 70},
		{StageCitationGeneration, 90},
		{StageComplete, 100},
		{StageFailed, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.stage.Weight(), string(tt.stage))
	}

	assert.True(t, StageComplete.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageAnswerGeneration.Terminal())
}

func TestRunHappyPath(t *testing.T) {
	gen := &stubGenerator{answer: "The water cycle moves water through stages of evaporation."}
	retriever := &stubRetriever{entries: []*entity.ScoredKnowledgeEntry{
		scored("Water Cycle", "Evaporation, condensation, precipitation.", "Earth Science Primer"),
	}}
	p := NewQuestionPipeline(retriever, gen, 6000, 5, logger.NewNopLogger())

	var emits []recordedEmit
	out := p.Run(context.Background(), entity.Question{Index: 1, Text: "Explain the water cycle process"}, english(t), recordingSink(&emits))

	require.False(t, out.Failed)
	assert.Equal(t, gen.answer, out.Answer)
	assert.Equal(t, []string{"Earth Science Primer"}, out.Citations)
	require.Len(t, out.SourceIDs, 1)

	wantStages := []Stage{
		StageKnowledgeSearch,
		StageContextBuilding,
		StageAnswerGeneration,
		StageVisualDetection,
		StageCitationGeneration,
		StageComplete,
	}
	require.Len(t, emits, len(wantStages))
	for i, stage := range wantStages {
		assert.Equal(t, stage, emits[i].stage)
		assert.Equal(t, stage.Weight(), emits[i].weight)
	}
}

func TestRunEmptyRetrievalStillAnswers(t *testing.T) {
	gen := &stubGenerator{answer: "General knowledge answer."}
	p := NewQuestionPipeline(&stubRetriever{}, gen, 6000, 5, logger.NewNopLogger())

	out := p.Run(context.Background(), entity.Question{Index: 1, Text: "What is entropy?"}, english(t), nil)

	require.False(t, out.Failed)
	assert.Empty(t, out.Citations)
	assert.Contains(t, gen.prompt, "No specialized educational materials were found")
}

func TestRunGeneratorFailureIsTerminal(t *testing.T) {
	gen := &stubGenerator{err: errors.New("all providers exhausted")}
	p := NewQuestionPipeline(&stubRetriever{}, gen, 6000, 5, logger.NewNopLogger())

	var emits []recordedEmit
	out := p.Run(context.Background(), entity.Question{Index: 2, Text: "Why?"}, english(t), recordingSink(&emits))

	require.True(t, out.Failed)
	assert.Empty(t, out.Answer)
	assert.Contains(t, out.FailureMessage, "exhausted")

	last := emits[len(emits)-1]
	assert.Equal(t, StageFailed, last.stage)
	// A failed question keeps the weight of its last completed stage.
	assert.Equal(t, StageContextBuilding.Weight(), last.weight)
}

func TestBuildContextBudgetDropsLowestRanked(t *testing.T) {
	big := strings.Repeat("a", 400)
	entries := []*entity.ScoredKnowledgeEntry{
		scored("First", big, "ref-1"),
		scored("Second", big, "ref-2"),
		scored("Third", big, "ref-3"),
	}

	full, kept := buildContext(entries, 0)
	assert.Len(t, kept, 3)
	assert.Contains(t, full, "Third")

	// A budget that fits roughly one entry keeps the best-ranked one.
	block, kept := buildContext(entries, 500)
	require.Len(t, kept, 1)
	assert.Equal(t, "First", kept[0].Entry.Topic)
	assert.NotContains(t, block, "Second")
	assert.LessOrEqual(t, len(block), 500)

	// Citations follow the kept entries, not the raw retrieval.
	assert.Equal(t, []string{"ref-1"}, collectCitations(kept))
}

func TestBuildContextEmpty(t *testing.T) {
	block, kept := buildContext(nil, 100)
	assert.Empty(t, block)
	assert.Empty(t, kept)
}

func TestCollectCitationsDeduplicates(t *testing.T) {
	entries := []*entity.ScoredKnowledgeEntry{
		scored("A", "x", "Shared Source", "Only A"),
		scored("B", "y", "Shared Source", "Only B"),
	}
	assert.Equal(t, []string{"Shared Source", "Only A", "Only B"}, collectCitations(entries))
}

func TestBuildPromptLanguageInstruction(t *testing.T) {
	es, err := language.Lookup("es")
	require.NoError(t, err)

	prompt := buildPrompt(entity.Question{Text: "¿Qué es la fotosíntesis?"}, "", es, false)
	assert.Contains(t, prompt, "Spanish (Español)")

	enPrompt := buildPrompt(entity.Question{Text: "What is photosynthesis?"}, "", english(t), false)
	assert.NotContains(t, enPrompt, "provide your answer in")
}

func TestDetectVisuals(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     []string
	}{
		{
			name:     "architecture cue",
			question: "Describe the system architecture of a web server",
			want:     []string{entity.VisualBlockDiagram},
		},
		{
			name:     "process cue",
			question: "What are the steps of photosynthesis?",
			want:     []string{entity.VisualFlowchart},
		},
		{
			name:     "hierarchy cue",
			question: "Explain the taxonomy of living organisms",
			want:     []string{entity.VisualHierarchy},
		},
		{
			name:     "multiple cue families",
			question: "Describe the system design and workflow of inheritance in OOP",
			want:     []string{entity.VisualBlockDiagram, entity.VisualFlowchart, entity.VisualHierarchy},
		},
		{
			name:     "cue in answer text",
			question: "Tell me about water",
			answer:   "Water moves in a continuous cycle of evaporation and rain.",
			want:     []string{entity.VisualFlowchart},
		},
		{
			name:     "no cues",
			question: "What year did the war end?",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := detectVisuals(entity.Question{Index: 1, Text: tt.question}, tt.answer, "en")
			var kinds []string
			for _, s := range specs {
				kinds = append(kinds, s.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestDetectVisualsTruncatesDescription(t *testing.T) {
	long := "Describe the system " + strings.Repeat("architecture ", 20)
	specs := detectVisuals(entity.Question{Text: long}, "", "en")
	require.NotEmpty(t, specs)
	assert.Equal(t, fmt.Sprintf("Block diagram for: %s...", string([]rune(long)[:50])), specs[0].Description)
}
