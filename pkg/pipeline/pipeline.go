package pipeline

import (
	"context"
	"fmt"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/knowledge"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/pkg/llm"
)

// Generator produces answer text. Satisfied by client.FallbackClient.
type Generator interface {
	Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error)
}

// ProgressSink receives stage transitions as they happen. The caller decides
// what to do with them; the pipeline never blocks on a sink and never fails
// because of one.
type ProgressSink interface {
	Emit(ctx context.Context, stage Stage, weight int, message string)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(ctx context.Context, stage Stage, weight int, message string)

func (f SinkFunc) Emit(ctx context.Context, stage Stage, weight int, message string) {
	f(ctx, stage, weight, message)
}

// Outcome is what a single question run produced. Failed outcomes carry the
// failure message instead of an answer; they are an expected result, not an
// error, so one bad question cannot sink its siblings.
type Outcome struct {
	Question       entity.Question
	Answer         string
	Visuals        []entity.VisualSpec
	Citations      []string
	SourceIDs      []string
	Failed         bool
	FailureMessage string
}

// QuestionPipeline runs one question through the staged answer flow:
// knowledge search, context building, answer generation, visual detection,
// citation generation. Only answer generation can fail the question; the
// retrieval stages degrade to an empty context.
type QuestionPipeline struct {
	retriever     knowledge.Retriever
	generator     Generator
	contextBudget int
	topK          int
	log           logger.ILogger
}

func NewQuestionPipeline(retriever knowledge.Retriever, generator Generator, contextBudget, topK int, log logger.ILogger) *QuestionPipeline {
	return &QuestionPipeline{
		retriever:     retriever,
		generator:     generator,
		contextBudget: contextBudget,
		topK:          topK,
		log:           log,
	}
}

// Run moves q through every stage, reporting each transition to sink. The
// returned Outcome is valid even when the question failed.
func (p *QuestionPipeline) Run(ctx context.Context, q entity.Question, lang language.Config, sink ProgressSink) Outcome {
	emit := func(stage Stage, format string, args ...interface{}) {
		if sink != nil {
			sink.Emit(ctx, stage, stage.Weight(), fmt.Sprintf(format, args...))
		}
	}

	emit(StageKnowledgeSearch, "Searching knowledge base for question %d", q.Index)
	entries := p.retriever.Search(ctx, q.Text, lang.Code, p.topK)

	emit(StageContextBuilding, "Building context for question %d", q.Index)
	contextBlock, kept := buildContext(entries, p.contextBudget)

	emit(StageAnswerGeneration, "Generating answer for question %d", q.Index)
	prompt := buildPrompt(q, contextBlock, lang, len(kept) > 0)
	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.log.Error("pipeline", "answer generation failed", map[string]interface{}{
			"question_index": q.Index,
			"error":          err.Error(),
		})
		lastWeight := StageContextBuilding.Weight()
		if sink != nil {
			sink.Emit(ctx, StageFailed, lastWeight, fmt.Sprintf("Question %d failed: %v", q.Index, err))
		}
		return Outcome{
			Question:       q,
			Failed:         true,
			FailureMessage: err.Error(),
		}
	}

	emit(StageVisualDetection, "Detecting visual elements for question %d", q.Index)
	visuals := detectVisuals(q, answer, lang.Code)

	emit(StageCitationGeneration, "Generating citations for question %d", q.Index)
	citations := collectCitations(kept)
	sourceIDs := make([]string, 0, len(kept))
	for _, scored := range kept {
		sourceIDs = append(sourceIDs, scored.Entry.Id.String())
	}

	emit(StageComplete, "Completed answer generation for question %d", q.Index)
	return Outcome{
		Question:  q,
		Answer:    answer,
		Visuals:   visuals,
		Citations: citations,
		SourceIDs: sourceIDs,
	}
}
