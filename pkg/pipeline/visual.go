package pipeline

import (
	"fmt"
	"strings"

	"qa-paper-be/internal/entity"
)

// Keyword cues that suggest an answer would benefit from a diagram. Detection
// scans question and answer text together; each matched family yields at most
// one spec, so a question never produces duplicate diagrams of one kind.
var (
	architectureCues = []string{
		"system", "component", "module", "architecture", "structure",
		"design", "layer", "tier", "service", "microservice",
	}
	processCues = []string{
		"process", "workflow", "steps", "procedure", "algorithm",
		"flow", "sequence", "stage", "phase", "cycle",
	}
	hierarchyCues = []string{
		"hierarchy", "tree", "organization", "classification",
		"taxonomy", "inheritance", "parent", "child", "level",
	}
)

// detectVisuals flags diagram kinds warranted by the question and its answer.
// Rendering is out of scope here; the specs travel with the result for the
// diagram renderer collaborator.
func detectVisuals(q entity.Question, answer, lang string) []entity.VisualSpec {
	combined := strings.ToLower(q.Text + " " + answer)

	var specs []entity.VisualSpec
	if containsAny(combined, architectureCues) {
		specs = append(specs, entity.VisualSpec{
			Kind:        entity.VisualBlockDiagram,
			Description: fmt.Sprintf("Block diagram for: %s", truncate(q.Text, 50)),
			Language:    lang,
		})
	}
	if containsAny(combined, processCues) {
		specs = append(specs, entity.VisualSpec{
			Kind:        entity.VisualFlowchart,
			Description: fmt.Sprintf("Flowchart for: %s", truncate(q.Text, 50)),
			Language:    lang,
		})
	}
	if containsAny(combined, hierarchyCues) {
		specs = append(specs, entity.VisualSpec{
			Kind:        entity.VisualHierarchy,
			Description: fmt.Sprintf("Hierarchy diagram for: %s", truncate(q.Text, 50)),
			Language:    lang,
		})
	}
	return specs
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
