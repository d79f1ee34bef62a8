package artifact

import (
	"fmt"
	"strings"
	"time"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/language"
)

// Renderer turns a finished result into a stored artifact and returns its id.
type Renderer interface {
	Render(sessionID string, result *entity.Result, lang language.Config) (string, error)
}

// MarkdownRenderer renders the answer document as markdown. Diagram specs are
// listed as placeholders; turning them into images belongs to the diagram
// renderer collaborator.
type MarkdownRenderer struct {
	store Store
}

func NewMarkdownRenderer(store Store) *MarkdownRenderer {
	return &MarkdownRenderer{store: store}
}

var _ Renderer = (*MarkdownRenderer)(nil)

func (r *MarkdownRenderer) Render(sessionID string, result *entity.Result, lang language.Config) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Generated Answers\n\n")
	fmt.Fprintf(&b, "- Session: %s\n", sessionID)
	fmt.Fprintf(&b, "- Language: %s (%s)\n", lang.Name, lang.NativeName)
	fmt.Fprintf(&b, "- Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	if failed := result.FailedCount(); failed > 0 {
		fmt.Fprintf(&b, "- Questions without answers: %d of %d\n", failed, len(result.Items))
	}

	for _, item := range result.Items {
		fmt.Fprintf(&b, "\n## Question %d\n\n%s\n", item.Index, item.Question)
		if item.Answer == nil {
			fmt.Fprintf(&b, "\n_Answer could not be generated: %s_\n", item.Error)
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", *item.Answer)
		if item.VisualCount > 0 {
			fmt.Fprintf(&b, "\n_%d suggested diagram(s) pending rendering._\n", item.VisualCount)
		}
		if len(item.Citations) > 0 {
			b.WriteString("\n**References**\n\n")
			for _, c := range item.Citations {
				fmt.Fprintf(&b, "- %s\n", c)
			}
		}
	}

	id, err := r.store.Save([]byte(b.String()), ".md")
	if err != nil {
		return "", fmt.Errorf("failed to store rendered document: %w", err)
	}
	return id, nil
}
