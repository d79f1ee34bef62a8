package pipeline

import (
	"fmt"
	"strings"

	"qa-paper-be/internal/entity"
	"qa-paper-be/internal/language"
)

// buildPrompt assembles the generation prompt: language instruction, corpus
// context (or a note that none was found), the question, and answer-format
// instructions.
func buildPrompt(q entity.Question, contextBlock string, lang language.Config, hasEntries bool) string {
	var parts []string

	if lang.Code != "en" {
		parts = append(parts, fmt.Sprintf(
			"Please provide your answer in %s (%s).", lang.Name, lang.NativeName))
	}

	if contextBlock != "" {
		parts = append(parts, contextBlock)
		parts = append(parts,
			"\nUse the above educational materials to inform your answer. "+
				"Include citations where appropriate.")
	} else {
		parts = append(parts,
			"Note: No specialized educational materials were found for this topic. "+
				"Please provide a comprehensive answer using general knowledge.")
	}

	parts = append(parts, fmt.Sprintf("\nQuestion: %s", q.Text))

	parts = append(parts,
		"\nProvide a comprehensive, detailed answer that:"+
			"\n1. Directly addresses the question"+
			"\n2. Includes relevant explanations and examples"+
			"\n3. Is educationally sound and accurate"+
			"\n4. Uses clear, understandable language")

	if hasEntries {
		parts = append(parts, "5. References the educational materials provided where relevant")
	}

	return strings.Join(parts, "\n")
}
