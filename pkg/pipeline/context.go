package pipeline

import (
	"fmt"
	"strings"

	"qa-paper-be/internal/entity"
)

// buildContext formats retrieved entries into the materials block of the
// prompt. When the formatted block would exceed budget characters, the
// lowest-ranked entries are dropped whole until it fits; entries are assumed
// sorted best-first, as the retriever returns them. It reports the entries
// that survived, so citations reference only material the model actually saw.
func buildContext(entries []*entity.ScoredKnowledgeEntry, budget int) (string, []*entity.ScoredKnowledgeEntry) {
	if len(entries) == 0 {
		return "", nil
	}

	kept := entries
	for len(kept) > 0 {
		block := formatContext(kept)
		if budget <= 0 || len(block) <= budget {
			return block, kept
		}
		kept = kept[:len(kept)-1]
	}
	return "", nil
}

func formatContext(entries []*entity.ScoredKnowledgeEntry) string {
	var b strings.Builder
	b.WriteString("Relevant educational materials:")
	for i, scored := range entries {
		entry := scored.Entry
		fmt.Fprintf(&b, "\n\n%d. %s (%s):\n%s", i+1, entry.Topic, entry.Subject, entry.Content)
		if len(entry.References) > 0 {
			fmt.Fprintf(&b, "\n   References: %s", strings.Join(entry.References, ", "))
		}
	}
	return b.String()
}

// collectCitations gathers the reference strings of the kept entries,
// first-seen order, duplicates removed.
func collectCitations(entries []*entity.ScoredKnowledgeEntry) []string {
	var citations []string
	seen := make(map[string]struct{})
	for _, scored := range entries {
		for _, ref := range scored.Entry.References {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			citations = append(citations, ref)
		}
	}
	return citations
}
