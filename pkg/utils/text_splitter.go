package utils

// SplitText cuts a knowledge document into overlapping chunks of at most
// chunkSize runes. The overlap keeps a definition that straddles a chunk
// boundary retrievable from either side. Splitting is rune-based so
// non-ASCII corpora never get cut mid-character.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		// An overlap as large as the chunk would never advance.
		step = chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
