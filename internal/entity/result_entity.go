package entity

// QuestionResult is one per-question outcome inside a Result. A failed
// question carries a nil Answer and an explanatory note; it does not make the
// session an error.
type QuestionResult struct {
	Index       int      `json:"index"`
	Question    string   `json:"question"`
	Answer      *string  `json:"answer"` // nil when the question failed
	VisualCount int      `json:"visual_count"`
	Citations   []string `json:"citations"`
	Error       string   `json:"error,omitempty"`
}

// Result is written exactly once per session, at job completion.
type Result struct {
	Items      []QuestionResult `json:"items"`
	Success    bool             `json:"success"`
	ArtifactID string           `json:"artifact_id,omitempty"`
	Language   string           `json:"language"`
	Error      string           `json:"error,omitempty"`
}

// FailedCount reports how many questions ended in the failed terminal state.
func (r *Result) FailedCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Answer == nil {
			n++
		}
	}
	return n
}
