package pipeline

// Stage names the steps a single question moves through. Each stage carries a
// cumulative weight; a question's weight is the weight of the last stage it
// reached, so aggregate job progress can be computed without extra bookkeeping.
type Stage string

const (
	StageKnowledgeSearch    Stage = "knowledge_search"
	StageContextBuilding    Stage = "context_building"
	StageAnswerGeneration   Stage = "answer_generation"
	StageVisualDetection    Stage = "visual_detection"
	StageCitationGeneration Stage = "citation_generation"
	StageComplete           Stage = "complete"
	StageFailed             Stage = "failed"
)

var stageWeights = map[Stage]int{
	StageKnowledgeSearch:    10,
	StageContextBuilding:    20,
	StageAnswerGeneration:   40,
	StageVisualDetection:    70,
	StageCitationGeneration: 90,
	StageComplete:           100,
}

// Weight reports the cumulative progress contribution of a stage, 0..100.
// StageFailed has no weight of its own: a failed question keeps the weight of
// the last stage it completed.
func (s Stage) Weight() int {
	return stageWeights[s]
}

// Terminal reports whether no further stage follows.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}
