package entity

// Question is one extracted question from an uploaded paper.
type Question struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Visual element kinds the pipeline can flag for the diagram renderer.
const (
	VisualBlockDiagram = "block_diagram"
	VisualFlowchart    = "flowchart"
	VisualHierarchy    = "hierarchy"
)

// VisualSpec says that a diagram of a given kind is warranted for an answer.
// Actual rendering belongs to the diagram renderer collaborator.
type VisualSpec struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Language    string `json:"language"`
}
