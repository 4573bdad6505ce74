package domain

// OperationKind identifies one of the supported text transformations.
type OperationKind string

const (
	OpSummarize OperationKind = "summarize"
	OpSimplify  OperationKind = "simplify"
	OpProofread OperationKind = "proofread"
	OpQuestions OperationKind = "questions"
)

// Known reports whether k is one of the supported operation kinds.
// Records carrying other kinds are still stored and listed; derived
// stat buckets ignore them.
func (k OperationKind) Known() bool {
	switch k {
	case OpSummarize, OpSimplify, OpProofread, OpQuestions:
		return true
	}
	return false
}

// ContentRecord is one processed unit of study material. Records are
// immutable after creation; the only mutation is deletion.
type ContentRecord struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Type         OperationKind     `json:"type"`
	Result       string            `json:"result"`
	OriginalText string            `json:"originalText"`
	FileType     string            `json:"fileType"`
	Timestamp    int64             `json:"timestamp"`
	Options      map[string]string `json:"options,omitempty"`
}

// NewContent is a ContentRecord before the store has assigned its ID.
type NewContent struct {
	Title        string            `json:"title"`
	Type         OperationKind     `json:"type"`
	Result       string            `json:"result"`
	OriginalText string            `json:"originalText"`
	FileType     string            `json:"fileType"`
	Timestamp    int64             `json:"timestamp"`
	Options      map[string]string `json:"options,omitempty"`
}
