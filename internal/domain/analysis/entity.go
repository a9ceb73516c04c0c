package analysis

import (
	"time"
)

// ID type for tracked items
type ItemID string

// State enum
type State string

const (
	StatePending   State = "pending"
	StateAnalyzing State = "analyzing"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Terminal reports whether the state can only be left via a reanalyze.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// RawImage is the payload handed to the Validator and the Provider.
// Format is the lowercase extension tag without the dot ("jpg", "png").
type RawImage struct {
	Name   string
	Format string
	Data   []byte
}

// AnomalyRegion value object: one sub-region finding, score 0-100.
type AnomalyRegion struct {
	Region string  `json:"region"`
	Score  float64 `json:"score"`
}

// AnalysisResult is the outcome of one provider call. For items in the
// error state it is synthetic: only Error, ProcessingMS and ModelVersion
// are meaningful.
type AnalysisResult struct {
	IsFake           bool            `json:"is_fake"`
	Confidence       float64         `json:"confidence"`
	GenerationMethod string          `json:"generation_method,omitempty"`
	Anomalies        []AnomalyRegion `json:"anomalies,omitempty"`
	ProcessingMS     int64           `json:"processing_ms"`
	ModelVersion     string          `json:"model_version,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Aggregate root: TrackedItem
type TrackedItem struct {
	ID          ItemID          `json:"id"`
	Name        string          `json:"name"`
	Format      string          `json:"format"`
	SizeBytes   int64           `json:"size_bytes"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	PreviewURL  string          `json:"preview_url,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	State       State           `json:"state"`
	Result      *AnalysisResult `json:"result,omitempty"`
}
