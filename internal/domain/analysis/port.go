package analysis

import "context"

// Provider port (interface for the actual detector, remote or simulated).
// Implementations must keep Confidence and region scores within [0,100]
// and ProcessingMS non-negative. The orchestrator bounds the call with a
// deadline on ctx and treats every returned error the same way.
type Provider interface {
	Analyze(ctx context.Context, img RawImage) (*AnalysisResult, error)
	Version() string
}

// PreviewBuilder port (interface for the preparation step).
type PreviewBuilder interface {
	Build(img RawImage) (Preview, error)
}

// Preview is the prepared form of a submitted image: original dimensions
// plus a downscaled PNG thumbnail for rendering.
type Preview struct {
	Width  int
	Height int
	PNG    []byte
}

// ArtifactStore port (interface for preview/object storage).
type ArtifactStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
