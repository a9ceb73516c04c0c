package mock

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

const modelVersion = "MockModel v1.0"

var generationMethods = []string{"GAN", "Diffusion", "Face Swap"}

var facialRegions = []string{
	"Eyes",
	"Mouth",
	"Nose",
	"Skin Texture",
	"Lighting",
	"Hair",
	"Face Boundaries",
	"Background Consistency",
}

// Detector generates plausible detection results without a trained
// model, so the rest of the system can be exercised before one exists.
type Detector struct {
	mu         sync.Mutex
	randSource *rand.Rand
	minDelay   time.Duration
	maxDelay   time.Duration
}

func NewDetector() *Detector {
	return NewDetectorWithDelay(500*time.Millisecond, 2500*time.Millisecond)
}

// NewDetectorWithDelay controls the simulated inference delay. Tests use
// zero delays.
func NewDetectorWithDelay(min, max time.Duration) *Detector {
	// Dedicated random source to avoid contention
	src := rand.NewSource(time.Now().UnixNano())
	return &Detector{
		randSource: rand.New(src),
		minDelay:   min,
		maxDelay:   max,
	}
}

func (d *Detector) Version() string { return modelVersion }

func (d *Detector) Analyze(ctx context.Context, img analysis.RawImage) (*analysis.AnalysisResult, error) {
	start := time.Now()

	if delay := d.delay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	isFake := d.randSource.Float64() > 0.5

	// Higher confidence for clear cases, lower for ambiguous ones
	var confidence float64
	if d.randSource.Float64() > 0.3 {
		confidence = d.uniform(75, 98)
	} else {
		confidence = d.uniform(60, 75)
	}

	// Generation method only for fakes, and only detected 80% of the time
	method := ""
	if isFake && d.randSource.Float64() > 0.2 {
		method = generationMethods[d.randSource.Intn(len(generationMethods))]
	}

	res := &analysis.AnalysisResult{
		IsFake:           isFake,
		Confidence:       round1(confidence),
		GenerationMethod: method,
		Anomalies:        d.anomalies(isFake),
		ProcessingMS:     time.Since(start).Milliseconds(),
		ModelVersion:     modelVersion,
	}
	return res, nil
}

// anomalies scores 4-6 random facial regions, fakes high, reals low,
// sorted by score descending.
func (d *Detector) anomalies(isFake bool) []analysis.AnomalyRegion {
	n := 4 + d.randSource.Intn(3)
	perm := d.randSource.Perm(len(facialRegions))[:n]

	out := make([]analysis.AnomalyRegion, 0, n)
	for _, i := range perm {
		var score float64
		if isFake {
			score = d.uniform(40, 95)
		} else {
			score = d.uniform(5, 45)
		}
		out = append(out, analysis.AnomalyRegion{
			Region: facialRegions[i],
			Score:  round1(score),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (d *Detector) delay() time.Duration {
	if d.maxDelay <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.maxDelay <= d.minDelay {
		return d.minDelay
	}
	return d.minDelay + time.Duration(d.randSource.Int63n(int64(d.maxDelay-d.minDelay)))
}

func (d *Detector) uniform(lo, hi float64) float64 {
	return lo + d.randSource.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
