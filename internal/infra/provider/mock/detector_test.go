package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

func TestDetectorOutputRanges(t *testing.T) {
	t.Parallel()

	d := NewDetectorWithDelay(0, 0)
	img := analysis.RawImage{Name: "face.jpg", Format: "jpg", Data: []byte{0xff}}

	methods := map[string]bool{"GAN": true, "Diffusion": true, "Face Swap": true}

	for i := 0; i < 100; i++ {
		res, err := d.Analyze(context.Background(), img)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.Confidence < 60 || res.Confidence > 98 {
			t.Fatalf("confidence %v out of range", res.Confidence)
		}
		if res.ModelVersion != "MockModel v1.0" {
			t.Fatalf("model version = %q", res.ModelVersion)
		}
		if res.ProcessingMS < 0 {
			t.Fatalf("negative processing time")
		}
		if !res.IsFake && res.GenerationMethod != "" {
			t.Fatalf("authentic verdict carries method %q", res.GenerationMethod)
		}
		if res.GenerationMethod != "" && !methods[res.GenerationMethod] {
			t.Fatalf("unknown method %q", res.GenerationMethod)
		}

		if n := len(res.Anomalies); n < 4 || n > 6 {
			t.Fatalf("anomaly count = %d", n)
		}
		seen := map[string]bool{}
		for j, a := range res.Anomalies {
			if a.Score < 0 || a.Score > 100 {
				t.Fatalf("anomaly score %v out of range", a.Score)
			}
			if seen[a.Region] {
				t.Fatalf("duplicate region %q", a.Region)
			}
			seen[a.Region] = true
			if j > 0 && res.Anomalies[j-1].Score < a.Score {
				t.Fatalf("anomalies not sorted descending: %+v", res.Anomalies)
			}
			if res.IsFake && a.Score < 40 {
				t.Fatalf("fake anomaly score %v below band", a.Score)
			}
			if !res.IsFake && a.Score > 45 {
				t.Fatalf("authentic anomaly score %v above band", a.Score)
			}
		}
	}
}

func TestDetectorHonorsContextDuringDelay(t *testing.T) {
	t.Parallel()

	d := NewDetectorWithDelay(time.Minute, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := d.Analyze(ctx, analysis.RawImage{Name: "x.jpg"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestDetectorVersion(t *testing.T) {
	t.Parallel()

	if got := NewDetector().Version(); got != "MockModel v1.0" {
		t.Fatalf("Version() = %q", got)
	}
}
