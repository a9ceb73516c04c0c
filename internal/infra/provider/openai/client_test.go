package openai

import (
	"strings"
	"testing"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	t.Run("fake with method", func(t *testing.T) {
		t.Parallel()
		res, err := parseVerdict(`{
			"is_fake": true,
			"confidence": 87.5,
			"generation_method": "Diffusion",
			"anomalies": [
				{"region": "Eyes", "score": 78.3},
				{"region": "Mouth", "score": 65.2}
			]
		}`)
		if err != nil {
			t.Fatalf("parseVerdict: %v", err)
		}
		if !res.IsFake || res.Confidence != 87.5 || res.GenerationMethod != "Diffusion" {
			t.Fatalf("result = %+v", res)
		}
		if len(res.Anomalies) != 2 || res.Anomalies[0].Region != "Eyes" {
			t.Fatalf("anomalies = %+v", res.Anomalies)
		}
	})

	t.Run("authentic drops method", func(t *testing.T) {
		t.Parallel()
		res, err := parseVerdict(`{"is_fake": false, "confidence": 92, "generation_method": "GAN", "anomalies": []}`)
		if err != nil {
			t.Fatalf("parseVerdict: %v", err)
		}
		if res.GenerationMethod != "" {
			t.Fatalf("method kept on authentic verdict: %q", res.GenerationMethod)
		}
	})

	t.Run("null method", func(t *testing.T) {
		t.Parallel()
		res, err := parseVerdict(`{"is_fake": true, "confidence": 70, "generation_method": null}`)
		if err != nil {
			t.Fatalf("parseVerdict: %v", err)
		}
		if res.GenerationMethod != "" {
			t.Fatalf("method = %q, want empty", res.GenerationMethod)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		if _, err := parseVerdict("```json\n{}\n```"); err == nil {
			t.Fatalf("expected error for fenced output")
		}
	})
}

func TestDataURL(t *testing.T) {
	t.Parallel()

	jpg := dataURL(analysis.RawImage{Format: "jpg", Data: []byte{1, 2, 3}})
	if !strings.HasPrefix(jpg, "data:image/jpeg;base64,") {
		t.Fatalf("jpg data url = %q", jpg)
	}
	png := dataURL(analysis.RawImage{Format: "PNG", Data: []byte{1}})
	if !strings.HasPrefix(png, "data:image/png;base64,") {
		t.Fatalf("png data url = %q", png)
	}
}

func TestVersionDefaultsModel(t *testing.T) {
	t.Parallel()

	if got := (&Client{}).Version(); got != "gpt-4o" {
		t.Fatalf("Version() = %q", got)
	}
	if got := (&Client{Model: "gpt-4.1"}).Version(); got != "gpt-4.1" {
		t.Fatalf("Version() = %q", got)
	}
}
