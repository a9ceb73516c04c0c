package analysis

import (
	"errors"
	"testing"
)

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	p := Policy{AllowedFormats: []string{"jpg", "jpeg", "png"}, MaxBytes: 100}

	cases := []struct {
		name string
		img  RawImage
		want error
	}{
		{"jpg ok", RawImage{Name: "a.jpg", Format: "jpg", Data: make([]byte, 50)}, nil},
		{"uppercase ok", RawImage{Name: "a.JPG", Format: "JPG", Data: make([]byte, 50)}, nil},
		{"dotted tag ok", RawImage{Name: "a.png", Format: ".png", Data: make([]byte, 50)}, nil},
		{"exactly at limit", RawImage{Name: "a.png", Format: "png", Data: make([]byte, 100)}, nil},
		{"empty payload ok", RawImage{Name: "a.png", Format: "png"}, nil},
		{"gif rejected", RawImage{Name: "a.gif", Format: "gif", Data: make([]byte, 10)}, ErrUnsupportedFormat},
		{"no format rejected", RawImage{Name: "a", Format: "", Data: make([]byte, 10)}, ErrUnsupportedFormat},
		{"oversized rejected", RawImage{Name: "a.jpg", Format: "jpg", Data: make([]byte, 101)}, ErrTooLarge},
	}
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := p.Validate(tt.img); !errors.Is(err, tt.want) {
				t.Fatalf("Validate(%s) = %v, want %v", tt.img.Name, err, tt.want)
			}
		})
	}
}

func TestPolicyValidateDeterministic(t *testing.T) {
	t.Parallel()

	p := Policy{AllowedFormats: []string{"jpg"}, MaxBytes: 10}
	img := RawImage{Name: "x.jpg", Format: "jpg", Data: make([]byte, 5)}
	for i := 0; i < 10; i++ {
		if err := p.Validate(img); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestPolicyNoLimitWhenMaxBytesZero(t *testing.T) {
	t.Parallel()

	p := Policy{AllowedFormats: []string{"jpg"}}
	img := RawImage{Name: "x.jpg", Format: "jpg", Data: make([]byte, 1<<20)}
	if err := p.Validate(img); err != nil {
		t.Fatalf("Validate with zero MaxBytes: %v", err)
	}
}

func TestReasonFor(t *testing.T) {
	t.Parallel()

	if got := ReasonFor(ErrUnsupportedFormat); got != ReasonUnsupportedFormat {
		t.Fatalf("ReasonFor(ErrUnsupportedFormat) = %q", got)
	}
	if got := ReasonFor(ErrTooLarge); got != ReasonTooLarge {
		t.Fatalf("ReasonFor(ErrTooLarge) = %q", got)
	}
	if got := ReasonFor(errors.New("other")); got != "invalid" {
		t.Fatalf("ReasonFor(other) = %q", got)
	}
}
