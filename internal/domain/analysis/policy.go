package analysis

import "strings"

// Policy is the upload acceptance policy, supplied once at construction.
type Policy struct {
	AllowedFormats []string
	MaxBytes       int64
}

// Allows reports whether the format tag is in the allowed set. Matching
// is case-insensitive and ignores a leading dot.
func (p Policy) Allows(format string) bool {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	for _, a := range p.AllowedFormats {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == f {
			return true
		}
	}
	return false
}

// Validate checks a raw image against the policy. Deterministic, no side
// effects. Returns nil, ErrUnsupportedFormat or ErrTooLarge.
func (p Policy) Validate(img RawImage) error {
	if !p.Allows(img.Format) {
		return ErrUnsupportedFormat
	}
	if p.MaxBytes > 0 && int64(len(img.Data)) > p.MaxBytes {
		return ErrTooLarge
	}
	return nil
}
