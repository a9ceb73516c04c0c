package analysis

import "errors"

// Validation rejections. Reported in the submit receipt, never stored on
// an item.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image exceeds maximum size")
)

// ErrQuotaExceeded indicates the provider returned a quota/limit error
// (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// RejectReason labels carried in a submit receipt.
const (
	ReasonUnsupportedFormat = "unsupported_format"
	ReasonTooLarge          = "too_large"
)

// ReasonFor maps a validation error to its receipt label.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ReasonUnsupportedFormat
	case errors.Is(err, ErrTooLarge):
		return ReasonTooLarge
	default:
		return "invalid"
	}
}
