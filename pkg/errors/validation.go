package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength bounds the length of a single row or column label.
const MaxLabelLength = 256

// ValidateLabel validates a single tick label.
//
// Labels end up in SVG text, PDF content streams and terminal tables, so
// control characters and oversized strings are rejected:
//   - Maximum length of MaxLabelLength bytes
//   - No control characters (newlines included)
//   - No null bytes
//
// Empty labels are allowed; they draw nothing.
func ValidateLabel(label string) error {
	if len(label) > MaxLabelLength {
		return New(ErrCodeValidation, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "label %q contains control characters", truncate(label, 32))
		}
	}
	return nil
}

// ValidateLabels checks a label slice against the axis length it annotates.
// A nil slice is valid and means "use positional labels".
func ValidateLabels(axis string, labels []string, want int) error {
	if labels == nil {
		return nil
	}
	if len(labels) != want {
		return New(ErrCodeValidation, "%s labels: got %d, want %d", axis, len(labels), want)
	}
	for i, l := range labels {
		if err := ValidateLabel(l); err != nil {
			return Wrap(ErrCodeValidation, err, "%s label %d", axis, i)
		}
	}
	return nil
}

// ValidateOutputBase validates the base name used for rendered artifacts.
// It must be a plain name without path traversal or separators.
func ValidateOutputBase(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "output name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "output name cannot contain path traversal sequences (..)")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidInput, "output name cannot contain path separators")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
