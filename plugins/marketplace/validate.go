package marketplace

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxIdentifierLength bounds every identifier interpolated into a path.
const MaxIdentifierLength = 100

// identifierMetachars are rejected because identifiers are placed directly in
// a URL path segment.
var identifierMetachars = []string{"..", "/", "\\", "%", "?", "#", "&"}

// ValidateIdentifier checks an ID before it becomes a path segment.
func ValidateIdentifier(id, field string) error {
	if id == "" {
		return newValidationError(field, "%s is required and must be a string", field)
	}

	for _, meta := range identifierMetachars {
		if strings.Contains(id, meta) {
			if meta == ".." || meta == "/" || meta == "\\" {
				return newValidationError(field, "%s contains invalid characters (path traversal attempt detected)", field)
			}
			return newValidationError(field, "%s contains invalid characters", field)
		}
	}

	if utf8.RuneCountInString(id) > MaxIdentifierLength {
		return newValidationError(field, "%s exceeds maximum length of %d characters", field, MaxIdentifierLength)
	}

	if containsControl(id, "") {
		return newValidationError(field, "%s contains invalid control characters", field)
	}

	return nil
}

// ValidateHTTPSURL accepts only absolute https URLs with a host.
func ValidateHTTPSURL(raw, field string) error {
	if strings.TrimSpace(raw) == "" {
		return newValidationError(field, "%s is required", field)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return newValidationError(field, "Invalid %s format", strings.ToLower(field))
	}

	if u.Scheme != "https" {
		return newValidationError(field, "%s must use HTTPS protocol for security. HTTP is not allowed.", field)
	}

	return nil
}

// SanitizeText trims text and enforces a maximum length. Line breaks and tabs
// are allowed, every other control byte is rejected. The text is not escaped.
func SanitizeText(text, field string, maxLen int) (string, error) {
	if text == "" {
		return text, nil
	}

	trimmed := strings.TrimSpace(text)

	if n := utf8.RuneCountInString(trimmed); n > maxLen {
		return "", newValidationError(field, "%s exceeds maximum length of %d characters (current: %d)", field, maxLen, n)
	}

	if containsControl(trimmed, "\n\t\r") {
		return "", newValidationError(field, "%s contains invalid control characters", field)
	}

	return trimmed, nil
}

// ValidateNumberRange requires a finite value within [min, max].
func ValidateNumberRange(value float64, field string, min, max float64) error {
	if math.IsNaN(value) {
		return newValidationError(field, "%s must be a valid number", field)
	}
	if math.IsInf(value, 0) {
		return newValidationError(field, "%s must be a finite number", field)
	}
	if value < min {
		return newValidationError(field, "%s must be at least %s (current: %s)", field, formatNumber(min), formatNumber(value))
	}
	if value > max {
		return newValidationError(field, "%s must not exceed %s (current: %s)", field, formatNumber(max), formatNumber(value))
	}
	return nil
}

// containsControl reports whether s has a byte in 0x00-0x1F or 0x7F that is
// not listed in allowed.
func containsControl(s, allowed string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b > 0x1F && b != 0x7F {
			continue
		}
		if strings.IndexByte(allowed, b) >= 0 {
			continue
		}
		return true
	}
	return false
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%v", v)
}
