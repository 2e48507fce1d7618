package telemetry

import (
	"net/http"
	"regexp"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// Keys are matched case-insensitively anywhere in the field name.
var defaultSensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)api[_-]?key`),
	regexp.MustCompile(`(?i)authorization`),
	regexp.MustCompile(`(?i)bearer`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)token`),
	// POPIA personal identifiers
	regexp.MustCompile(`(?i)id[_-]?number`),
	regexp.MustCompile(`(?i)tax[_-]?ref`),
	regexp.MustCompile(`(?i)registration[_-]?number`),
	regexp.MustCompile(`(?i)account[_-]?number`),
	regexp.MustCompile(`(?i)cvv`),
	regexp.MustCompile(`(?i)(^|[_-])pan($|[_-])`),
}

// Redactor replaces the values of sensitive fields.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the default patterns plus extra.
func NewRedactor(extra ...*regexp.Regexp) *Redactor {
	patterns := make([]*regexp.Regexp, 0, len(defaultSensitivePatterns)+len(extra))
	patterns = append(patterns, defaultSensitivePatterns...)
	patterns = append(patterns, extra...)

	return &Redactor{patterns: patterns}
}

// IsSensitive reports whether values stored under key must be hidden.
func (r *Redactor) IsSensitive(key string) bool {
	for _, pattern := range r.patterns {
		if pattern.MatchString(key) {
			return true
		}
	}

	return false
}

// Redact returns a copy of fields with every sensitive value replaced,
// descending into nested maps and slices. The input is never modified.
func (r *Redactor) Redact(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	redacted := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if r.IsSensitive(key) {
			redacted[key] = constants.RedactedValue

			continue
		}

		redacted[key] = r.redactValue(value)
	}

	return redacted
}

func (r *Redactor) redactValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		return r.Redact(typed)
	case map[string]string:
		return r.redactStrings(typed)
	case http.Header:
		return r.redactHeader(typed)
	case map[string][]string:
		return map[string][]string(r.redactHeader(typed))
	case []interface{}:
		items := make([]interface{}, len(typed))
		for i, item := range typed {
			items[i] = r.redactValue(item)
		}

		return items
	case []map[string]interface{}:
		items := make([]map[string]interface{}, len(typed))
		for i, item := range typed {
			items[i] = r.Redact(item)
		}

		return items
	default:
		return value
	}
}

func (r *Redactor) redactStrings(values map[string]string) map[string]string {
	redacted := make(map[string]string, len(values))
	for key, value := range values {
		if r.IsSensitive(key) {
			value = constants.RedactedValue
		}

		redacted[key] = value
	}

	return redacted
}

func (r *Redactor) redactHeader(header map[string][]string) http.Header {
	redacted := make(http.Header, len(header))
	for key, values := range header {
		if r.IsSensitive(key) {
			redacted[key] = []string{constants.RedactedValue}

			continue
		}

		redacted[key] = append([]string(nil), values...)
	}

	return redacted
}
