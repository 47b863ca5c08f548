package errors

import (
	"unicode"
	"unicode/utf8"
)

// Input size limits for user-supplied text.
const (
	// MaxPromptLength bounds a text-generation prompt.
	MaxPromptLength = 4000

	// MaxTextLength bounds the body text of a session.
	MaxTextLength = 50000
)

// ValidateText validates user-supplied text such as a prompt or body text.
//
// The validation rules are intentionally permissive about content and strict
// about encoding:
//   - Must be valid UTF-8
//   - No null bytes or control characters other than newline, carriage return and tab
//   - At most maxLen runes (maxLen <= 0 disables the check)
//
// Empty text is allowed; whether an empty prompt is meaningful is up to the
// remote generator.
func ValidateText(field, s string, maxLen int) error {
	if !utf8.ValidString(s) {
		return New(ErrCodeInvalidInput, "%s is not valid UTF-8", field)
	}

	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxLen)
	}

	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}

	return nil
}
