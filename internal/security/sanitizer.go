// Package security cleans user supplied text and file names.
package security

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and control bytes and caps the length in runes
func SanitizeText(input string, maxLen int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(htmlPolicy.Sanitize(input))
	if maxLen > 0 && utf8.RuneCountInString(input) > maxLen {
		input = string([]rune(input)[:maxLen])
	}
	return input
}

// ValidateFileType checks if file extension is allowed
func ValidateFileType(filename string, allowedTypes []string) bool {
	filename = strings.ToLower(filename)
	for _, ext := range allowedTypes {
		if strings.HasSuffix(filename, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
