package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	phoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// MaxBlessingLength is measured in Unicode code points, not bytes.
const MaxBlessingLength = 80

// ValidatePhone reports whether phone is a mainland China mobile number
// (11 digits, second digit 3-9).
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateBlessingContent rejects blank content and content longer than
// MaxBlessingLength characters.
func ValidateBlessingContent(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return utf8.RuneCountInString(content) <= MaxBlessingLength
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
