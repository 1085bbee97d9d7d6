package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds group names and competitor IDs.
const maxNameLength = 256

// ValidateGroupName validates a comparison group name (e.g. a weight class).
// Group names end up in cache keys, store keys, and file names, so the rules
// are conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGroup, "group name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidGroup, "group name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGroup, "group name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidGroup, "group name contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateCompetitorID validates a competitor identifier.
// IDs must be non-empty, printable, and free of surrounding whitespace.
func ValidateCompetitorID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "competitor id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "competitor id too long (max %d characters)", maxNameLength)
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "competitor id %q has surrounding whitespace", id)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "competitor id contains invalid control characters")
		}
	}
	return nil
}
