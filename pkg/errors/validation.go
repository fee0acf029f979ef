package errors

import (
	"strings"
	"unicode"
)

// ValidateBootFileName validates a configured boot file name.
//
// The name is compared against full entry names inside an archive, so a
// forward-slash path such as "CHDK/DISKBOOT.BIN" is allowed. Rejected:
//   - Empty names
//   - Control characters and null bytes
//   - Parent directory references and backslashes
//   - Names longer than 256 characters
func ValidateBootFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "boot file name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "boot file name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "boot file name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "\\", "//"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "boot file name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidInput, "boot file name must be relative to the archive root")
	}

	return nil
}

// ValidateExtension validates a nested-archive extension such as ".zip".
func ValidateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return New(ErrCodeInvalidInput, "extension must start with a dot: %q", ext)
	}
	if strings.ContainsAny(ext[1:], "./\\*? ") {
		return New(ErrCodeInvalidInput, "extension contains invalid characters: %q", ext)
	}
	return nil
}
