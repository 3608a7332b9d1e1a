package errors

import (
	"strings"
	"unicode"
)

// ValidatePodName validates a pod name for safety and correctness.
// It rejects names that could escape a Specs checkout when used as a path
// component.
//
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidatePodName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "pod name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "pod name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "pod name contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "pod name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDir validates a directory path supplied on the command line or in
// a config file. It only checks the shape of the path; existence is checked
// by the caller.
func ValidateDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	return nil
}
