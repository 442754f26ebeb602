package service

import (
	"strings"

	"anoa.com/kirimpesan/pkg/apperror"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
)

// NormalizeUsername lowercases the input and strips everything outside
// [a-z0-9_]. "John_Doe!" becomes "john_doe". Returns ErrInvalidInput when
// fewer than 3 characters survive normalization.
func NormalizeUsername(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if len(normalized) < usernameMinLen {
		return "", apperror.ErrInvalidInput
	}
	if len(normalized) > usernameMaxLen {
		normalized = normalized[:usernameMaxLen]
	}

	return normalized, nil
}
