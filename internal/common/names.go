package common

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the hard cap on a member name, matching the column width
// of the members table.
const MaxNameLength = 50

// NormalizeName prepares a raw member name for lookup or insert: leading and
// trailing whitespace is trimmed and runs of internal whitespace collapse to
// a single space. Returns ErrInvalidInput if the result is empty or longer
// than MaxNameLength.
func NormalizeName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MaxNameLength)
	}
	return name, nil
}
