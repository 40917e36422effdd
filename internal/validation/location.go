package validation

import (
	"errors"
	"strings"
)

// ErrLocationEmpty is returned when the query is empty or whitespace-only after trim.
var ErrLocationEmpty = errors.New("location is required")

// ErrLocationTooLong is returned when the query length exceeds the maximum.
var ErrLocationTooLong = errors.New("location too long")

// ValidateLocation trims the input and enforces non-empty plus an upper
// length bound (maxLen in runes, 0 = unbounded). The query is otherwise
// passed through untouched: the upstream API resolves city names, postal
// codes, IP addresses, and "lat,lon" pairs itself.
func ValidateLocation(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrLocationEmpty
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return "", ErrLocationTooLong
	}
	return s, nil
}
