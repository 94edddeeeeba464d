// Package watchlist normalizes hardware identifiers and matches sightings
// against the operator's watchlist.
package watchlist

import (
	"errors"
	"fmt"
	"strings"
)

const (
	PrefixLen = 8  // "aa:bb:cc"
	FullLen   = 17 // "aa:bb:cc:dd:ee:ff"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Kind tells how a pattern is compared with a sighted identifier.
type Kind int

const (
	Prefix Kind = iota
	Exact
)

func (k Kind) String() string {
	if k == Exact {
		return "MAC"
	}
	return "OUI"
}

// Normalize lower-cases hex digits and turns '-' and ' ' separators into
// ':'. The result must be a 3-byte prefix or a 6-byte identifier.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", ":", " ", ":").Replace(s)

	if len(s) != PrefixLen && len(s) != FullLen {
		return "", fmt.Errorf("%w: %q has length %d", ErrInvalidIdentifier, raw, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i%3 == 2 {
			if c != ':' {
				return "", fmt.Errorf("%w: %q expected ':' at %d", ErrInvalidIdentifier, raw, i)
			}
			continue
		}
		if !isHex(c) {
			return "", fmt.Errorf("%w: %q bad hex digit at %d", ErrInvalidIdentifier, raw, i)
		}
	}
	return s, nil
}

// Classify derives the kind from the pattern length alone.
func Classify(pattern string) Kind {
	if len(pattern) == FullLen {
		return Exact
	}
	return Prefix
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
