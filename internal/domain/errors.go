package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidMatchData marks a snapshot that cannot be aggregated, e.g.
	// fewer than two participants.
	ErrInvalidMatchData = errors.New("invalid match data")

	// ErrMalformedTime marks an elapsed-time string that does not parse as
	// HH:MM:SS. It fails only the affected server's classification.
	ErrMalformedTime = errors.New("malformed elapsed time")
)

// ParseElapsed converts an HH:MM:SS string to whole seconds.
func ParseElapsed(elapsed string) (int, error) {
	parts := strings.Split(elapsed, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, elapsed)
	}

	var secs int
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, elapsed)
		}
		secs = secs*60 + n
	}
	return secs, nil
}
