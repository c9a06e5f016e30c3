// Package sequence derives the next human-readable identifier in a
// prefix + zero-padded-number scheme such as P001 or D006.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Next returns the identifier following currentMax. currentMax is the
// highest existing identifier for the prefix, or empty when none exist,
// in which case floor is returned unchanged. Identifiers that do not
// match the scheme also fall back to floor.
//
// Callers must serialize allocation (the services hold a per-entity
// mutex around read-max-then-insert); Next itself is a pure function.
func Next(prefix string, width int, floor, currentMax string) string {
	if !strings.HasPrefix(currentMax, prefix) {
		return floor
	}
	n, err := strconv.Atoi(currentMax[len(prefix):])
	if err != nil {
		return floor
	}
	return fmt.Sprintf("%s%0*d", prefix, width, n+1)
}
