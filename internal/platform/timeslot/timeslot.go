// Package timeslot holds the clock arithmetic behind appointment conflict
// detection. Times are "HH:MM" strings on a calendar day; an interval is
// half-open, so a visit ending at 10:30 does not collide with one starting
// at 10:30.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts an "HH:MM" string to minutes since midnight.
// Both fields are required; hours must be 0-23 and minutes 0-59.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return h*60 + m, nil
}

// ValidClock reports whether s is a well-formed "HH:MM" clock string.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// Overlap reports whether the half-open intervals [startA, startA+durA)
// and [startB, startB+durB) share at least one instant. Starts are
// "HH:MM" strings, durations are minutes. Malformed starts must be
// rejected by the caller's validation; here they report no overlap.
func Overlap(startA string, durA int, startB string, durB int) bool {
	a, err := ParseClock(startA)
	if err != nil {
		return false
	}
	b, err := ParseClock(startB)
	if err != nil {
		return false
	}
	return a < b+durB && b < a+durA
}
