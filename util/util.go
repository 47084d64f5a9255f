// Package util contains misc internal utilities.
package util

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Clamp limits a value to [low, high]
func Clamp(input, low, high float64) float64 {
	return math.Min(math.Max(input, low), high)
}

// SecsToDuration converts a floating point number of seconds to a time.Duration
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}

// AllElementsNumbers returns true if every rune in s is a digit or a decimal point
func AllElementsNumbers(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// UniqueString returns the unique strings in a slice, in the order they first appear
func UniqueString(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	out := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// UpperAll returns a copy of input with every element upper cased and trimmed
func UpperAll(input []string) []string {
	out := make([]string, len(input))
	for i, s := range input {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

// MergeErrors combines the non-nil errors in errs into one.  It returns nil
// if there are none.
func MergeErrors(errs []error) error {
	return errors.Join(errs...)
}
