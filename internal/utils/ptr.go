package utils

import (
	"strconv"
	"strings"
)

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NonZeroOrNil drops zero values, which TMDB uses for "unknown" runtimes and counts
func NonZeroOrNil[T comparable](v *T) *T {
	var zero T
	if v == nil || *v == zero {
		return nil
	}
	return Ptr(*v)
}

// IntOrNil parses a form value, returning nil for blanks and garbage
func IntOrNil(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
