// Package collections provides slice utilities shared by the pipeline.
package collections

import (
	"strings"
)

// Dedupe removes repeated values from a slice. Order of first occurrence is
// preserved and the input is not modified.
//
// Example:
//
//	Dedupe([]int{3, 1, 3, 2, 1})
//	// Returns: []int{3, 1, 2}
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}

	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}

	return result
}

// SplitAndDedupe flattens comma separated entries, trims whitespace and drops
// empty and duplicate items. Order is preserved.
//
// Example:
//
//	SplitAndDedupe([]string{"kafka-1:9092, kafka-2:9092", "kafka-1:9092", " "})
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func SplitAndDedupe(values []string) []string {
	var parts []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
	}
	return Dedupe(parts)
}
