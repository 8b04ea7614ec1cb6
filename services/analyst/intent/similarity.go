// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import "strings"

// =========================================================================
// Similarity Scoring
// =========================================================================

// Similarity scores how closely two lowercased texts match, in [0,1].
//
// # Description
//
//	Exact equality short-circuits to 1.0 and substring containment in
//	either direction to 0.95. Otherwise the score blends a character
//	sequence ratio (60%) with a word-overlap ratio (40%). The sequence
//	ratio is 2*LCS/(len(a)+len(b)) over runes, the classic similar-text
//	measure; the overlap ratio divides the shared word count by the
//	larger word set.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.95
	}
	return sequenceRatio(a, b)*0.6 + wordOverlap(a, b)*0.4
}

// sequenceRatio returns 2*M/T where M is the length of the longest
// common subsequence of the two rune sequences and T the total length.
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1.0
	}

	// Single-row LCS table keeps the allocation proportional to the
	// shorter pattern phrase.
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// wordOverlap returns the shared word count divided by the larger of the
// two texts' word-set sizes.
func wordOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}
	denom := len(setA)
	if len(setB) > denom {
		denom = len(setB)
	}
	return float64(shared) / float64(denom)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
