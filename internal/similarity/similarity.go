/*
Copyright 2024 Herdsync Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package similarity provides the string normalization and approximate
// matching primitives used by the schema mapper. Headers, aliases and
// canonical labels must all pass through NormalizeKey before comparison so
// that "PTA Leite", "pta_leite" and "PTA  LEITE " collapse to the same key.
package similarity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey canonicalizes a raw header or alias string:
// NFD decomposition, combining-mark removal, lowercasing, and collapsing
// every run of non-alphanumeric characters into a single underscore.
// The function is idempotent: NormalizeKey(NormalizeKey(s)) == NormalizeKey(s).
func NormalizeKey(s string) string {
	s = stripDiacritics(strings.ToLower(strings.TrimSpace(s)))
	s = nonAlnumRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// stripDiacritics removes combining marks after NFD decomposition, so
// "proteína" compares equal to "proteina".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// winklerPrefixLimit and winklerScale are the standard Winkler parameters:
// the common-prefix boost considers at most 4 leading characters, each
// contributing 0.1 of the remaining distance.
const (
	winklerPrefixLimit = 4
	winklerScale       = 0.1
)

// JaroWinkler computes the Jaro-Winkler similarity between two strings,
// returning a score in [0, 1]. Two empty strings are identical (1.0); if
// exactly one is empty, or no characters match within the Jaro window, the
// score is 0. The comparison is byte-wise over the (already normalized)
// inputs, matching window ⌊max(len1,len2)/2⌋−1.
func JaroWinkler(s1, s2 string) float64 {
	jaro := jaroSimilarity(s1, s2)
	if jaro == 0 {
		return 0
	}

	prefix := 0
	for i := 0; i < len(s1) && i < len(s2) && i < winklerPrefixLimit; i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*winklerScale*(1-jaro)
}

func jaroSimilarity(s1, s2 string) float64 {
	len1, len2 := len(s1), len(s2)
	if len1 == 0 && len2 == 0 {
		return 1
	}
	if len1 == 0 || len2 == 0 {
		return 0
	}

	window := maxInt(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)
	matches := 0

	for i := 0; i < len1; i++ {
		lo := maxInt(0, i-window)
		hi := minInt(len2-1, i+window)
		for j := lo; j <= hi; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	// Count transpositions: matched characters out of relative order.
	transpositions := 0
	j := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[j] {
			j++
		}
		if s1[i] != s2[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len1) + m/float64(len2) + (m-t)/m) / 3
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
