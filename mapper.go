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

package herdsync

import (
	"regexp"

	"github.com/herdsync/herdsync/internal/similarity"
	"github.com/herdsync/herdsync/model"
)

// Mapper strategy constants. Alias-bank and regex hits are exact enough to
// report full/near-full confidence; the fuzzy floor is deliberately permissive
// because every suggestion still passes human review before use.
const (
	regexConfidence = 0.97
	fuzzyFloor      = 0.25
)

// regexHeuristic tests a header against a fixed pattern and proposes a
// canonical key. MatchOriginal heuristics run against the raw header text
// (needed for symbols the normalizer strips, like "%" and "$").
type regexHeuristic struct {
	Pattern       *regexp.Regexp
	Canonical     string
	MatchOriginal bool
}

// defaultHeuristics is the ordered heuristic list. MatchOriginal entries run
// after the user legend entries but before the default bank, the rest after
// the bank misses. Order matters: the percent-flavored patterns must run
// before the plain mass PTA patterns so "PTA FAT %" lands on fat_pct, not
// ptaf.
var defaultHeuristics = []regexHeuristic{
	{Pattern: regexp.MustCompile(`(?i)prot.*%|%.*prot`), Canonical: "protein_pct", MatchOriginal: true},
	{Pattern: regexp.MustCompile(`(?i)(fat|gord).*%|%.*(fat|gord)`), Canonical: "fat_pct", MatchOriginal: true},
	{Pattern: regexp.MustCompile(`^naab`), Canonical: "naab_code"},
	{Pattern: regexp.MustCompile(`^pta_?m(ilk)?|_milk$|leite`), Canonical: "ptam"},
	{Pattern: regexp.MustCompile(`^pta_?f(at)?$|gordura`), Canonical: "ptaf"},
	{Pattern: regexp.MustCompile(`^pta_?p(rot(ein)?)?$|proteina`), Canonical: "ptap"},
	{Pattern: regexp.MustCompile(`somatic|^scs$|^ccs$`), Canonical: "scs"},
	{Pattern: regexp.MustCompile(`^g?tpi$`), Canonical: "tpi"},
	{Pattern: regexp.MustCompile(`net_merit|^nm`), Canonical: "nm"},
	{Pattern: regexp.MustCompile(`birth|nascimento|^dob$`), Canonical: "birth_date"},
	{Pattern: regexp.MustCompile(`^reg(istr)?`), Canonical: "registration"},
	{Pattern: regexp.MustCompile(`beta.*casein|caseina.*beta|a2a2`), Canonical: "beta_casein"},
	{Pattern: regexp.MustCompile(`kappa.*casein|caseina.*kappa`), Canonical: "kappa_casein"},
	{Pattern: regexp.MustCompile(`ear_tag|brinco`), Canonical: "identifier"},
	{Pattern: regexp.MustCompile(`^sire|^pai$`), Canonical: "sire_naab"},
	{Pattern: regexp.MustCompile(`^mgs|avo_materno`), Canonical: "mgs_naab"},
}

// Mapper suggests header-to-canonical-field mappings using, in priority
// order: user legend entries, symbol-sensitive regex heuristics, the default
// alias bank, the remaining heuristics, then Jaro-Winkler similarity.
// It is a pure function of its inputs: identical headers and bank state
// always yield identical suggestions.
type Mapper struct {
	registry   *model.Registry
	bank       *model.AliasBank
	heuristics []regexHeuristic
}

// NewMapper builds a mapper over an explicit registry and alias bank. A nil
// bank gets the registry's default bank.
func NewMapper(registry *model.Registry, bank *model.AliasBank) *Mapper {
	if bank == nil {
		bank = model.NewAliasBank(registry)
	}
	return &Mapper{registry: registry, bank: bank, heuristics: defaultHeuristics}
}

// SuggestMapping produces one MappingRow per raw header, in input order.
// Each canonical key is claimed at most once per call; earlier headers win
// contested claims. Headers that match nothing come back with an empty
// canonical key and method "none" — never an error.
func (m *Mapper) SuggestMapping(rawHeaders []string) []model.MappingRow {
	used := make(map[string]bool)
	rows := make([]model.MappingRow, 0, len(rawHeaders))
	for _, header := range rawHeaders {
		row := m.suggestHeader(header, used)
		if row.Canonical != "" {
			used[row.Canonical] = true
		}
		rows = append(rows, row)
	}
	return rows
}

// Refresh re-derives suggestions for an existing review sheet, e.g. after a
// legend upload changed the alias bank. Manually overridden rows keep their
// operator-selected canonical key (and claim it up front) but still receive
// refreshed suggestion metadata for display. Approval survives only where the
// selected key did not change.
func (m *Mapper) Refresh(rows []model.MappingRow) []model.MappingRow {
	used := make(map[string]bool)
	for _, row := range rows {
		if row.ManualOverride && row.Canonical != "" && !row.Excluded {
			used[row.Canonical] = true
		}
	}

	out := make([]model.MappingRow, 0, len(rows))
	for _, prev := range rows {
		fresh := m.suggestHeader(prev.Header, used)
		if prev.ManualOverride && prev.Canonical != "" {
			fresh.Canonical = prev.Canonical
			fresh.ManualOverride = true
			fresh.Approved = prev.Approved
		} else {
			if fresh.Canonical != "" {
				used[fresh.Canonical] = true
			}
			fresh.Approved = prev.Approved && prev.Canonical == fresh.Canonical
		}
		fresh.Excluded = prev.Excluded
		out = append(out, fresh)
	}
	return out
}

func (m *Mapper) suggestHeader(header string, used map[string]bool) model.MappingRow {
	normalized := similarity.NormalizeKey(header)
	row := model.MappingRow{
		Header:           header,
		NormalizedHeader: normalized,
		Method:           model.MethodNone,
	}
	if normalized == "" {
		return row
	}

	// User legend entries outrank everything. The original-text heuristics
	// still run before the default bank: they key on symbols the normalizer
	// strips, so "PTA Protein %" must not collapse onto the "pta_protein"
	// alias of the mass field.
	if m.applyBank(&row, normalized, used, true) {
		return row
	}

	if m.applyHeuristics(&row, header, normalized, used, true) {
		return row
	}

	if m.applyBank(&row, normalized, used, false) {
		return row
	}

	if m.applyHeuristics(&row, header, normalized, used, false) {
		return row
	}

	if key, score := m.bestFuzzyMatch(normalized, used); key != "" {
		row.Canonical = key
		row.Method = model.MethodFuzzy
		row.Confidence = score
	}
	return row
}

// applyBank resolves the header through the alias bank, optionally restricted
// to user legend entries, and fills the row on an unclaimed hit.
func (m *Mapper) applyBank(row *model.MappingRow, normalized string, used map[string]bool, userOnly bool) bool {
	entry, ok := m.bank.Lookup(normalized)
	if !ok || (userOnly && entry.Provenance != model.AliasUser) {
		return false
	}
	if used[entry.Canonical] {
		return false
	}
	if _, known := m.registry.Lookup(entry.Canonical); !known {
		return false
	}
	row.Canonical = entry.Canonical
	row.Method = model.MethodAliasBank
	row.Confidence = 1.0
	row.AliasProvenance = entry.Provenance
	return true
}

// applyHeuristics runs the heuristic list in order, restricted to one match
// mode, and fills the row on the first unclaimed hit.
func (m *Mapper) applyHeuristics(row *model.MappingRow, header, normalized string, used map[string]bool, matchOriginal bool) bool {
	for _, h := range m.heuristics {
		if h.MatchOriginal != matchOriginal {
			continue
		}
		if used[h.Canonical] {
			continue
		}
		if _, known := m.registry.Lookup(h.Canonical); !known {
			continue
		}
		subject := normalized
		if h.MatchOriginal {
			subject = header
		}
		if !h.Pattern.MatchString(subject) {
			continue
		}
		row.Canonical = h.Canonical
		row.Method = model.MethodRegex
		row.Confidence = regexConfidence
		return true
	}
	return false
}

// bestFuzzyMatch scores the normalized header against every unclaimed field's
// label and alias set, keeping the maximum. Scores below the floor leave the
// header unmapped.
func (m *Mapper) bestFuzzyMatch(normalized string, used map[string]bool) (string, float64) {
	bestKey := ""
	bestScore := 0.0
	for _, field := range m.registry.Fields() {
		if used[field.Key] {
			continue
		}
		score := similarity.JaroWinkler(normalized, similarity.NormalizeKey(field.Label))
		for _, alias := range field.Aliases {
			if s := similarity.JaroWinkler(normalized, similarity.NormalizeKey(alias)); s > score {
				score = s
			}
		}
		if score > bestScore {
			bestKey = field.Key
			bestScore = score
		}
	}
	if bestScore < fuzzyFloor {
		return "", 0
	}
	return bestKey, bestScore
}
