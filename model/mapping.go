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
package model

// MappingMethod records which mapper strategy produced a suggestion.
type MappingMethod string

const (
	MethodAliasBank MappingMethod = "alias_bank"
	MethodRegex     MappingMethod = "regex"
	MethodFuzzy     MappingMethod = "fuzzy"
	MethodNone      MappingMethod = "none"
)

// MappingRow is the per-header state carried through interactive mapping
// review. Canonical is empty while no field is suggested or selected.
type MappingRow struct {
	Header           string          `json:"header"`
	NormalizedHeader string          `json:"normalized_header"`
	Canonical        string          `json:"canonical,omitempty"`
	Method           MappingMethod   `json:"method"`
	Confidence       float64         `json:"confidence"`
	AliasProvenance  AliasProvenance `json:"alias_provenance,omitempty"`
	Approved         bool            `json:"approved"`
	ManualOverride   bool            `json:"manual_override"`
	Excluded         bool            `json:"excluded"`
}

// CanApprove reports whether the row satisfies the approval invariant: a
// selected canonical key and not excluded.
func (m MappingRow) CanApprove() bool {
	return m.Canonical != "" && !m.Excluded
}
