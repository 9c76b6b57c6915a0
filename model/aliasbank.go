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

import "github.com/herdsync/herdsync/internal/similarity"

// AliasProvenance records where an alias bank entry came from. User entries
// are uploaded per import session and shadow default entries for the same
// normalized alias.
type AliasProvenance string

const (
	AliasDefault AliasProvenance = "default"
	AliasUser    AliasProvenance = "user"
)

// AliasEntry binds one normalized alias string to a canonical key.
type AliasEntry struct {
	Alias      string          `json:"alias"`
	Canonical  string          `json:"canonical"`
	Provenance AliasProvenance `json:"provenance"`
}

// AliasBank is the combined default + user alias table consulted by the
// mapper. Defaults are seeded from a registry's field aliases; user entries
// live only for the duration of one import session.
type AliasBank struct {
	defaults map[string]AliasEntry
	user     map[string]AliasEntry
}

// NewAliasBank seeds a bank with a registry's labels and aliases.
func NewAliasBank(registry *Registry) *AliasBank {
	b := &AliasBank{
		defaults: make(map[string]AliasEntry),
		user:     make(map[string]AliasEntry),
	}
	for _, field := range registry.Fields() {
		b.addDefault(field.Label, field.Key)
		for _, alias := range field.Aliases {
			b.addDefault(alias, field.Key)
		}
	}
	return b
}

func (b *AliasBank) addDefault(alias, canonical string) {
	key := similarity.NormalizeKey(alias)
	if key == "" {
		return
	}
	// First seed wins, so field declaration order resolves overlapping aliases.
	if _, exists := b.defaults[key]; exists {
		return
	}
	b.defaults[key] = AliasEntry{Alias: key, Canonical: canonical, Provenance: AliasDefault}
}

// AddUserEntries loads operator-uploaded legend entries. They shadow default
// entries for identical normalized aliases.
func (b *AliasBank) AddUserEntries(entries []AliasEntry) {
	for _, e := range entries {
		key := similarity.NormalizeKey(e.Alias)
		if key == "" || e.Canonical == "" {
			continue
		}
		b.user[key] = AliasEntry{Alias: key, Canonical: e.Canonical, Provenance: AliasUser}
	}
}

// Lookup resolves a normalized alias, preferring user entries.
func (b *AliasBank) Lookup(normalizedAlias string) (AliasEntry, bool) {
	if e, ok := b.user[normalizedAlias]; ok {
		return e, true
	}
	e, ok := b.defaults[normalizedAlias]
	return e, ok
}
