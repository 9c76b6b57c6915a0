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
	"strings"

	"github.com/pkg/errors"

	"github.com/herdsync/herdsync/internal/similarity"
	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

// ParseLegend reads an uploaded legend file into user alias entries. The
// alias and canonical columns are located by normalized substring match, so
// "Alias", "Column Alias" and "apelido da coluna (alias)" all qualify. The
// canonical cell may hold a registry key, a label or a known alias; rows
// whose canonical value resolves to nothing are skipped.
func ParseLegend(table tabular.Table, registry *model.Registry) ([]model.AliasEntry, error) {
	aliasHeader, canonicalHeader := "", ""
	for _, header := range table.Headers {
		normalized := similarity.NormalizeKey(header)
		if aliasHeader == "" && strings.Contains(normalized, "alias") {
			aliasHeader = header
			continue
		}
		if canonicalHeader == "" && strings.Contains(normalized, "canonical") {
			canonicalHeader = header
		}
	}
	if aliasHeader == "" || canonicalHeader == "" {
		return nil, errors.New("legend file needs an alias column and a canonical column")
	}

	var entries []model.AliasEntry
	for _, row := range table.Rows {
		alias := cellText(row[aliasHeader])
		canonical := resolveCanonical(registry, cellText(row[canonicalHeader]))
		if alias == "" || canonical == "" {
			continue
		}
		entries = append(entries, model.AliasEntry{Alias: alias, Canonical: canonical})
	}
	return entries, nil
}

// ParseModelHeaders reads a canonical model file: its header row is the
// ordered list of export column labels.
func ParseModelHeaders(table tabular.Table) ([]string, error) {
	if len(table.Headers) == 0 {
		return nil, errors.New("model file has no header row")
	}
	headers := make([]string, 0, len(table.Headers))
	for _, h := range table.Headers {
		if strings.TrimSpace(h) != "" {
			headers = append(headers, strings.TrimSpace(h))
		}
	}
	if len(headers) == 0 {
		return nil, errors.New("model file header row is empty")
	}
	return headers, nil
}

// resolveCanonical maps a legend cell onto a registry key: exact key first,
// then label or alias equality after normalization.
func resolveCanonical(registry *model.Registry, value string) string {
	if value == "" {
		return ""
	}
	if _, ok := registry.Lookup(value); ok {
		return value
	}
	normalized := similarity.NormalizeKey(value)
	for _, field := range registry.Fields() {
		if similarity.NormalizeKey(field.Label) == normalized {
			return field.Key
		}
		for _, alias := range field.Aliases {
			if similarity.NormalizeKey(alias) == normalized {
				return field.Key
			}
		}
	}
	return ""
}

func cellText(cell tabular.Cell) string {
	s, _ := coerceText(cell)
	return s
}
