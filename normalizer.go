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
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

// kgPerPound converts mass-based PTA values uploaded in kilograms into the
// pounds the store expects: lb = kg / kgPerPound.
const kgPerPound = 0.453592

// excelEpoch is day zero of Excel's serial date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	kgHeaderRe       = regexp.MustCompile(`(?i)\(\s*kg\s*\)`)
	lbHeaderRe       = regexp.MustCompile(`(?i)\(\s*lbs?\s*\)`)
	numericJunkRe    = regexp.MustCompile(`[\s%$]`)
	thousandsGroupRe = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// dateLayouts are tried in order when a date field arrives as text.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
}

// NormalizeOptions carries the tenant key and optional identifiers that are
// always stamped onto the output record, independent of row content.
type NormalizeOptions struct {
	FarmID    string
	ProfileID string
	BatchID   string
}

// NormalizeRow converts one raw spreadsheet row into a canonical record using
// the approved mapping rows. Empty cells are skipped rather than written as
// nulls, so "absent" stays distinguishable from "explicit zero". Unparseable
// cells drop that field only, never the row. A row that yields no canonical
// value beyond the tenant key is discarded (nil).
func NormalizeRow(row tabular.Row, mapping []model.MappingRow, registry *model.Registry, opts NormalizeOptions) model.Record {
	record := model.Record{}
	populated := 0

	for _, m := range mapping {
		if m.Canonical == "" || m.Excluded || !m.Approved {
			continue
		}
		field, ok := registry.Lookup(m.Canonical)
		if !ok {
			continue
		}
		cell, ok := row[m.Header]
		if !ok || cell.IsEmpty() {
			continue
		}

		switch field.Kind {
		case model.FieldDate:
			if iso, ok := coerceDate(cell); ok {
				record[field.Key] = iso
				populated++
			}
		case model.FieldText:
			if s, ok := coerceText(cell); ok {
				record[field.Key] = s
				populated++
			}
		case model.FieldNumeric:
			if f, ok := coerceNumber(cell); ok {
				record[field.Key] = convertUnit(f, field, m.Header)
				populated++
			}
		}
	}

	if populated == 0 {
		return nil
	}

	if opts.FarmID != "" {
		record["farm_id"] = opts.FarmID
	}
	if opts.ProfileID != "" {
		record["profile_id"] = opts.ProfileID
	}
	if opts.BatchID != "" {
		record["import_batch_id"] = opts.BatchID
	}
	return record
}

// coerceDate accepts a typed date cell, an Excel serial day number, or a
// parseable date string, and emits ISO-8601.
func coerceDate(cell tabular.Cell) (string, bool) {
	switch cell.Kind {
	case tabular.KindDate:
		return cell.Date.UTC().Format(time.RFC3339), true
	case tabular.KindNumber:
		serial := cell.Number
		if serial <= 0 || serial > 200000 {
			return "", false
		}
		// Whole days go through AddDate; a single Duration would overflow
		// int64 nanoseconds for serials past the year 2192.
		days := math.Floor(serial)
		frac := serial - days
		t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * 24 * float64(time.Hour)))
		return t.UTC().Format(time.RFC3339), true
	case tabular.KindText:
		s := strings.TrimSpace(cell.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(time.RFC3339), true
			}
		}
	}
	return "", false
}

func coerceText(cell tabular.Cell) (string, bool) {
	switch cell.Kind {
	case tabular.KindText:
		s := strings.TrimSpace(cell.Text)
		return s, s != ""
	case tabular.KindNumber:
		// Codes and registration numbers sometimes parse as numbers upstream.
		return strconv.FormatFloat(cell.Number, 'f', -1, 64), true
	case tabular.KindDate:
		return cell.Date.UTC().Format(time.RFC3339), true
	}
	return "", false
}

// coerceNumber strips whitespace, percent and currency markers plus
// thousands separators before parsing. Non-finite results are absent.
func coerceNumber(cell tabular.Cell) (float64, bool) {
	switch cell.Kind {
	case tabular.KindNumber:
		return cell.Number, finite(cell.Number)
	case tabular.KindText:
		s := strings.TrimSpace(cell.Text)
		if thousandsGroupRe.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		}
		s = numericJunkRe.ReplaceAllString(s, "")
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			// Comma-decimal locales: "3,2%" means 3.2.
			s = strings.Replace(s, ",", ".", 1)
		}
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, finite(f)
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// convertUnit resolves the uploaded unit for mass-based PTAs from the header
// text: "(kg)" means kilograms (converted to pounds), "(lb)"/"(lbs)" and the
// default mean pounds already, and a percent marker means the value passes
// through untouched.
func convertUnit(value float64, field model.CanonicalField, header string) float64 {
	if field.Unit != model.UnitMass {
		return value
	}
	if strings.Contains(header, "%") {
		return value
	}
	if kgHeaderRe.MatchString(header) && !lbHeaderRe.MatchString(header) {
		return value / kgPerPound
	}
	return value
}
