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

// Package tabular parses operator-uploaded spreadsheet files (CSV or XLSX)
// into a header row plus typed cell rows. Cells carry a small closed variant
// (empty, text, number, date) so downstream coercion can dispatch on the
// declared type instead of re-guessing from strings.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CellKind discriminates the closed set of cell value types.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is one typed spreadsheet value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// IsEmpty reports whether the cell carries no usable value.
func (c Cell) IsEmpty() bool {
	if c.Kind == KindEmpty {
		return true
	}
	return c.Kind == KindText && strings.TrimSpace(c.Text) == ""
}

// Text cell constructors used by parsers and tests.
func TextCell(s string) Cell    { return Cell{Kind: KindText, Text: s} }
func NumberCell(f float64) Cell { return Cell{Kind: KindNumber, Number: f} }
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Date: t} }
func EmptyCell() Cell           { return Cell{Kind: KindEmpty} }

// Row maps original header text to the cell under that header.
type Row map[string]Cell

// Table is a parsed file: the original header strings in column order and
// one Row per data line.
type Table struct {
	Headers []string
	Rows    []Row
}

// Parse detects the file format from the filename extension (falling back to
// content sniffing) and parses accordingly.
func Parse(data []byte, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm", ".xls":
		return ParseXLSX(bytes.NewReader(data))
	}
	if looksLikeCSV(data) {
		return ParseCSV(bytes.NewReader(data))
	}
	return ParseXLSX(bytes.NewReader(data))
}

// looksLikeCSV checks that the first two lines carry the same comma-separated
// field count.
func looksLikeCSV(data []byte) bool {
	lines := bytes.SplitN(data, []byte("\n"), 3)
	if len(lines) < 2 {
		return false
	}
	fields := bytes.Count(lines[0], []byte(",")) + 1
	return fields > 1 && bytes.Count(lines[1], []byte(","))+1 == fields
}

// ParseCSV reads a CSV stream whose first record is the header row. Cells are
// typed by inspection: parseable floats become numbers, everything else text.
func ParseCSV(reader io.Reader) (*Table, error) {
	csvReader := csv.NewReader(bufio.NewReader(reader))
	csvReader.FieldsPerRecord = -1 // ragged rows are tolerated; missing cells read as empty

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV headers: %w", err)
	}

	table := &Table{Headers: trimHeaders(headers)}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		table.Rows = append(table.Rows, cellsFromStrings(table.Headers, record))
	}
	return table, nil
}

// ParseXLSX reads the first sheet of an XLSX workbook. Excel stores dates as
// serial day numbers; those survive here as number cells and are resolved to
// dates by the normalizer, which knows which canonical fields are date-typed.
func ParseXLSX(reader io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	table := &Table{Headers: trimHeaders(rows[0])}
	for _, record := range rows[1:] {
		table.Rows = append(table.Rows, cellsFromStrings(table.Headers, record))
	}
	return table, nil
}

func trimHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// cellsFromStrings types each raw string cell. Rows shorter than the header
// row leave trailing headers empty.
func cellsFromStrings(headers []string, record []string) Row {
	row := make(Row, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i >= len(record) {
			row[header] = EmptyCell()
			continue
		}
		row[header] = typeCell(record[i])
	}
	return row
}

func typeCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmptyCell()
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberCell(f)
	}
	return TextCell(trimmed)
}
