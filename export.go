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
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

const exportSheet = "Standardized"

// BuildStandardizedExport renders an upload back out as an XLSX workbook in
// the shape of the canonical model file: the model's headers first, each fed
// by the single approved source column bound to that field, then the original
// columns that stayed unmapped and unexcluded, appended untouched. A canonical
// key bound to several source columns keeps the first binding.
func BuildStandardizedExport(modelHeaders []string, table tabular.Table, mapping []model.MappingRow, registry *model.Registry) (*excelize.File, error) {
	if len(modelHeaders) == 0 {
		return nil, errors.New("no model headers to export")
	}

	sources := make(map[string]string, len(mapping))
	for _, m := range mapping {
		if !m.Approved || m.Excluded || m.Canonical == "" {
			continue
		}
		if _, bound := sources[m.Canonical]; bound {
			continue
		}
		sources[m.Canonical] = m.Header
	}

	var extras []string
	for _, m := range mapping {
		if m.Canonical == "" && !m.Excluded {
			extras = append(extras, m.Header)
		}
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(modelHeaders)+len(extras))
	columns = append(columns, modelHeaders...)
	columns = append(columns, extras...)
	for col, header := range columns {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cellName, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range table.Rows {
		for col, header := range columns {
			var cell tabular.Cell
			if col < len(modelHeaders) {
				key := resolveCanonical(registry, header)
				source, ok := sources[key]
				if key == "" || !ok {
					continue
				}
				cell = row[source]
			} else {
				cell = row[header]
			}
			if cell.IsEmpty() {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := setExportCell(f, cellName, cell); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func setExportCell(f *excelize.File, cellName string, cell tabular.Cell) error {
	switch cell.Kind {
	case tabular.KindNumber:
		return f.SetCellValue(exportSheet, cellName, cell.Number)
	case tabular.KindDate:
		return f.SetCellValue(exportSheet, cellName, cell.Date)
	default:
		return f.SetCellValue(exportSheet, cellName, cell.Text)
	}
}
