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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

func TestBuildStandardizedExport(t *testing.T) {
	registry := model.BullFields()
	table := tabular.Table{
		Headers: []string{"Codigo NAAB", "Leite", "Observacao"},
		Rows: []tabular.Row{
			{
				"Codigo NAAB": tabular.TextCell("007HO16444"),
				"Leite":       tabular.NumberCell(520),
				"Observacao":  tabular.TextCell("campeao regional"),
			},
		},
	}
	mapping := []model.MappingRow{
		{Header: "Codigo NAAB", Canonical: "naab_code", Approved: true},
		{Header: "Leite", Canonical: "ptam", Approved: true},
		{Header: "Observacao"}, // unmapped, appended as-is
	}

	workbook, err := BuildStandardizedExport([]string{"NAAB Code", "PTA Milk"}, table, mapping, registry)
	require.NoError(t, err)

	rows, err := workbook.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"NAAB Code", "PTA Milk", "Observacao"}, rows[0])
	assert.Equal(t, "007HO16444", rows[1][0])
	assert.Equal(t, "520", rows[1][1])
	assert.Equal(t, "campeao regional", rows[1][2])
}

func TestBuildStandardizedExportFirstBindingWins(t *testing.T) {
	registry := model.BullFields()
	table := tabular.Table{
		Headers: []string{"Milk A", "Milk B"},
		Rows: []tabular.Row{
			{
				"Milk A": tabular.NumberCell(100),
				"Milk B": tabular.NumberCell(999),
			},
		},
	}
	// Both columns claim ptam; the export must read from the first binding.
	mapping := []model.MappingRow{
		{Header: "Milk A", Canonical: "ptam", Approved: true},
		{Header: "Milk B", Canonical: "ptam", Approved: true},
	}

	workbook, err := BuildStandardizedExport([]string{"PTA Milk"}, table, mapping, registry)
	require.NoError(t, err)

	rows, err := workbook.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, "100", rows[1][0])
}

func TestBuildStandardizedExportSkipsExcludedOriginals(t *testing.T) {
	registry := model.BullFields()
	table := tabular.Table{
		Headers: []string{"Interno"},
		Rows:    []tabular.Row{{"Interno": tabular.TextCell("x")}},
	}
	mapping := []model.MappingRow{
		{Header: "Interno", Excluded: true},
	}

	workbook, err := BuildStandardizedExport([]string{"PTA Milk"}, table, mapping, registry)
	require.NoError(t, err)

	rows, err := workbook.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"PTA Milk"}, rows[0])
}

func TestBuildStandardizedExportUnboundModelColumnStaysEmpty(t *testing.T) {
	registry := model.BullFields()
	table := tabular.Table{
		Headers: []string{"Nome"},
		Rows:    []tabular.Row{{"Nome": tabular.TextCell("Legacy")}},
	}
	mapping := []model.MappingRow{
		{Header: "Nome", Canonical: "name", Approved: true},
	}

	workbook, err := BuildStandardizedExport([]string{"Name", "TPI"}, table, mapping, registry)
	require.NoError(t, err)

	rows, err := workbook.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", rows[1][0])
	assert.Len(t, rows[1], 1, "unbound TPI column has no cell")
}

func TestBuildStandardizedExportNoHeaders(t *testing.T) {
	_, err := BuildStandardizedExport(nil, tabular.Table{}, nil, model.BullFields())
	assert.Error(t, err)
}
