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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/herdsync/herdsync/internal/tabular"
	"github.com/herdsync/herdsync/model"
)

func approvedMapping(pairs map[string]string) []model.MappingRow {
	rows := make([]model.MappingRow, 0, len(pairs))
	for header, canonical := range pairs {
		rows = append(rows, model.MappingRow{Header: header, Canonical: canonical, Approved: true})
	}
	return rows
}

func TestNormalizeRowKilogramsToPounds(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"PTA Milk (kg)": "ptam"})
	row := tabular.Row{"PTA Milk (kg)": tabular.NumberCell(5)}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.NotNil(t, record)
	assert.InDelta(t, 11.0231, record["ptam"].(float64), 0.0001)
}

func TestNormalizeRowPoundsPassThrough(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"PTA Milk (lbs)": "ptam"})
	row := tabular.Row{"PTA Milk (lbs)": tabular.NumberCell(520)}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, 520.0, record["ptam"])
}

func TestNormalizeRowMassRoundTrip(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"PTA Milk (kg)": "ptam"})

	// A pound value expressed in kilograms must come back to the same pounds.
	pounds := 520.0
	row := tabular.Row{"PTA Milk (kg)": tabular.NumberCell(pounds * kgPerPound)}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.InDelta(t, pounds, record["ptam"].(float64), 1e-3)
}

func TestNormalizeRowPercentString(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"Fat %": "fat_pct"})
	row := tabular.Row{"Fat %": tabular.TextCell("3.2%")}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, 3.2, record["fat_pct"])
}

func TestNormalizeRowCommaDecimal(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"Teor de Gordura": "fat_pct"})
	row := tabular.Row{"Teor de Gordura": tabular.TextCell("3,2%")}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, 3.2, record["fat_pct"])
}

func TestNormalizeRowThousandsSeparator(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"TPI": "tpi"})
	row := tabular.Row{"TPI": tabular.TextCell("2,905")}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, 2905.0, record["tpi"])
}

func TestNormalizeRowCurrencyMarker(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"NM$": "nm"})
	row := tabular.Row{"NM$": tabular.TextCell("$1,024.50")}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, 1024.50, record["nm"])
}

func TestNormalizeRowExcelSerialDate(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"Birth Date": "birth_date"})
	// 45292 days after 1899-12-30 is 2024-01-01.
	row := tabular.Row{"Birth Date": tabular.NumberCell(45292)}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, "2024-01-01T00:00:00Z", record["birth_date"])
}

func TestNormalizeRowLargeExcelSerial(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"Birth Date": "birth_date"})
	// Far-future serials must still land on the calendar, not wrap around.
	row := tabular.Row{"Birth Date": tabular.NumberCell(150000)}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, "2310-09-07T00:00:00Z", record["birth_date"])
}

func TestNormalizeRowDateLayouts(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"DOB": "birth_date"})

	record := NormalizeRow(tabular.Row{"DOB": tabular.TextCell("2021-03-15")}, mapping, registry, NormalizeOptions{})
	assert.Equal(t, "2021-03-15T00:00:00Z", record["birth_date"])

	record = NormalizeRow(tabular.Row{"DOB": tabular.DateCell(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC))}, mapping, registry, NormalizeOptions{})
	assert.Equal(t, "2021-03-15T00:00:00Z", record["birth_date"])
}

func TestNormalizeRowSkipsEmptyCells(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{
		"Name": "name",
		"TPI":  "tpi",
	})
	row := tabular.Row{
		"Name": tabular.TextCell("  Legacy  "),
		"TPI":  tabular.TextCell("   "),
	}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Equal(t, "Legacy", record["name"])
	_, present := record["tpi"]
	assert.False(t, present, "blank cell must stay absent, not zero")
}

func TestNormalizeRowUnparseableFieldDropsFieldNotRow(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{
		"Name": "name",
		"TPI":  "tpi",
	})
	row := tabular.Row{
		"Name": tabular.TextCell("Legacy"),
		"TPI":  tabular.TextCell("not-a-number"),
	}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.NotNil(t, record)
	assert.Equal(t, "Legacy", record["name"])
	_, present := record["tpi"]
	assert.False(t, present)
}

func TestNormalizeRowEmptyRecordIsNil(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"TPI": "tpi"})
	row := tabular.Row{"TPI": tabular.EmptyCell()}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{FarmID: "frm_1"})

	assert.Nil(t, record, "tenant stamp alone must not produce a record")
}

func TestNormalizeRowAttachesScopeIDs(t *testing.T) {
	registry := model.BullFields()
	mapping := approvedMapping(map[string]string{"Name": "name"})
	row := tabular.Row{"Name": tabular.TextCell("Legacy")}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{
		FarmID:  "frm_1",
		BatchID: "batch_9",
	})

	assert.Equal(t, "frm_1", record["farm_id"])
	assert.Equal(t, "batch_9", record["import_batch_id"])
}

func TestNormalizeRowIgnoresUnapprovedAndExcluded(t *testing.T) {
	registry := model.BullFields()
	mapping := []model.MappingRow{
		{Header: "Name", Canonical: "name", Approved: false},
		{Header: "TPI", Canonical: "tpi", Approved: true, Excluded: true},
	}
	row := tabular.Row{
		"Name": tabular.TextCell("Legacy"),
		"TPI":  tabular.NumberCell(2900),
	}

	record := NormalizeRow(row, mapping, registry, NormalizeOptions{})

	assert.Nil(t, record)
}
