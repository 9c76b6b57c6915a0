package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVTypesCells(t *testing.T) {
	input := "NAAB Code,PTA Milk (kg),Nome\n7HO12345,5,Invicto\n11HO11111,,Bullseye\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"NAAB Code", "PTA Milk (kg)", "Nome"}, table.Headers)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, KindText, first["NAAB Code"].Kind)
	assert.Equal(t, "7HO12345", first["NAAB Code"].Text)
	assert.Equal(t, KindNumber, first["PTA Milk (kg)"].Kind)
	assert.Equal(t, 5.0, first["PTA Milk (kg)"].Number)

	second := table.Rows[1]
	assert.True(t, second["PTA Milk (kg)"].IsEmpty())
}

func TestParseCSVRaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0]["C"].IsEmpty())
}

func TestParseCSVMissingHeaders(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseDetectsCSVByContent(t *testing.T) {
	data := []byte("id,amount\nx,1\n")
	table, err := Parse(data, "upload.bin")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, table.Headers)
}

func TestCellIsEmpty(t *testing.T) {
	assert.True(t, EmptyCell().IsEmpty())
	assert.True(t, TextCell("   ").IsEmpty())
	assert.False(t, TextCell("x").IsEmpty())
	assert.False(t, NumberCell(0).IsEmpty())
}
