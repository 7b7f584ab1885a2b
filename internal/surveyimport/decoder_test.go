package surveyimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestDecode_CSV(t *testing.T) {
	data := "outcome,importance,satisfaction,opportunity_score\nreduce-time,9.2,4.6,13.8\nfind-parts,8,5,11\n"

	table, err := Decode(strings.NewReader(data), "round1.CSV")
	require.NoError(t, err)
	assert.Equal(t, []string{"outcome", "importance", "satisfaction", "opportunity_score"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "reduce-time", table.Rows[0]["outcome"])
	assert.Equal(t, "13.8", table.Rows[0]["opportunity_score"])
}

func TestDecode_CSVStripsBOM(t *testing.T) {
	data := "\uFEFFoutcome,importance,satisfaction,opportunity_score\nx,1,2,3\n"

	table, err := Decode(strings.NewReader(data), "bom.csv")
	require.NoError(t, err)
	assert.Equal(t, "outcome", table.Headers[0])
}

func TestDecode_CSVDelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"semicolon", "outcome;importancia;satisfacao;opportunity_score\nreduce-time;9,2;4,6;13,8\n"},
		{"tab", "outcome\timportance\tsatisfaction\topportunity_score\nreduce-time\t9.2\t4.6\t13.8\n"},
		{"pipe", "outcome|importance|satisfaction|opportunity_score\nreduce-time|9.2|4.6|13.8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Decode(strings.NewReader(tt.data), "survey.csv")
			require.NoError(t, err)
			require.Len(t, table.Headers, 4)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, "reduce-time", table.Rows[0][table.Headers[0]])
		})
	}
}

func TestDecode_CSVWindows1252(t *testing.T) {
	utf := "outcome,importância,satisfação,opportunity_score\nReduzir o tempo de espera,9,4,14\n"
	latin, err := charmap.Windows1252.NewEncoder().String(utf)
	require.NoError(t, err)

	table, err := Decode(strings.NewReader(latin), "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "importância", table.Headers[1])
	assert.Equal(t, "satisfação", table.Headers[2])
}

func TestDecode_CSVExtraCellsSkipped(t *testing.T) {
	data := "outcome,importance\nreduce-time,9,extra,cells\nshort\n"

	table, err := Decode(strings.NewReader(data), "x.csv")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	_, ok := table.Rows[1]["importance"]
	assert.False(t, ok)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("a,b"), "survey.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, CodeUnsupportedFormat, ErrorCode(err))

	_, err = Decode(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Decode(strings.NewReader("outcome,importance,satisfaction,opportunity_score\n"), "header-only.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Equal(t, CodeEmptyFile, ErrorCode(err))
}

func buildXLSX(t *testing.T, rows [][]any, extraSheet bool) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ri, row := range rows {
		for ci, v := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	if extraSheet {
		_, err := f.NewSheet("Ignored")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Ignored", "A1", "outcome"))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecode_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Outcome", "Importância", "Satisfação", "Opportunity Score"},
		{"reduce-time", 9.2, 4.6, 13.8},
		{"find-parts", "8,5", "5,2", "11,8", "beyond header"},
	}, true)

	table, err := Decode(bytes.NewReader(data), "survey.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"Outcome", "Importância", "Satisfação", "Opportunity Score"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 9.2, table.Rows[0]["Importância"], "numeric cells stay native")
	assert.Equal(t, "8,5", table.Rows[1]["Importância"], "text cells stay text")
	assert.Len(t, table.Rows[1], 4)

	parsed, err := ParseTable(table)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, Number(9.2), parsed[0].Importance)
	assert.Equal(t, Number(8.5), parsed[1].Importance)
}

func TestDecode_XLSXHeaderOnly(t *testing.T) {
	data := buildXLSX(t, [][]any{{"outcome", "importance", "satisfaction", "opportunity_score"}}, false)

	_, err := Decode(bytes.NewReader(data), "survey.xlsx")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.csv"))
	assert.True(t, SupportedExtension("a.XLSX"))
	assert.True(t, SupportedExtension("a.xls"))
	assert.False(t, SupportedExtension("a.numbers"))
}
