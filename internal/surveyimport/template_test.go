package surveyimport

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTemplate_RoundTrips(t *testing.T) {
	data := Template()
	assert.Equal(t,
		"outcome,importance,satisfaction,opportunity_score\n"+
			"example-outcome-slug,9.2,4.6,13.8\n"+
			"Outcome display name,8.5,5.2,11.8\n",
		string(data))

	table, err := Decode(bytes.NewReader(data), "template.csv")
	require.NoError(t, err)
	rows, err := ParseTable(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Number(13.8), rows[0].OpportunityScore)
}

func TestTemplateXLSX_RoundTrips(t *testing.T) {
	data, err := TemplateXLSX()
	require.NoError(t, err)

	table, err := Decode(bytes.NewReader(data), "template.xlsx")
	require.NoError(t, err)
	assert.Equal(t, TemplateHeaders, table.Headers)

	rows, err := ParseTable(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Outcome display name", rows[1].RawOutcome)
	assert.Equal(t, Number(8.5), rows[1].Importance)
	assert.InDelta(t, 11.8, rows[1].OpportunityScore.Float(), 1e-9)
}

func TestMatchLocale(t *testing.T) {
	assert.Equal(t, language.BrazilianPortuguese, MatchLocale("pt-BR,pt;q=0.9,en;q=0.8"))
	assert.Equal(t, language.BrazilianPortuguese, MatchLocale("pt"))
	assert.Equal(t, language.English, MatchLocale("en-GB"))
	assert.Equal(t, language.English, MatchLocale(""))
	assert.Equal(t, language.English, MatchLocale("!!"))
}

func TestMessage(t *testing.T) {
	pt := language.BrazilianPortuguese

	assert.Equal(t, `Coluna "outcome" não encontrada`, Message(&MissingColumnError{Field: FieldOutcome}, pt))
	assert.Equal(t, "Importance column not found (accepts: importancia, importance)",
		Message(&MissingColumnError{Field: FieldImportance}, language.English))
	assert.Equal(t, "The file has no data rows.", Message(ErrEmptyFile, language.English))
	assert.Equal(t, "Formato de arquivo não suportado. Use CSV, XLSX ou XLS.",
		Message(fmt.Errorf("%w: %q", ErrUnsupportedFormat, ".pdf"), pt))
	assert.Equal(t, "boom", Message(errors.New("boom"), pt))
}
