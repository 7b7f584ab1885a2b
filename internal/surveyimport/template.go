package surveyimport

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/jtbd-explorer/internal/scoring"
)

// TemplateHeaders is the header row of the import template.
var TemplateHeaders = []string{"outcome", "importance", "satisfaction", "opportunity_score"}

type templateRow struct {
	outcome      string
	importance   float64
	satisfaction float64
}

var templateRows = []templateRow{
	{"example-outcome-slug", 9.2, 4.6},
	{"Outcome display name", 8.5, 5.2},
}

func formatScore(f float64) string { return fmt.Sprintf("%.1f", f) }

// Template returns a CSV file operators can fill in. The example rows show
// both a slug and a display name in the outcome column.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(TemplateHeaders)
	for _, r := range templateRows {
		_ = w.Write([]string{
			r.outcome,
			formatScore(r.importance),
			formatScore(r.satisfaction),
			formatScore(scoring.OpportunityScore(r.importance, r.satisfaction)),
		})
	}
	w.Flush()
	return buf.Bytes()
}

const templateSheet = "Survey"

// TemplateXLSX returns the template as a workbook with numeric cells.
func TemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range TemplateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(templateSheet, cell, h)
	}
	for ri, r := range templateRows {
		score := scoring.OpportunityScore(r.importance, r.satisfaction)
		values := []any{r.outcome, r.importance, r.satisfaction, score}
		for ci, v := range values {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			f.SetCellValue(templateSheet, cell, v)
		}
	}
	f.SetColWidth(templateSheet, "A", "A", 32)
	f.SetColWidth(templateSheet, "B", "D", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
