package surveyimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericPrefix is the longest leading decimal literal of a cell, so that
// "9,2%" and "9.2 pts" still read as 9.2.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseTable is ParseRows over a decoded table.
func ParseTable(t *Table) ([]ParsedRow, error) {
	return ParseRows(t.Headers, t.Rows)
}

// ParseRows extracts and coerces the canonical fields of every row. It fails
// with *MissingColumnError before looking at any row when a canonical field
// has no header. Rows with an empty outcome are dropped and RowIndex counts
// only the rows kept.
func ParseRows(headers []string, rows []Record) ([]ParsedRow, error) {
	hm := NormalizeHeaders(headers)
	for _, f := range RequiredFields {
		if _, ok := hm[f]; !ok {
			return nil, &MissingColumnError{Field: f}
		}
	}

	out := make([]ParsedRow, 0, len(rows))
	for _, rec := range rows {
		raw := strings.TrimSpace(cellString(rec[hm[FieldOutcome]]))
		if raw == "" {
			continue
		}
		out = append(out, ParsedRow{
			RowIndex:         len(out) + 1,
			RawOutcome:       raw,
			Importance:       ParseNumeric(rec[hm[FieldImportance]]),
			Satisfaction:     ParseNumeric(rec[hm[FieldSatisfaction]]),
			OpportunityScore: ParseNumeric(rec[hm[FieldOpportunityScore]]),
			OriginalRow:      rec,
		})
	}
	return out, nil
}

// ParseNumeric coerces a cell to a Number. Native numbers pass through.
// Text is trimmed, the first comma becomes a period and the leading numeric
// prefix is parsed; trailing text is ignored. Anything else is NaN.
func ParseNumeric(v any) Number {
	switch x := v.(type) {
	case float64:
		return Number(x)
	case float32:
		return Number(x)
	case int:
		return Number(x)
	case int64:
		return Number(x)
	case int32:
		return Number(x)
	case string:
		s := numericPrefix.FindString(strings.Replace(strings.TrimSpace(x), ",", ".", 1))
		if s == "" {
			return NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return NaN()
		}
		return Number(f)
	}
	return NaN()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
