package surveyimport

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is one of the canonical columns the pipeline needs.
type Field string

const (
	FieldOutcome          Field = "outcome"
	FieldImportance       Field = "importance"
	FieldSatisfaction     Field = "satisfaction"
	FieldOpportunityScore Field = "opportunity_score"
)

// RequiredFields lists the canonical fields in the order they are checked.
var RequiredFields = []Field{FieldOutcome, FieldImportance, FieldSatisfaction, FieldOpportunityScore}

// headerAliases maps folded, lowercase header names to canonical fields.
var headerAliases = map[string]Field{
	"outcome":      FieldOutcome,
	"outcome_slug": FieldOutcome,
	"resultado":    FieldOutcome,

	"importancia": FieldImportance,
	"importance":  FieldImportance,

	"satisfacao":   FieldSatisfaction,
	"satisfaction": FieldSatisfaction,

	"opportunity_score": FieldOpportunityScore,
	"opportunityscore":  FieldOpportunityScore,
	"opportunity score": FieldOpportunityScore,
	"oportunidade":      FieldOpportunityScore,
}

// HeaderMap maps each canonical field to the header text present in the file.
type HeaderMap map[Field]string

// NormalizeHeaders resolves raw headers against the alias table. It never
// fails; fields with no matching header are simply absent. When two headers
// resolve to the same field the later one wins.
func NormalizeHeaders(headers []string) HeaderMap {
	m := make(HeaderMap, len(RequiredFields))
	for _, h := range headers {
		if field, ok := headerAliases[normalizeHeader(h)]; ok {
			m[field] = h
		}
	}
	return m
}

func normalizeHeader(h string) string {
	s := strings.TrimSpace(h)
	s = strings.Trim(s, "\"'")
	return strings.ToLower(foldAccents(strings.TrimSpace(s)))
}

// foldAccents strips combining marks so "Satisfação" folds to "Satisfacao".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
