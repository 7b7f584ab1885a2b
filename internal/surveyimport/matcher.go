package surveyimport

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyThreshold is the minimum similarity accepted as a fuzzy match.
const FuzzyThreshold = 0.85

// Score ranges accepted by the pipeline.
const (
	MinRating      = 0
	MaxRating      = 10
	MinOpportunity = 0
	MaxOpportunity = 99.9
)

// Row issue texts. Preview classification keys on the substrings
// "must be between" and "not found".
const (
	IssueImportanceRange   = "Importance must be between 0 and 10"
	IssueSatisfactionRange = "Satisfaction must be between 0 and 10"
	IssueOpportunityRange  = "Opportunity score must be between 0 and 99.9"
	IssueNotFound          = "Outcome not found"
)

func issueApproximate(score float64) string {
	return fmt.Sprintf("Approximate match (%d%%)", int(math.Round(score*100)))
}

// MatchRows resolves every row against the catalog and range-checks its
// scores. It never fails; the output has the same order and length as rows.
func MatchRows(rows []ParsedRow, catalog []CatalogEntry) []MatchedRow {
	defer observeStage("match", time.Now())

	bySlug := make(map[string]CatalogEntry, len(catalog))
	byName := make(map[string]CatalogEntry, len(catalog))
	for _, e := range catalog {
		if _, ok := bySlug[e.Slug]; !ok {
			bySlug[e.Slug] = e
		}
		if _, ok := byName[e.Name]; !ok {
			byName[e.Name] = e
		}
	}

	out := make([]MatchedRow, len(rows))
	for i, row := range rows {
		m := MatchedRow{ParsedRow: row, MatchType: MatchNone, Issues: rangeIssues(row)}

		if e, ok := bySlug[row.RawOutcome]; ok {
			m.resolve(e, MatchExactIdentifier)
		} else if e, ok := byName[row.RawOutcome]; ok {
			m.resolve(e, MatchExactName)
		} else if e, score, ok := bestFuzzy(row.RawOutcome, catalog); ok && score >= FuzzyThreshold {
			m.resolve(e, MatchFuzzy)
			m.MatchScore = &score
			m.Issues = append(m.Issues, issueApproximate(score))
		} else {
			m.Issues = append(m.Issues, IssueNotFound)
		}
		out[i] = m
	}
	countRows(out)
	return out
}

func (m *MatchedRow) resolve(e CatalogEntry, t MatchType) {
	m.OutcomeID = e.ID
	m.OutcomeName = e.Name
	m.OutcomeSlug = e.Slug
	m.MatchType = t
}

func rangeIssues(row ParsedRow) []string {
	issues := []string{}
	if !row.Importance.Between(MinRating, MaxRating) {
		issues = append(issues, IssueImportanceRange)
	}
	if !row.Satisfaction.Between(MinRating, MaxRating) {
		issues = append(issues, IssueSatisfactionRange)
	}
	if !row.OpportunityScore.Between(MinOpportunity, MaxOpportunity) {
		issues = append(issues, IssueOpportunityRange)
	}
	return issues
}

// bestFuzzy returns the catalog entry whose name or slug is most similar to
// raw. Only a strictly higher score replaces the current best, so the first
// entry wins ties. ok is false when the catalog is empty.
func bestFuzzy(raw string, catalog []CatalogEntry) (CatalogEntry, float64, bool) {
	var (
		best      CatalogEntry
		bestScore float64
		found     bool
	)
	for _, e := range catalog {
		score := math.Max(Similarity(raw, e.Name), Similarity(raw, e.Slug))
		if !found || score > bestScore {
			best, bestScore, found = e, score, true
		}
	}
	return best, bestScore, found
}

// Similarity is 1 - levenshtein/maxLen over the lowercased inputs, in runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	if longer == 0 {
		return 1.0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return float64(longer-dist) / float64(longer)
}
