package surveyimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []CatalogEntry{
	{ID: "o-1", Slug: "reduce-time", Name: "Reduce the time it takes to find a part"},
	{ID: "o-2", Slug: "find-parts", Name: "Minimize the likelihood of ordering the wrong part"},
	{ID: "o-3", Slug: "track-orders", Name: "Track orders"},
}

func parsed(raw string, imp, sat, opp float64) ParsedRow {
	return ParsedRow{RowIndex: 1, RawOutcome: raw, Importance: Number(imp), Satisfaction: Number(sat), OpportunityScore: Number(opp)}
}

func TestMatchRows_Tiers(t *testing.T) {
	rows := []ParsedRow{
		parsed("reduce-time", 9, 4, 14),
		parsed("Track orders", 8, 5, 11),
		parsed("track order", 8, 5, 11),
		parsed("something else entirely", 8, 5, 11),
	}
	// Another entry's name fuzzy-matches the first row perfectly, but the
	// slug tier still wins.
	catalog := append(append([]CatalogEntry{}, testCatalog...),
		CatalogEntry{ID: "o-4", Slug: "legacy-reduce", Name: "Reduce-Time"})
	require.Equal(t, 1.0, Similarity("reduce-time", "Reduce-Time"))

	out := MatchRows(rows, catalog)
	require.Len(t, out, 4)

	assert.Equal(t, MatchExactIdentifier, out[0].MatchType)
	assert.Equal(t, "o-1", out[0].OutcomeID)
	assert.Equal(t, "reduce-time", out[0].OutcomeSlug)
	assert.Empty(t, out[0].Issues)
	assert.Nil(t, out[0].MatchScore)

	assert.Equal(t, MatchExactName, out[1].MatchType)
	assert.Equal(t, "o-3", out[1].OutcomeID)

	assert.Equal(t, MatchFuzzy, out[2].MatchType)
	assert.Equal(t, "o-3", out[2].OutcomeID)
	require.NotNil(t, out[2].MatchScore)
	assert.InDelta(t, 11.0/12.0, *out[2].MatchScore, 1e-9)
	assert.Equal(t, []string{"Approximate match (92%)"}, out[2].Issues)

	assert.Equal(t, MatchNone, out[3].MatchType)
	assert.False(t, out[3].Matched())
	assert.Equal(t, []string{IssueNotFound}, out[3].Issues)
}

func TestMatchRows_ExactNameIsCaseSensitive(t *testing.T) {
	out := MatchRows([]ParsedRow{parsed("TRACK ORDERS", 8, 5, 11)}, testCatalog)
	assert.Equal(t, MatchFuzzy, out[0].MatchType)
	require.NotNil(t, out[0].MatchScore)
	assert.Equal(t, 1.0, *out[0].MatchScore)
}

func TestMatchRows_FuzzyThresholdBoundary(t *testing.T) {
	catalog := []CatalogEntry{{ID: "o-20", Slug: "z", Name: "abcdefghijklmnopqrst"}}

	accepted := MatchRows([]ParsedRow{parsed("abcdefghijklmnopqXYZ", 5, 5, 5)}, catalog)
	assert.Equal(t, MatchFuzzy, accepted[0].MatchType)
	assert.Equal(t, 0.85, *accepted[0].MatchScore)
	assert.Equal(t, []string{"Approximate match (85%)"}, accepted[0].Issues)

	rejected := MatchRows([]ParsedRow{parsed("abcdefghijklmnopWXYZ", 5, 5, 5)}, catalog)
	assert.Equal(t, MatchNone, rejected[0].MatchType)
	assert.Nil(t, rejected[0].MatchScore)
	assert.Equal(t, []string{IssueNotFound}, rejected[0].Issues)

	assert.Less(t, 0.849999, FuzzyThreshold)
}

func TestMatchRows_RangeIssuesFirst(t *testing.T) {
	out := MatchRows([]ParsedRow{
		{RowIndex: 1, RawOutcome: "nope", Importance: 15, Satisfaction: NaN(), OpportunityScore: 100},
	}, testCatalog)

	assert.Equal(t, []string{
		IssueImportanceRange,
		IssueSatisfactionRange,
		IssueOpportunityRange,
		IssueNotFound,
	}, out[0].Issues)
}

func TestMatchRows_RangeBounds(t *testing.T) {
	out := MatchRows([]ParsedRow{
		parsed("reduce-time", 0, 10, 99.9),
		parsed("reduce-time", -0.1, 10.1, 99.91),
	}, testCatalog)

	assert.Empty(t, out[0].Issues)
	assert.Len(t, out[1].Issues, 3)
}

func TestMatchRows_EmptyCatalog(t *testing.T) {
	out := MatchRows([]ParsedRow{parsed("reduce-time", 9, 4, 14)}, nil)
	assert.Equal(t, MatchNone, out[0].MatchType)
	assert.Equal(t, []string{IssueNotFound}, out[0].Issues)
}

func TestMatchRows_TieKeepsFirstEntry(t *testing.T) {
	catalog := []CatalogEntry{
		{ID: "first", Slug: "abcx", Name: "First"},
		{ID: "second", Slug: "abcy", Name: "Second"},
	}
	out := MatchRows([]ParsedRow{parsed("abcd", 5, 5, 5)}, catalog)
	// Both slugs score 0.75, below the threshold, so tie-breaking is only
	// observable through bestFuzzy.
	assert.Equal(t, MatchNone, out[0].MatchType)

	e, score, ok := bestFuzzy("abcd", catalog)
	require.True(t, ok)
	assert.Equal(t, "first", e.ID)
	assert.Equal(t, 0.75, score)
}

func TestMatchRows_DuplicateSlugKeepsFirst(t *testing.T) {
	catalog := []CatalogEntry{
		{ID: "a", Slug: "dup", Name: "A"},
		{ID: "b", Slug: "dup", Name: "B"},
	}
	out := MatchRows([]ParsedRow{parsed("dup", 5, 5, 5)}, catalog)
	assert.Equal(t, "a", out[0].OutcomeID)
}

func TestMatchRows_PreservesOrderAndLength(t *testing.T) {
	rows := []ParsedRow{parsed("a", 1, 1, 1), parsed("b", 1, 1, 1), parsed("find-parts", 1, 1, 1)}
	out := MatchRows(rows, testCatalog)
	require.Len(t, out, 3)
	for i := range rows {
		assert.Equal(t, rows[i].RawOutcome, out[i].RawOutcome)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("Track", "track"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 0.8, Similarity("satisfação", "satisfacao"), 1e-9)
}
