package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityScore(t *testing.T) {
	tests := []struct {
		name     string
		imp, sat float64
		want     float64
	}{
		{"underserved", 9.3, 4.6, 14.0},
		{"overserved", 5.0, 8.0, 5.0},
		{"balanced", 7.0, 7.0, 7.0},
		{"zero", 0, 0, 0},
		{"max gap", 10, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, OpportunityScore(tt.imp, tt.sat), 1e-9)
		})
	}
}

func TestOpportunityScore_ExactArithmetic(t *testing.T) {
	imp, sat := 9.3, 4.6
	assert.Equal(t, imp+(imp-sat), OpportunityScore(imp, sat))
	assert.Equal(t, 5.0, OpportunityScore(5, 8))
}

func TestOpportunityScore_Grid(t *testing.T) {
	for i := 0; i <= 100; i++ {
		for s := 0; s <= 100; s++ {
			imp, sat := float64(i)/10, float64(s)/10
			want := imp
			if imp > sat {
				want = imp + (imp - sat)
			}
			require.Equal(t, want, OpportunityScore(imp, sat), "imp=%v sat=%v", imp, sat)
		}
	}
}

func TestApplyVariation(t *testing.T) {
	base := NewScores(8, 4)

	got := ApplyVariation(base, Variation{DeltaImportance: 0.5, DeltaSatisfaction: -1})
	assert.Equal(t, 8.5, got.Importance)
	assert.Equal(t, 3.0, got.Satisfaction)
	assert.Equal(t, OpportunityScore(8.5, 3), got.OpportunityScore)
}

func TestApplyVariation_Clamps(t *testing.T) {
	got := ApplyVariation(NewScores(9.8, 1.2), Variation{DeltaImportance: 2, DeltaSatisfaction: -3})
	assert.Equal(t, 10.0, got.Importance)
	assert.Equal(t, 1.0, got.Satisfaction)
	assert.Equal(t, 19.0, got.OpportunityScore)

	got = ApplyVariation(NewScores(0.5, 0.2), Variation{})
	assert.Equal(t, 1.0, got.Importance)
	assert.Equal(t, 1.0, got.Satisfaction)
	assert.False(t, math.IsNaN(got.OpportunityScore))
}

func TestRank(t *testing.T) {
	ranked := Rank(map[string]Scores{
		"b": NewScores(7, 7),
		"a": NewScores(7, 7),
		"c": NewScores(9, 3),
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Key)
	assert.Equal(t, "a", ranked[1].Key)
	assert.Equal(t, "b", ranked[2].Key)
}
