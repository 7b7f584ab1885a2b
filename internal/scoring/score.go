// Package scoring implements the Outcome-Driven-Innovation opportunity score
// and the round-over-round projections derived from it.
package scoring

import (
	"math"
	"sort"
)

// OpportunityScore returns importance + max(importance - satisfaction, 0).
// Any component that recomputes scores must go through this function so
// results stay identical to the stored ones.
func OpportunityScore(importance, satisfaction float64) float64 {
	return importance + math.Max(importance-satisfaction, 0)
}

// Scores is the score triple of one outcome.
type Scores struct {
	Importance       float64 `json:"importance"`
	Satisfaction     float64 `json:"satisfaction"`
	OpportunityScore float64 `json:"opportunity_score"`
}

// NewScores builds a triple with the score computed from the inputs.
func NewScores(importance, satisfaction float64) Scores {
	return Scores{
		Importance:       importance,
		Satisfaction:     satisfaction,
		OpportunityScore: OpportunityScore(importance, satisfaction),
	}
}

// Variation is a delta applied to baseline importance and satisfaction.
type Variation struct {
	DeltaImportance   float64 `json:"d_imp"`
	DeltaSatisfaction float64 `json:"d_sat"`
}

// Projected ratings are clamped to the 1..10 answer scale.
const (
	minRating = 1
	maxRating = 10
)

// ApplyVariation shifts a baseline by v, clamps both ratings to [1,10] and
// recomputes the opportunity score.
func ApplyVariation(baseline Scores, v Variation) Scores {
	imp := clamp(baseline.Importance + v.DeltaImportance)
	sat := clamp(baseline.Satisfaction + v.DeltaSatisfaction)
	return NewScores(imp, sat)
}

func clamp(x float64) float64 {
	return math.Max(minRating, math.Min(maxRating, x))
}

// Ranked pairs an outcome key with its scores.
type Ranked struct {
	Key string `json:"key"`
	Scores
}

// Rank orders scores by opportunity score, highest first. Ties keep the
// order of keys after sorting them alphabetically.
func Rank(scores map[string]Scores) []Ranked {
	out := make([]Ranked, 0, len(scores))
	for k, s := range scores {
		out = append(out, Ranked{Key: k, Scores: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpportunityScore > out[j].OpportunityScore
	})
	return out
}
