// Package evidence scores the supporting evidence participants attach to
// their positions. Scores feed the strategy selector, the weighted voting
// strategy, and conflict resolution.
package evidence

import (
	"strings"
)

// Specificity keywords raise the score of an evidence item. Each hit is worth
// a fixed bonus on top of the base and length scores.
var specificityKeywords = []string{
	"data", "metric", "measurement", "specific", "example", "study", "research",
}

const (
	baseScore        = 0.5
	lengthWeight     = 0.2
	lengthNormalizer = 100.0
	keywordBonus     = 0.1
)

// Evaluator scores evidence items and per-participant evidence registries.
// It is pure and deterministic; the zero value is ready to use.
type Evaluator struct{}

// NewEvaluator creates an evidence evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// ScoreItem scores a single evidence item in [0,1]. Empty items score 0.
func (e *Evaluator) ScoreItem(item string) float64 {
	if item == "" {
		return 0.0
	}

	score := baseScore

	lengthScore := float64(len(item)) / lengthNormalizer
	if lengthScore > 1.0 {
		lengthScore = 1.0
	}
	score += lengthScore * lengthWeight

	lower := strings.ToLower(item)
	for _, keyword := range specificityKeywords {
		if strings.Contains(lower, keyword) {
			score += keywordBonus
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// ScoreParticipant scores one participant's evidence list: the mean of the
// item scores, or exactly 0.0 when the list is empty.
func (e *Evaluator) ScoreParticipant(items []string) float64 {
	if len(items) == 0 {
		return 0.0
	}

	total := 0.0
	for _, item := range items {
		total += e.ScoreItem(item)
	}
	return total / float64(len(items))
}

// ScoreRegistry scores every participant in an evidence registry.
func (e *Evaluator) ScoreRegistry(registry map[string][]string) map[string]float64 {
	scores := make(map[string]float64, len(registry))
	for participant, items := range registry {
		scores[participant] = e.ScoreParticipant(items)
	}
	return scores
}

// MeanScore returns the mean of the registry scores, or 0 for an empty
// registry.
func (e *Evaluator) MeanScore(registry map[string][]string) float64 {
	if len(registry) == 0 {
		return 0.0
	}

	total := 0.0
	for _, items := range registry {
		total += e.ScoreParticipant(items)
	}
	return total / float64(len(registry))
}
