package consensus

import (
	"fmt"
	"sort"
	"strings"
)

// Synthesizer combines multiple positions into a single content string. The
// default implementation is deliberately simple text assembly; callers that
// have a richer content-generation capability can swap in their own.
type Synthesizer interface {
	Synthesize(positions []*Position) string
}

// WeightedPosition pairs a position with its aggregation weight.
type WeightedPosition struct {
	Position *Position
	Weight   float64
}

// TextSynthesizer is the default Synthesizer. It orders positions and joins
// their contents with light structural markup.
type TextSynthesizer struct{}

// NewTextSynthesizer creates the default text synthesizer.
func NewTextSynthesizer() *TextSynthesizer {
	return &TextSynthesizer{}
}

// Synthesize joins position contents ordered by descending confidence.
func (ts *TextSynthesizer) Synthesize(positions []*Position) string {
	if len(positions) == 0 {
		return "No positions available for synthesis."
	}

	ordered := make([]*Position, len(positions))
	copy(ordered, positions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	parts := make([]string, 0, len(ordered))
	for _, pos := range ordered {
		parts = append(parts, pos.Content)
	}
	return strings.Join(parts, "\n\n")
}

// SynthesizeWeighted renders positions ordered by descending weight, skipping
// contributions whose normalized weight is not significant (<= 0.1).
func SynthesizeWeighted(weighted []WeightedPosition) string {
	if len(weighted) == 0 {
		return "No positions available for synthesis."
	}

	ordered := make([]WeightedPosition, len(weighted))
	copy(ordered, weighted)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight > ordered[j].Weight
	})

	parts := []string{"## Weighted Specialist Consensus", ""}
	for _, wp := range ordered {
		if wp.Weight > 0.1 {
			parts = append(parts, fmt.Sprintf("**Weight %.2f**: %s", wp.Weight, wp.Position.Content))
		}
	}
	return strings.Join(parts, "\n")
}

// TextSimilarity computes Jaccard word-set similarity between two texts.
// This is the lexical floor of the engine: no semantic comparison is implied.
func TextSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
