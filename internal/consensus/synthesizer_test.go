package consensus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Text Synthesizer Tests
// ============================================================================

func TestSynthesize_OrdersByConfidence(t *testing.T) {
	ts := NewTextSynthesizer()

	positions := []*Position{
		{ParticipantID: "low", Content: "low confidence view", Confidence: 0.3},
		{ParticipantID: "high", Content: "high confidence view", Confidence: 0.9},
	}

	out := ts.Synthesize(positions)
	assert.Less(t, strings.Index(out, "high confidence view"), strings.Index(out, "low confidence view"))
}

func TestSynthesize_Empty(t *testing.T) {
	ts := NewTextSynthesizer()
	assert.Equal(t, "No positions available for synthesis.", ts.Synthesize(nil))
}

func TestSynthesizeWeighted_SkipsInsignificantWeights(t *testing.T) {
	weighted := []WeightedPosition{
		{Position: &Position{Content: "major view"}, Weight: 0.9},
		{Position: &Position{Content: "minor view"}, Weight: 0.05},
	}

	out := SynthesizeWeighted(weighted)
	assert.Contains(t, out, "major view")
	assert.NotContains(t, out, "minor view")
	assert.Contains(t, out, "## Weighted Specialist Consensus")
}

// ============================================================================
// Similarity Tests
// ============================================================================

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("use the cache", "use the cache"))
	assert.Equal(t, 0.0, TextSimilarity("alpha beta", "gamma delta"))
	assert.Equal(t, 0.0, TextSimilarity("", ""))

	// {a,b,c} vs {b,c,d}: 2 shared of 4 total.
	assert.InDelta(t, 0.5, TextSimilarity("a b c", "b c d"), 0.001)
}

func TestTextSimilarity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("Enable Caching", "enable caching"))
}

// ============================================================================
// Core Type Tests
// ============================================================================

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.5))
	assert.Equal(t, 1.0, ClampConfidence(1.5))
	assert.Equal(t, 0.7, ClampConfidence(0.7))
}

func TestConsensusLevelRank(t *testing.T) {
	assert.Greater(t, LevelUnanimous.Rank(), LevelSuperMajority.Rank())
	assert.Greater(t, LevelSuperMajority.Rank(), LevelStrongMajority.Rank())
	assert.Greater(t, LevelStrongMajority.Rank(), LevelSimpleMajority.Rank())
	assert.Greater(t, LevelSimpleMajority.Rank(), LevelPlurality.Rank())
	assert.Greater(t, LevelPlurality.Rank(), LevelSpecialistOverride.Rank())
	assert.Equal(t, 0, ConsensusLevel("unknown").Rank())
}

func TestPositionClone(t *testing.T) {
	original := &Position{
		ParticipantID: "p1",
		Content:       "content",
		Confidence:    0.8,
		Evidence:      []string{"e1"},
	}

	clone := original.Clone()
	clone.Evidence[0] = "mutated"
	clone.Confidence = 0.1

	assert.Equal(t, "e1", original.Evidence[0])
	assert.Equal(t, 0.8, original.Confidence)
}

func TestAllStrategies_CountsEight(t *testing.T) {
	assert.Len(t, AllStrategies(), 8)
}
