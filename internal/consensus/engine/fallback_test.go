package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.consensus/internal/consensus"
)

// ============================================================================
// Fallback Chain Tests
// ============================================================================

func TestFallbackConsensus_ConfidentMajority(t *testing.T) {
	eng, _ := newTestEngine(t)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "view one", 0.8),
		"p2": position("p2", "view two", 0.7),
		"p3": position("p3", "weak view", 0.3),
	}

	insight := eng.fallbackConsensus(positions)

	assert.Equal(t, "fallback_consensus", insight.SynthesisMethod)
	assert.ElementsMatch(t, []string{"p1", "p2"}, insight.ContributingAgents)
	assert.Equal(t, consensus.LevelPlurality, insight.ConsensusLevel)
	assert.InDelta(t, 0.75, insight.ConfidenceScore, 0.001)
	assert.Contains(t, insight.SynthesizedContent, "view one")
	assert.Contains(t, insight.SynthesizedContent, "view two")
	assert.NotContains(t, insight.SynthesizedContent, "weak view")
}

func TestFallbackConsensus_SingleBestAtHalfConfidence(t *testing.T) {
	eng, _ := newTestEngine(t)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "tentative idea", 0.4),
		"p2": position("p2", "slightly better idea", 0.5),
	}

	insight := eng.fallbackConsensus(positions)

	assert.Equal(t, "ultimate_fallback", insight.SynthesisMethod)
	assert.Equal(t, []string{"p2"}, insight.ContributingAgents)
	assert.Equal(t, "slightly better idea", insight.SynthesizedContent)
	assert.InDelta(t, 0.25, insight.ConfidenceScore, 0.001)
	assert.Equal(t, consensus.LevelSpecialistOverride, insight.ConsensusLevel)
}

func TestFallbackConsensus_EmptySentinel(t *testing.T) {
	eng, _ := newTestEngine(t)

	insight := eng.fallbackConsensus(nil)

	assert.Equal(t, "emergency_fallback", insight.SynthesisMethod)
	assert.Empty(t, insight.ContributingAgents)
	assert.Equal(t, 0.1, insight.ConfidenceScore)
	assert.NotEmpty(t, insight.SynthesizedContent)
}

func TestBestPosition_TieBreaksDeterministically(t *testing.T) {
	positions := map[string]*consensus.Position{
		"zebra": position("zebra", "z view", 0.5),
		"apple": position("apple", "a view", 0.5),
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, "apple", bestPosition(positions).ParticipantID)
	}
}

func TestFallbackConsensus_NeverNil(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NotNil(t, eng.fallbackConsensus(nil))
	require.NotNil(t, eng.fallbackConsensus(map[string]*consensus.Position{}))
	require.NotNil(t, eng.fallbackConsensus(map[string]*consensus.Position{
		"p1": position("p1", "anything", 0.9),
	}))
}
