package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.consensus/internal/consensus"
)

// ============================================================================
// Weighted Voting Tests
// ============================================================================

func TestWeightedVoting(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"security_specialist": position("security_specialist", "harden the endpoint", "attack surface", 0.9,
			"vulnerability research data from the last audit"),
		"ui_ux_designer": position("ui_ux_designer", "simplify the flow", "user friction", 0.7),
	}
	delib := testDeliberation(positions)

	insight, err := d.weightedVoting(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"security_specialist", "ui_ux_designer"}, insight.ContributingAgents)
	assert.Equal(t, "weighted_voting", insight.SynthesisMethod)
	// mean confidence 0.8 boosted by 1.1
	assert.InDelta(t, 0.88, insight.ConfidenceScore, 0.001)
	assert.Contains(t, insight.SynthesizedContent, "Weighted Specialist Consensus")
	assert.Contains(t, delib.Phases, consensus.PhaseEvidencePresentation)
	assert.Contains(t, delib.Phases, consensus.PhaseSynthesis)
}

func TestWeightedVoting_NoPositions(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	_, err := d.weightedVoting(context.Background(), testDeliberation(nil), nil)
	assert.Error(t, err)
}

func TestLevelFromWeights(t *testing.T) {
	assert.Equal(t, consensus.LevelSpecialistOverride,
		levelFromWeights(map[string]float64{"a": 0.8, "b": 0.2}, 2))
	assert.Equal(t, consensus.LevelSuperMajority,
		levelFromWeights(map[string]float64{"a": 0.6, "b": 0.4}, 2))
	assert.Equal(t, consensus.LevelStrongMajority,
		levelFromWeights(map[string]float64{"a": 0.4, "b": 0.3, "c": 0.3}, 3))
	assert.Equal(t, consensus.LevelPlurality, levelFromWeights(nil, 3))
}

// ============================================================================
// Specialist Authority Tests
// ============================================================================

func TestSpecialistAuthority_DomainMatchLeads(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"security_specialist": position("security_specialist", "rotate the keys", "compromised credential risk", 0.9),
		"data_analytics":      position("data_analytics", "collect more samples", "inconclusive numbers", 0.7),
		"ui_ux_designer":      position("ui_ux_designer", "redesign the login page", "confusing flow", 0.3),
	}
	delib := testDeliberation(positions)
	delib.Task.Description = "respond to the security vulnerability in auth"

	insight, err := d.specialistAuthority(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.Equal(t, consensus.LevelSpecialistOverride, insight.ConsensusLevel)
	assert.Equal(t, "security_specialist", insight.ContributingAgents[0])
	// supporters hold confidence above 0.6
	assert.Contains(t, insight.ContributingAgents, "data_analytics")
	assert.NotContains(t, insight.ContributingAgents, "ui_ux_designer")
	// low-confidence position recorded as dissent
	require.Len(t, insight.ConflictingViews, 1)
	assert.Equal(t, "ui_ux_designer", insight.ConflictingViews[0].ParticipantID)
	// lead confidence discounted
	assert.InDelta(t, 0.81, insight.ConfidenceScore, 0.001)
}

func TestSpecialistAuthority_NoSpecialistFallsBackToVoting(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "go with alpha", "", 0.8),
		"p2": position("p2", "go with beta", "", 0.7),
	}
	delib := testDeliberation(positions)
	delib.Task.Description = "a task no registered domain matches"

	insight, err := d.specialistAuthority(context.Background(), delib, positions)
	require.NoError(t, err)
	assert.Equal(t, "weighted_voting", insight.SynthesisMethod)
}

// ============================================================================
// Evidence-Based Tests
// ============================================================================

func TestEvidenceBased_FiltersWeakEvidence(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	strong := "benchmark study data with specific measurement results for example production workloads over research"
	positions := map[string]*consensus.Position{
		"p1": position("p1", "adopt alpha", "", 0.9, strong),
		"p2": position("p2", "adopt beta", "", 0.8),
	}
	delib := testDeliberation(positions)

	insight, err := d.evidenceBased(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, insight.ContributingAgents)
	assert.Equal(t, "evidence_based", insight.SynthesisMethod)
	assert.Equal(t, consensus.LevelStrongMajority, insight.ConsensusLevel)
}

func TestEvidenceBased_NoQualifiersFallsBackToVoting(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "adopt alpha", "", 0.9),
		"p2": position("p2", "adopt beta", "", 0.8),
	}
	delib := testDeliberation(positions)

	insight, err := d.evidenceBased(context.Background(), delib, positions)
	require.NoError(t, err)
	assert.Equal(t, "weighted_voting", insight.SynthesisMethod)
}

// ============================================================================
// Collaborative Synthesis Tests
// ============================================================================

func TestCollaborativeSynthesis(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "build the shared module first", "", 0.9),
		"p2": position("p2", "build the shared module first then split", "", 0.8),
		"p3": position("p3", "uncertain", "", 0.2),
	}
	delib := testDeliberation(positions)

	insight, err := d.collaborativeSynthesis(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"p1", "p2"}, insight.ContributingAgents)
	assert.Equal(t, consensus.LevelStrongMajority, insight.ConsensusLevel)
	assert.Equal(t, "collaborative_synthesis", insight.SynthesisMethod)
	assert.Contains(t, delib.Phases, consensus.PhaseNegotiation)
}

func TestCollaborationScore_MonotonicInParticipation(t *testing.T) {
	blocks := []*consensus.Position{
		{Content: "same view"},
		{Content: "same view"},
	}

	fullParticipation := collaborationScore(blocks, 2)
	halfParticipation := collaborationScore(blocks, 4)
	assert.Greater(t, fullParticipation, halfParticipation)
}

// ============================================================================
// Iterative Refinement Tests
// ============================================================================

func TestIterativeRefinement(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "use strategy alpha with caching", "", 0.7),
		"p2": position("p2", "use strategy alpha without caching", "", 0.6),
		"p3": position("p3", "completely different idea entirely", "", 0.5),
	}
	delib := testDeliberation(positions)

	insight, err := d.iterativeRefinement(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, insight.ContributingAgents)
	assert.Equal(t, consensus.LevelSimpleMajority, insight.ConsensusLevel)
	assert.InDelta(t, 0.6, insight.ConfidenceScore, 0.001)

	// Refinement works on copies; callers keep their original content.
	assert.Equal(t, "completely different idea entirely", positions["p3"].Content)
}

func TestDivergence(t *testing.T) {
	identical := map[string]*consensus.Position{
		"a": position("a", "same text", "", 0.8),
		"b": position("b", "same text", "", 0.8),
	}
	assert.InDelta(t, 0.0, divergence(identical), 0.001)

	disjoint := map[string]*consensus.Position{
		"a": position("a", "alpha beta", "", 0.8),
		"b": position("b", "gamma delta", "", 0.8),
	}
	assert.InDelta(t, 1.0, divergence(disjoint), 0.001)

	assert.Equal(t, 0.0, divergence(map[string]*consensus.Position{
		"solo": position("solo", "anything", "", 0.8),
	}))
}

// ============================================================================
// Conflict Resolution Strategy Tests
// ============================================================================

func TestConflictResolution_ResolvesAndLogs(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "implement rate limiting", "protects the backend", 0.9,
			"incident data from last quarter", "load test metrics"),
		"p2": position("p2", "avoid rate limiting", "adds latency", 0.8),
	}
	delib := testDeliberation(positions)

	insight, err := d.conflictResolution(context.Background(), delib, positions)
	require.NoError(t, err)

	require.Len(t, delib.ConflictLog, 1)
	assert.Equal(t, consensus.ConflictFactual, delib.ConflictLog[0].Type)
	assert.Equal(t, "conflict_resolution", insight.SynthesisMethod)

	// The weaker-evidence side was halved during resolution.
	assert.InDelta(t, 0.4, positions["p2"].Confidence, 0.001)
}

// ============================================================================
// Emergent Agreement Tests
// ============================================================================

func TestEmergentAgreement_FullConnectivity(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "converge on the proposal", "", 0.8),
		"p2": position("p2", "converge on the proposal", "", 0.7),
		"p3": position("p3", "converge on the proposal", "", 0.6),
	}
	delib := testDeliberation(positions)

	insight, err := d.emergentAgreement(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.Equal(t, consensus.LevelPlurality, insight.ConsensusLevel)
	// full agreement graph: 0.2 + 1.0*0.8
	assert.InDelta(t, 1.0, insight.ConfidenceScore, 0.001)
}

func TestEmergentAgreement_DisconnectedGraph(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "alpha beta gamma", "", 0.8),
		"p2": position("p2", "delta epsilon zeta", "", 0.7),
	}
	delib := testDeliberation(positions)

	insight, err := d.emergentAgreement(context.Background(), delib, positions)
	require.NoError(t, err)

	// no edges: confidence floors at 0.2
	assert.InDelta(t, 0.2, insight.ConfidenceScore, 0.001)
}

// ============================================================================
// Hybrid Adaptive Tests
// ============================================================================

func TestHybridAdaptive_TagsAppliedStrategies(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	positions := map[string]*consensus.Position{
		"p1": position("p1", "implement the migration", "tested plan", 0.9, "staging metrics"),
		"p2": position("p2", "avoid the migration", "too risky", 0.8),
	}
	delib := testDeliberation(positions)

	insight, err := d.hybridAdaptive(context.Background(), delib, positions)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(insight.SynthesisMethod, "hybrid_adaptive_("))
	assert.Contains(t, insight.SynthesisMethod, "conflict_resolution")
	assert.NotEmpty(t, delib.ConflictLog)
}

func TestHybridAdaptive_NoPositions(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)

	_, err := d.hybridAdaptive(context.Background(), testDeliberation(nil), nil)
	assert.Error(t, err)
}
