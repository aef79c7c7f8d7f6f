package voting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create test votes
func createTestVotes(count int, choice string, confidence float64) []Vote {
	votes := make([]Vote, count)
	for i := 0; i < count; i++ {
		votes[i] = Vote{
			ParticipantID: fmt.Sprintf("agent-%d", i),
			Choice:        choice,
			Confidence:    confidence,
		}
	}
	return votes
}

// ============================================================================
// Ballot Tests
// ============================================================================

func TestBallotAdd(t *testing.T) {
	ballot := NewBallot()

	err := ballot.Add(Vote{ParticipantID: "agent-1", Choice: "option_a", Confidence: 0.8})
	assert.NoError(t, err)
	assert.Equal(t, 1, ballot.Count())
}

func TestBallotAdd_EmptyChoice(t *testing.T) {
	ballot := NewBallot()

	err := ballot.Add(Vote{ParticipantID: "agent-1", Choice: "", Confidence: 0.8})
	assert.Error(t, err)
}

func TestBallotAdd_InvalidConfidence(t *testing.T) {
	ballot := NewBallot()

	err := ballot.Add(Vote{ParticipantID: "agent-1", Choice: "option_a", Confidence: 1.5})
	assert.Error(t, err)
}

func TestBallotAdd_ReplacesPriorVote(t *testing.T) {
	ballot := NewBallot()

	require.NoError(t, ballot.Add(Vote{ParticipantID: "agent-1", Choice: "option_a", Confidence: 0.8}))
	require.NoError(t, ballot.Add(Vote{ParticipantID: "agent-1", Choice: "option_b", Confidence: 0.9}))

	assert.Equal(t, 1, ballot.Count())
	assert.Equal(t, "option_b", ballot.Votes()[0].Choice)
}

// ============================================================================
// Majority Variant Tests
// ============================================================================

func TestSimpleMajority_Passes(t *testing.T) {
	votes := createTestVotes(3, "option_a", 0.8)
	votes = append(votes, Vote{ParticipantID: "agent-x", Choice: "option_b", Confidence: 0.7})

	result, err := SimpleMajority(votes)
	require.NoError(t, err)

	assert.Equal(t, "option_a", result.WinningChoice)
	assert.True(t, result.Passed)
	assert.Equal(t, 4, result.TotalVotes)
}

func TestSimpleMajority_ExactHalfFails(t *testing.T) {
	votes := []Vote{
		{ParticipantID: "a", Choice: "option_a", Confidence: 0.8},
		{ParticipantID: "b", Choice: "option_b", Confidence: 0.8},
	}

	result, err := SimpleMajority(votes)
	require.NoError(t, err)

	// 50% share does not exceed the strict threshold.
	assert.False(t, result.Passed)
}

func TestSimpleMajority_NoVotes(t *testing.T) {
	_, err := SimpleMajority(nil)
	assert.Error(t, err)
}

func TestSuperMajority(t *testing.T) {
	votes := createTestVotes(2, "option_a", 0.8)
	votes = append(votes, Vote{ParticipantID: "agent-x", Choice: "option_b", Confidence: 0.7})

	result, err := SuperMajority(votes)
	require.NoError(t, err)

	// 2/3 share meets the inclusive threshold.
	assert.True(t, result.Passed)
	assert.InDelta(t, 2.0/3.0, result.Consensus, 0.001)
}

func TestQualifiedMajority_FailsBelowThreeQuarters(t *testing.T) {
	votes := createTestVotes(2, "option_a", 0.8)
	votes = append(votes, Vote{ParticipantID: "agent-x", Choice: "option_b", Confidence: 0.7})

	result, err := QualifiedMajority(votes)
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

func TestUnanimous(t *testing.T) {
	votes := createTestVotes(4, "option_a", 0.9)

	result, err := Unanimous(votes)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	votes = append(votes, Vote{ParticipantID: "agent-x", Choice: "option_b", Confidence: 0.9})
	result, err = Unanimous(votes)
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

// ============================================================================
// Weighted Consensus Tests
// ============================================================================

func TestWeightedConsensus(t *testing.T) {
	votes := []Vote{
		{ParticipantID: "a", Choice: "option_a", Confidence: 0.9, Weight: 0.9},
		{ParticipantID: "b", Choice: "option_a", Confidence: 0.8, Weight: 0.8},
		{ParticipantID: "c", Choice: "option_b", Confidence: 0.7, Weight: 0.3},
	}

	result, err := WeightedConsensus(votes)
	require.NoError(t, err)

	assert.Equal(t, "option_a", result.WinningChoice)
	assert.True(t, result.Passed)
	assert.InDelta(t, 1.7, result.WinningScore, 0.001)
}

func TestWeightedConsensus_FallsBackToConfidence(t *testing.T) {
	votes := []Vote{
		{ParticipantID: "a", Choice: "option_a", Confidence: 0.9},
		{ParticipantID: "b", Choice: "option_b", Confidence: 0.2},
	}

	result, err := WeightedConsensus(votes)
	require.NoError(t, err)

	assert.Equal(t, "option_a", result.WinningChoice)
	assert.InDelta(t, 0.9, result.WinningScore, 0.001)
}

// ============================================================================
// Ranked Method Tests
// ============================================================================

func TestBordaCount(t *testing.T) {
	rankings := map[string][]string{
		"a": {"x", "y", "z"},
		"b": {"x", "z", "y"},
		"c": {"y", "x", "z"},
	}

	result, err := BordaCount(rankings)
	require.NoError(t, err)

	// x: 2+2+1=5, y: 1+0+2=3, z: 0+1+0=1
	assert.Equal(t, "x", result.WinningChoice)
	assert.Equal(t, 5.0, result.WinningScore)
}

func TestBordaCount_SingleCandidate(t *testing.T) {
	// One candidate across one ranking scores 0 points yet still wins.
	rankings := map[string][]string{
		"a": {"x"},
	}

	result, err := BordaCount(rankings)
	require.NoError(t, err)

	assert.Equal(t, "x", result.WinningChoice)
	assert.Equal(t, 0.0, result.WinningScore)
	assert.True(t, result.Passed)
}

func TestCondorcet_ClearWinner(t *testing.T) {
	rankings := map[string][]string{
		"a": {"x", "y", "z"},
		"b": {"x", "z", "y"},
		"c": {"y", "x", "z"},
	}

	result, err := Condorcet(rankings)
	require.NoError(t, err)

	assert.Equal(t, "x", result.WinningChoice)
	assert.True(t, result.Passed)
	assert.Equal(t, 1.0, result.Consensus)
}

func TestCondorcet_CycleFallsBackToBorda(t *testing.T) {
	// Classic rock-paper-scissors preference cycle.
	rankings := map[string][]string{
		"a": {"x", "y", "z"},
		"b": {"y", "z", "x"},
		"c": {"z", "x", "y"},
	}

	result, err := Condorcet(rankings)
	require.NoError(t, err)

	// Method stays condorcet even on the Borda fallback path.
	assert.Equal(t, "condorcet", string(result.Method))
	assert.NotEmpty(t, result.WinningChoice)
}

func TestApproval(t *testing.T) {
	approvals := map[string][]string{
		"a": {"x", "y"},
		"b": {"x"},
		"c": {"y", "z"},
	}

	result, err := Approval(approvals)
	require.NoError(t, err)

	// x and y tie at 2 approvals; the lexicographically smaller choice wins.
	assert.Equal(t, "x", result.WinningChoice)
	assert.Equal(t, 2, result.ChoiceVoteCounts["x"])
	assert.Equal(t, 3, result.TotalVotes)
}

// ============================================================================
// Determinism Tests
// ============================================================================

func TestArgmax_TieBreaksLexicographically(t *testing.T) {
	votes := []Vote{
		{ParticipantID: "a", Choice: "zebra", Confidence: 0.8},
		{ParticipantID: "b", Choice: "apple", Confidence: 0.8},
	}

	for i := 0; i < 10; i++ {
		result, err := SimpleMajority(votes)
		require.NoError(t, err)
		assert.Equal(t, "apple", result.WinningChoice)
	}
}
