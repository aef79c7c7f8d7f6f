package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Item Scoring Tests
// ============================================================================

func TestScoreItem_Empty(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, 0.0, e.ScoreItem(""))
}

func TestScoreItem_BaseAndLength(t *testing.T) {
	e := NewEvaluator()

	// 50 chars, no keywords: 0.5 + 0.5*0.2 = 0.6
	item := strings.Repeat("x", 50)
	assert.InDelta(t, 0.6, e.ScoreItem(item), 0.001)
}

func TestScoreItem_KeywordBonus(t *testing.T) {
	e := NewEvaluator()

	plain := "the outcome was positive overall in every case here"
	withKeyword := "the study outcome was positive overall in every case"

	assert.Greater(t, e.ScoreItem(withKeyword), e.ScoreItem(plain))
}

func TestScoreItem_CappedAtOne(t *testing.T) {
	e := NewEvaluator()

	item := strings.Repeat("data metric measurement specific example study research ", 10)
	assert.Equal(t, 1.0, e.ScoreItem(item))
}

func TestScoreItem_LongerScoresHigher(t *testing.T) {
	e := NewEvaluator()

	short := strings.Repeat("x", 10)
	long := strings.Repeat("x", 90)
	assert.Greater(t, e.ScoreItem(long), e.ScoreItem(short))
}

// ============================================================================
// Participant and Registry Tests
// ============================================================================

func TestScoreParticipant_EmptyListIsZero(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, 0.0, e.ScoreParticipant(nil))
	assert.Equal(t, 0.0, e.ScoreParticipant([]string{}))
}

func TestScoreParticipant_Mean(t *testing.T) {
	e := NewEvaluator()

	items := []string{"short", strings.Repeat("x", 100)}
	expected := (e.ScoreItem(items[0]) + e.ScoreItem(items[1])) / 2
	assert.InDelta(t, expected, e.ScoreParticipant(items), 0.001)
}

func TestScoreRegistry(t *testing.T) {
	e := NewEvaluator()

	registry := map[string][]string{
		"a": {"benchmark data shows a 40% improvement in throughput"},
		"b": {},
	}

	scores := e.ScoreRegistry(registry)
	assert.Greater(t, scores["a"], 0.5)
	assert.Equal(t, 0.0, scores["b"])
}

func TestMeanScore_EmptyRegistry(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, 0.0, e.MeanScore(nil))
	assert.Equal(t, 0.0, e.MeanScore(map[string][]string{}))
}
