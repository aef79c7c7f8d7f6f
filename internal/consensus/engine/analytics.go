package engine

import (
	"context"

	"dev.helix.consensus/internal/consensus"
)

// Analytics summarizes recent deliberation history.
type Analytics struct {
	TotalDeliberations    int            `json:"total_deliberations"`
	ActiveDeliberations   int            `json:"active_deliberations"`
	StrategyDistribution  map[string]int `json:"strategy_distribution"`
	ConsensusDistribution map[string]int `json:"consensus_distribution"`
	AverageConfidence     float64        `json:"average_confidence"`
	AverageDuration       float64        `json:"average_duration_seconds"`
	AverageConflicts      float64        `json:"average_conflicts"`
	LearnedPatterns       int            `json:"learned_patterns"`
	Window                int            `json:"window"`
}

// Analytics reports aggregate statistics over the configured window of
// recent deliberations plus current in-flight state.
func (e *Engine) Analytics(ctx context.Context) (*Analytics, error) {
	total, err := e.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := e.store.Recent(ctx, e.config.AnalyticsWindow)
	if err != nil {
		return nil, err
	}

	analytics := &Analytics{
		TotalDeliberations:    total,
		ActiveDeliberations:   e.ActiveCount(),
		StrategyDistribution:  make(map[string]int),
		ConsensusDistribution: make(map[string]int),
		LearnedPatterns:       e.learning.PatternCount(),
		Window:                e.config.AnalyticsWindow,
	}

	if len(recent) == 0 {
		return analytics, nil
	}

	confidenceTotal := 0.0
	insightCount := 0
	durationTotal := 0.0
	conflictTotal := 0.0
	for _, delib := range recent {
		analytics.StrategyDistribution[string(delib.Strategy)]++
		if delib.FinalInsight != nil {
			analytics.ConsensusDistribution[string(delib.FinalInsight.ConsensusLevel)]++
			confidenceTotal += delib.FinalInsight.ConfidenceScore
			insightCount++
		}
		durationTotal += delib.EndedAt.Sub(delib.StartedAt).Seconds()
		conflictTotal += float64(len(delib.ConflictLog))
	}

	n := float64(len(recent))
	// Confidence averages over deliberations that produced an insight, not
	// over the whole window.
	if insightCount > 0 {
		analytics.AverageConfidence = confidenceTotal / float64(insightCount)
	}
	analytics.AverageDuration = durationTotal / n
	analytics.AverageConflicts = conflictTotal / n

	return analytics, nil
}

// SuggestStrategy returns the learned optimal strategy for a deliberation of
// the given shape, falling back to landscape analysis when no comparable
// history exists.
func (e *Engine) SuggestStrategy(positions map[string]*consensus.Position) consensus.ConsensusStrategy {
	land := e.dispatcher.Analyze(positions)
	if learned, ok := e.learning.OptimalStrategy(len(positions), land.ConflictCount); ok {
		return learned
	}
	return land.RecommendedStrategy
}
