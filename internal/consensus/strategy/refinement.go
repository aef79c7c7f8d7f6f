package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"dev.helix.consensus/internal/consensus"
)

const (
	maxRefinementRounds = 3
	convergenceEpsilon  = 0.05
)

// iterativeRefinement progressively rewrites the most divergent position
// toward the group synthesis, stopping early on convergence.
func (d *Dispatcher) iterativeRefinement(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions to refine")
	}

	// Work on copies; refinement must not leak into the caller's positions.
	current := make(map[string]*consensus.Position, len(positions))
	for id, pos := range positions {
		current[id] = pos.Clone()
	}

	delib.AppendPhase(consensus.PhaseCrossValidation)
	delib.AppendPhase(consensus.PhaseNegotiation)

	previousDivergence := divergence(current)

	for round := 0; round < maxRefinementRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d.log.WithFields(map[string]any{
			"deliberation": delib.ID,
			"round":        round + 1,
		}).Debug("Iterative refinement round")

		best := d.bestRefinement(current)
		if best != nil {
			current[best.ParticipantID] = best
		}

		currentDivergence := divergence(current)
		if math.Abs(previousDivergence-currentDivergence) < convergenceEpsilon {
			d.log.WithField("round", round+1).Info("Refinement converged")
			break
		}
		previousDivergence = currentDivergence
	}

	delib.AppendPhase(consensus.PhaseSynthesis)

	ordered := make([]*consensus.Position, 0, len(current))
	for _, id := range sortedIDs(current) {
		ordered = append(ordered, current[id])
	}

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("iterative_refinement_%s", uuid.NewString()),
		ContributingAgents: sortedIDs(current),
		SynthesizedContent: d.synth.Synthesize(ordered),
		ConsensusLevel:     consensus.LevelSimpleMajority,
		ConfidenceScore:    consensus.ClampConfidence(meanConfidence(current)),
		SynthesisMethod:    string(consensus.StrategyIterativeRefinement),
	}, nil
}

// bestRefinement proposes rewriting each participant's content to the group
// synthesis and returns the proposal that most reduces divergence, or nil
// when no proposal helps.
func (d *Dispatcher) bestRefinement(positions map[string]*consensus.Position) *consensus.Position {
	ordered := make([]*consensus.Position, 0, len(positions))
	for _, id := range sortedIDs(positions) {
		ordered = append(ordered, positions[id])
	}
	groupContent := d.synth.Synthesize(ordered)

	baseline := divergence(positions)
	var best *consensus.Position
	bestDivergence := baseline

	for _, id := range sortedIDs(positions) {
		proposal := positions[id].Clone()
		proposal.Content = groupContent

		trial := make(map[string]*consensus.Position, len(positions))
		for pid, pos := range positions {
			trial[pid] = pos
		}
		trial[id] = proposal

		if dv := divergence(trial); dv < bestDivergence {
			bestDivergence = dv
			best = proposal
		}
	}

	return best
}

// divergence is one minus the mean pairwise content similarity.
func divergence(positions map[string]*consensus.Position) float64 {
	ids := sortedIDs(positions)
	if len(ids) < 2 {
		return 0
	}

	totalSimilarity := 0.0
	comparisons := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			totalSimilarity += consensus.TextSimilarity(positions[ids[i]].Content, positions[ids[j]].Content)
			comparisons++
		}
	}
	return 1.0 - totalSimilarity/float64(comparisons)
}

// conflictResolution detects and resolves conflicts, then builds consensus
// from the resolved positions via collaborative synthesis.
func (d *Dispatcher) conflictResolution(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	delib.AppendPhase(consensus.PhaseCrossValidation)

	conflicts := d.detector.Detect(positions)
	delib.ConflictLog = append(delib.ConflictLog, conflicts...)

	if len(conflicts) > 0 {
		delib.AppendPhase(consensus.PhaseNegotiation)
		positions = d.resolver.Resolve(positions, conflicts)
	}

	insight, err := d.collaborativeSynthesis(ctx, delib, positions)
	if err != nil {
		return nil, err
	}
	insight.SynthesisMethod = string(consensus.StrategyConflictResolution)
	return insight, nil
}
