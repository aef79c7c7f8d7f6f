package strategy

import (
	"context"
	"fmt"
	"strings"

	"dev.helix.consensus/internal/consensus"
)

// hybridAdaptive chains sub-strategies: conflict resolution when conflicts
// are present, then evidence-based and collaborative synthesis with
// early-return thresholds, and weighted voting as the guaranteed fallback.
// The synthesis-method tag records every sub-strategy that ran.
func (d *Dispatcher) hybridAdaptive(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions for hybrid consensus")
	}

	land := d.Analyze(positions)
	applied := make([]string, 0, 4)

	if land.ConflictCount > 0 {
		d.log.WithField("conflicts", land.ConflictCount).Info("Hybrid: applying conflict resolution")
		// Resolution mutates the position map in place; later sub-strategies
		// operate on the resolved positions.
		if _, err := d.conflictResolution(ctx, delib, positions); err == nil {
			applied = append(applied, string(consensus.StrategyConflictResolution))
		}
	}

	evidenceResult, err := d.evidenceBased(ctx, delib, positions)
	if err == nil {
		applied = append(applied, string(consensus.StrategyEvidenceBased))
		if evidenceResult.ConfidenceScore > 0.8 {
			evidenceResult.SynthesisMethod = hybridTag(applied)
			return evidenceResult, nil
		}
	}

	collabResult, err := d.collaborativeSynthesis(ctx, delib, positions)
	if err == nil {
		applied = append(applied, string(consensus.StrategyCollaborativeSynthesis))
		if collabResult.ConfidenceScore > 0.7 {
			collabResult.SynthesisMethod = hybridTag(applied)
			return collabResult, nil
		}
	}

	final, err := d.weightedVoting(ctx, delib, positions)
	if err != nil {
		return nil, err
	}
	applied = append(applied, string(consensus.StrategyWeightedVoting))
	final.SynthesisMethod = hybridTag(applied)
	return final, nil
}

func hybridTag(applied []string) string {
	return fmt.Sprintf("hybrid_adaptive_(%s)", strings.Join(applied, "+"))
}
