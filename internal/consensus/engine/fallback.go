package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"dev.helix.consensus/internal/consensus"
)

// fallbackConfidence is the confidence of the emergency sentinel insight.
const fallbackConfidence = 0.1

// fallbackConsensus degrades through three stages when a strategy fails or
// times out: a majority built from confident positions, then any single
// position at half confidence, then an explicit no-consensus sentinel. It
// never returns nil.
func (e *Engine) fallbackConsensus(positions map[string]*consensus.Position) *consensus.CollectiveInsight {
	confident := make([]*consensus.Position, 0, len(positions))
	for _, id := range sortedParticipants(positions) {
		if positions[id].Confidence > 0.5 {
			confident = append(confident, positions[id])
		}
	}

	if len(confident) > 0 {
		contributors := make([]string, 0, len(confident))
		contents := make([]string, 0, len(confident))
		total := 0.0
		for _, pos := range confident {
			contributors = append(contributors, pos.ParticipantID)
			contents = append(contents, pos.Content)
			total += pos.Confidence
		}

		return &consensus.CollectiveInsight{
			InsightID:          "fallback_" + uuid.NewString(),
			ContributingAgents: contributors,
			SynthesizedContent: strings.Join(contents, "\n\n"),
			ConsensusLevel:     consensus.LevelPlurality,
			ConfidenceScore:    consensus.ClampConfidence(total / float64(len(confident))),
			SynthesisMethod:    "fallback_consensus",
		}
	}

	if len(positions) > 0 {
		best := bestPosition(positions)
		return &consensus.CollectiveInsight{
			InsightID:          "ultimate_fallback_" + uuid.NewString(),
			ContributingAgents: []string{best.ParticipantID},
			SynthesizedContent: best.Content,
			ConsensusLevel:     consensus.LevelSpecialistOverride,
			ConfidenceScore:    consensus.ClampConfidence(best.Confidence * 0.5),
			SynthesisMethod:    "ultimate_fallback",
		}
	}

	return &consensus.CollectiveInsight{
		InsightID:          "emergency_fallback_" + uuid.NewString(),
		ContributingAgents: []string{},
		SynthesizedContent: "Unable to reach consensus - system emergency fallback",
		ConsensusLevel:     consensus.LevelSpecialistOverride,
		ConfidenceScore:    fallbackConfidence,
		SynthesisMethod:    "emergency_fallback",
	}
}

// bestPosition picks the highest-confidence position, breaking ties by
// participant id so the choice is deterministic.
func bestPosition(positions map[string]*consensus.Position) *consensus.Position {
	var best *consensus.Position
	for _, id := range sortedParticipants(positions) {
		pos := positions[id]
		if best == nil || pos.Confidence > best.Confidence {
			best = pos
		}
	}
	return best
}

func sortedParticipants(positions map[string]*consensus.Position) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
