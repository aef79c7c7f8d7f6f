package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dev.helix.consensus/internal/consensus"
)

const (
	maxEmergentRounds  = 5
	agreementThreshold = 0.3
)

// emergentAgreement lets consensus emerge: positions are nodes in an
// agreement graph (edges join sufficiently similar positions) and each round
// nudges every position toward its neighborhood consensus until stable.
func (d *Dispatcher) emergentAgreement(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions for emergent agreement")
	}

	ids := sortedIDs(positions)

	current := make(map[string]string, len(positions))
	for id, pos := range positions {
		current[id] = pos.Content
	}

	neighbors := agreementGraph(ids, current)

	delib.AppendPhase(consensus.PhaseNegotiation)

	for round := 0; round < maxEmergentRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make(map[string]string, len(current))
		for _, id := range ids {
			next[id] = neighborhoodConsensus(id, current, neighbors)
		}

		if stable(current, next) {
			d.log.WithField("round", round+1).Info("Emergent agreement stabilized")
			break
		}
		current = next
	}

	delib.AppendPhase(consensus.PhaseSynthesis)

	final := make([]*consensus.Position, 0, len(ids))
	for _, id := range ids {
		pos := positions[id].Clone()
		pos.Content = current[id]
		final = append(final, pos)
	}

	connectivity := graphConnectivity(ids, neighbors)

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("emergent_agreement_%s", uuid.NewString()),
		ContributingAgents: ids,
		SynthesizedContent: d.synth.Synthesize(final),
		ConsensusLevel:     consensus.LevelPlurality,
		ConfidenceScore:    consensus.ClampConfidence(0.2 + connectivity*0.8),
		SynthesisMethod:    string(consensus.StrategyEmergentAgreement),
	}, nil
}

// agreementGraph connects participants whose contents exceed the similarity
// threshold.
func agreementGraph(ids []string, contents map[string]string) map[string][]string {
	neighbors := make(map[string][]string, len(ids))
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if consensus.TextSimilarity(contents[ids[i]], contents[ids[j]]) > agreementThreshold {
				neighbors[ids[i]] = append(neighbors[ids[i]], ids[j])
				neighbors[ids[j]] = append(neighbors[ids[j]], ids[i])
			}
		}
	}
	return neighbors
}

// neighborhoodConsensus picks the most common content among a participant and
// its neighbors; the participant keeps its own content on a tie or when it
// has no neighbors.
func neighborhoodConsensus(id string, contents map[string]string, neighbors map[string][]string) string {
	peers := neighbors[id]
	if len(peers) == 0 {
		return contents[id]
	}

	counts := map[string]int{contents[id]: 1}
	for _, peer := range peers {
		counts[contents[peer]]++
	}

	best := contents[id]
	bestCount := counts[best]
	for _, peer := range peers {
		if counts[contents[peer]] > bestCount {
			best = contents[peer]
			bestCount = counts[best]
		}
	}
	return best
}

// stable reports whether no position changed between rounds.
func stable(previous, next map[string]string) bool {
	for id, content := range previous {
		if next[id] != content {
			return false
		}
	}
	return true
}

// graphConnectivity is the realized fraction of possible agreement edges.
func graphConnectivity(ids []string, neighbors map[string][]string) float64 {
	n := len(ids)
	if n < 2 {
		return 1.0
	}

	edges := 0
	for _, peers := range neighbors {
		edges += len(peers)
	}
	edges /= 2 // each edge counted from both ends

	maxEdges := n * (n - 1) / 2
	return float64(edges) / float64(maxEdges)
}
