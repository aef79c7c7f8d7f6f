package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dev.helix.consensus/internal/consensus"
)

// weightedVoting combines specialist authority, evidence quality, and
// confidence into per-participant weights and synthesizes the weighted
// positions.
func (d *Dispatcher) weightedVoting(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions to vote on")
	}

	delib.AppendPhase(consensus.PhaseEvidencePresentation)
	evidenceScores := d.evidenceScores(positions)

	weights := make(map[string]float64, len(positions))
	for id, pos := range positions {
		weights[id] = d.registry.Authority(id)*0.4 + evidenceScores[id]*0.3 + pos.Confidence*0.3
	}

	// Normalize weights to sum to 1.
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight > 0 {
		for id := range weights {
			weights[id] /= totalWeight
		}
	}

	delib.AppendPhase(consensus.PhaseSynthesis)

	weighted := make([]consensus.WeightedPosition, 0, len(positions))
	contributors := make([]string, 0, len(positions))
	for _, id := range sortedIDs(positions) {
		if weights[id] > 0 {
			weighted = append(weighted, consensus.WeightedPosition{Position: positions[id], Weight: weights[id]})
			contributors = append(contributors, id)
		}
	}
	if len(weighted) == 0 {
		return nil, fmt.Errorf("all voting weights are zero")
	}

	confidence := consensus.ClampConfidence(meanConfidence(positions) * 1.1)

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("weighted_voting_%s", uuid.NewString()),
		ContributingAgents: contributors,
		SynthesizedContent: consensus.SynthesizeWeighted(weighted),
		ConsensusLevel:     levelFromWeights(weights, len(positions)),
		ConfidenceScore:    confidence,
		SynthesisMethod:    string(consensus.StrategyWeightedVoting),
	}, nil
}

// levelFromWeights grades the consensus by weight dominance first, then by
// participant coverage.
func levelFromWeights(weights map[string]float64, totalParticipants int) consensus.ConsensusLevel {
	if len(weights) == 0 {
		return consensus.LevelPlurality
	}

	maxWeight := 0.0
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
		if w > maxWeight {
			maxWeight = w
		}
	}

	dominance := 0.0
	if totalWeight > 0 {
		dominance = maxWeight / totalWeight
	}

	coverage := float64(len(weights)) / float64(totalParticipants)

	switch {
	case dominance > 0.7:
		return consensus.LevelSpecialistOverride
	case dominance > 0.5:
		return consensus.LevelSuperMajority
	case coverage >= 0.7:
		return consensus.LevelStrongMajority
	case coverage >= 0.6:
		return consensus.LevelSimpleMajority
	default:
		return consensus.LevelPlurality
	}
}

// specialistAuthority lets the best-matching domain specialist lead, with
// high-confidence participants in support.
func (d *Dispatcher) specialistAuthority(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	leadID := d.leadSpecialist(delib.Task, positions)
	lead, ok := positions[leadID]
	if !ok {
		// No registered specialist holds a position; weighted voting decides.
		return d.weightedVoting(ctx, delib, positions)
	}

	delib.AppendPhase(consensus.PhaseSynthesis)

	contributors := []string{leadID}
	supportParts := []string{}
	for _, id := range sortedIDs(positions) {
		if id == leadID {
			continue
		}
		if positions[id].Confidence > 0.6 {
			contributors = append(contributors, id)
			supportParts = append(supportParts, fmt.Sprintf("**%s**: %s", id, positions[id].Content))
		}
	}

	var dissent []consensus.ConflictingView
	for _, id := range sortedIDs(positions) {
		if id != leadID && positions[id].Confidence < 0.4 {
			dissent = append(dissent, consensus.ConflictingView{ParticipantID: id, Content: positions[id].Content})
		}
	}

	parts := []string{
		fmt.Sprintf("## %s Leadership", titleWords(leadID)),
		"",
		fmt.Sprintf("**Primary Direction**: %s", lead.Content),
		fmt.Sprintf("**Reasoning**: %s", lead.Reasoning),
	}
	if len(supportParts) > 0 {
		parts = append(parts, "", "### Supporting Specialist Insights:")
		parts = append(parts, supportParts...)
	}

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("specialist_authority_%s", uuid.NewString()),
		ContributingAgents: contributors,
		SynthesizedContent: strings.Join(parts, "\n"),
		ConsensusLevel:     consensus.LevelSpecialistOverride,
		ConfidenceScore:    consensus.ClampConfidence(lead.Confidence * 0.9),
		ConflictingViews:   dissent,
		SynthesisMethod:    string(consensus.StrategySpecialistAuthority),
	}, nil
}

// titleWords turns a snake_case participant id into a display heading.
func titleWords(id string) string {
	words := strings.Split(id, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// leadSpecialist picks the participant maximizing domain-keyword hits in the
// task description scaled by confidence, defaulting to the coordinator.
func (d *Dispatcher) leadSpecialist(task *consensus.Task, positions map[string]*consensus.Position) string {
	description := ""
	if task != nil {
		description = strings.ToLower(task.Description)
	}

	bestID := ""
	bestScore := 0.0
	for _, id := range sortedIDs(positions) {
		hits := 0
		for _, keyword := range d.registry.DomainKeywords(id) {
			if strings.Contains(description, keyword) {
				hits++
			}
		}
		score := float64(hits) * positions[id].Confidence
		if score > bestScore {
			bestScore = score
			bestID = id
		}
	}

	if bestID == "" {
		return d.resolverMediator()
	}
	return bestID
}

// evidenceBased filters for strong evidence and synthesizes weighted by
// evidence score.
func (d *Dispatcher) evidenceBased(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	delib.AppendPhase(consensus.PhaseEvidencePresentation)
	evidenceScores := d.evidenceScores(positions)

	qualified := make([]consensus.WeightedPosition, 0, len(positions))
	contributors := make([]string, 0, len(positions))
	for _, id := range sortedIDs(positions) {
		if evidenceScores[id] > 0.6 {
			qualified = append(qualified, consensus.WeightedPosition{Position: positions[id], Weight: evidenceScores[id]})
			contributors = append(contributors, id)
		}
	}
	if len(qualified) == 0 {
		return d.weightedVoting(ctx, delib, positions)
	}

	delib.AppendPhase(consensus.PhaseSynthesis)

	meanScore := 0.0
	for _, score := range evidenceScores {
		meanScore += score
	}
	meanScore /= float64(len(evidenceScores))

	level := consensus.LevelStrongMajority
	if len(qualified) >= 7 {
		level = consensus.LevelSuperMajority
	}

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("evidence_based_%s", uuid.NewString()),
		ContributingAgents: contributors,
		SynthesizedContent: consensus.SynthesizeWeighted(qualified),
		ConsensusLevel:     level,
		ConfidenceScore:    consensus.ClampConfidence(meanScore * 1.2),
		SynthesisMethod:    string(consensus.StrategyEvidenceBased),
	}, nil
}

// collaborativeSynthesis builds a joint solution from participants with
// meaningful confidence.
func (d *Dispatcher) collaborativeSynthesis(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error) {
	blocks := make([]*consensus.Position, 0, len(positions))
	contributors := make([]string, 0, len(positions))
	for _, id := range sortedIDs(positions) {
		if positions[id].Confidence > 0.5 {
			blocks = append(blocks, positions[id])
			contributors = append(contributors, id)
		}
	}
	if len(blocks) == 0 {
		return d.weightedVoting(ctx, delib, positions)
	}

	delib.AppendPhase(consensus.PhaseNegotiation)
	delib.AppendPhase(consensus.PhaseSynthesis)

	collaboration := collaborationScore(blocks, len(positions))

	blockConfidence := 0.0
	for _, block := range blocks {
		blockConfidence += block.Confidence
	}
	blockConfidence /= float64(len(blocks))

	return &consensus.CollectiveInsight{
		InsightID:          fmt.Sprintf("collaborative_synthesis_%s", uuid.NewString()),
		ContributingAgents: contributors,
		SynthesizedContent: d.synth.Synthesize(blocks),
		ConsensusLevel:     consensus.LevelStrongMajority,
		ConfidenceScore:    consensus.ClampConfidence(collaboration*0.9 + blockConfidence*0.1),
		SynthesisMethod:    string(consensus.StrategyCollaborativeSynthesis),
	}, nil
}

// collaborationScore blends participation rate with mean pairwise content
// overlap. It is monotonic in both.
func collaborationScore(blocks []*consensus.Position, totalParticipants int) float64 {
	if totalParticipants == 0 {
		return 0
	}
	participation := float64(len(blocks)) / float64(totalParticipants)

	overlap := 1.0
	if len(blocks) >= 2 {
		totalSimilarity := 0.0
		comparisons := 0
		for i := 0; i < len(blocks); i++ {
			for j := i + 1; j < len(blocks); j++ {
				totalSimilarity += consensus.TextSimilarity(blocks[i].Content, blocks[j].Content)
				comparisons++
			}
		}
		overlap = totalSimilarity / float64(comparisons)
	}

	return consensus.ClampConfidence(participation*0.6 + overlap*0.4)
}

// resolverMediator exposes the mediator identity used for coordination
// defaults.
func (d *Dispatcher) resolverMediator() string {
	ids := d.registry.IDs()
	for _, id := range ids {
		if id == "queen_coordinator" {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return "queen_coordinator"
}
