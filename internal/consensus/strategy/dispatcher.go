// Package strategy implements the eight consensus-building strategies and
// the landscape-driven dispatcher that selects between them. Strategies
// consume the conflict detector/resolver, the evidence evaluator, and the
// voting package, and every strategy fails soft to weighted voting on the
// unfiltered position set.
package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
	"dev.helix.consensus/internal/consensus/conflict"
	"dev.helix.consensus/internal/consensus/evidence"
	"dev.helix.consensus/internal/consensus/participant"
)

// strategyFunc executes one consensus strategy over a deliberation.
type strategyFunc func(ctx context.Context, delib *consensus.Deliberation, positions map[string]*consensus.Position) (*consensus.CollectiveInsight, error)

// Dispatcher selects and runs consensus strategies. The dispatch table is
// closed: it covers exactly the strategies in consensus.AllStrategies.
type Dispatcher struct {
	detector  *conflict.Detector
	resolver  *conflict.Resolver
	evaluator *evidence.Evaluator
	registry  *participant.Registry
	synth     consensus.Synthesizer
	log       *logrus.Logger

	table map[consensus.ConsensusStrategy]strategyFunc
}

// NewDispatcher creates a strategy dispatcher. A nil synthesizer falls back
// to the default text synthesizer; a nil registry gets the default role
// table.
func NewDispatcher(registry *participant.Registry, synth consensus.Synthesizer, log *logrus.Logger) *Dispatcher {
	if registry == nil {
		registry = participant.NewRegistry()
	}
	if synth == nil {
		synth = consensus.NewTextSynthesizer()
	}
	if log == nil {
		log = logrus.New()
	}

	d := &Dispatcher{
		detector:  conflict.NewDetector(),
		resolver:  conflict.NewResolver(participant.CoordinatorRole, log),
		evaluator: evidence.NewEvaluator(),
		registry:  registry,
		synth:     synth,
		log:       log,
	}

	d.table = map[consensus.ConsensusStrategy]strategyFunc{
		consensus.StrategyWeightedVoting:         d.weightedVoting,
		consensus.StrategySpecialistAuthority:    d.specialistAuthority,
		consensus.StrategyEvidenceBased:          d.evidenceBased,
		consensus.StrategyCollaborativeSynthesis: d.collaborativeSynthesis,
		consensus.StrategyIterativeRefinement:    d.iterativeRefinement,
		consensus.StrategyConflictResolution:     d.conflictResolution,
		consensus.StrategyEmergentAgreement:      d.emergentAgreement,
		consensus.StrategyHybridAdaptive:         d.hybridAdaptive,
	}

	return d
}

// Execute runs the named strategy over the deliberation's positions.
func (d *Dispatcher) Execute(ctx context.Context, strategy consensus.ConsensusStrategy, delib *consensus.Deliberation) (*consensus.CollectiveInsight, error) {
	fn, ok := d.table[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown consensus strategy: %s", strategy)
	}

	d.log.WithFields(logrus.Fields{
		"deliberation": delib.ID,
		"strategy":     strategy,
	}).Info("Executing consensus strategy")

	insight, err := fn(ctx, delib, delib.Positions)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed: %w", strategy, err)
	}
	return insight, nil
}

// Landscape summarizes the agreement/conflict/evidence structure of a
// position set. The dispatcher selects a strategy and voting method from it.
type Landscape struct {
	AgreementScore      float64                     `json:"agreement_score"`
	ConfidenceVariance  float64                     `json:"confidence_variance"`
	MeanConfidence      float64                     `json:"avg_confidence"`
	ConflictCount       int                         `json:"conflicts_detected"`
	EvidenceQuality     float64                     `json:"evidence_quality"`
	RecommendedStrategy consensus.ConsensusStrategy `json:"recommended_strategy"`
	RecommendedVoting   consensus.VotingMethod      `json:"recommended_voting"`
}

// Analyze computes the consensus landscape and the recommended strategy and
// voting method. Selection is first-match-wins:
//
//  1. agreement > 0.8 and no conflicts  -> weighted voting
//  2. evidence quality > 0.7            -> evidence based
//  3. more than 3 conflicts             -> conflict resolution
//  4. mean confidence < 0.6             -> iterative refinement
//  5. otherwise                         -> hybrid adaptive
func (d *Dispatcher) Analyze(positions map[string]*consensus.Position) *Landscape {
	land := &Landscape{
		AgreementScore: d.agreementScore(positions),
	}

	total := 0.0
	for _, pos := range positions {
		total += pos.Confidence
	}
	if len(positions) > 0 {
		land.MeanConfidence = total / float64(len(positions))
	}

	varianceSum := 0.0
	for _, pos := range positions {
		diff := pos.Confidence - land.MeanConfidence
		varianceSum += diff * diff
	}
	if len(positions) > 0 {
		land.ConfidenceVariance = varianceSum / float64(len(positions))
	}

	land.ConflictCount = len(d.detector.Detect(positions))

	registry := make(map[string][]string, len(positions))
	for id, pos := range positions {
		registry[id] = pos.Evidence
	}
	land.EvidenceQuality = d.evaluator.MeanScore(registry)

	switch {
	case land.AgreementScore > 0.8 && land.ConflictCount == 0:
		land.RecommendedStrategy = consensus.StrategyWeightedVoting
		land.RecommendedVoting = consensus.VoteWeightedConsensus
	case land.EvidenceQuality > 0.7:
		land.RecommendedStrategy = consensus.StrategyEvidenceBased
		land.RecommendedVoting = consensus.VoteBordaCount
	case land.ConflictCount > 3:
		land.RecommendedStrategy = consensus.StrategyConflictResolution
		land.RecommendedVoting = consensus.VoteSuperMajority
	case land.MeanConfidence < 0.6:
		land.RecommendedStrategy = consensus.StrategyIterativeRefinement
		land.RecommendedVoting = consensus.VoteApproval
	default:
		land.RecommendedStrategy = consensus.StrategyHybridAdaptive
		land.RecommendedVoting = consensus.VoteWeightedConsensus
	}

	return land
}

// agreementScore is the mean pairwise Jaccard similarity of position
// contents. Fewer than two positions count as full agreement.
func (d *Dispatcher) agreementScore(positions map[string]*consensus.Position) float64 {
	contents := make([]string, 0, len(positions))
	for _, pos := range positions {
		contents = append(contents, pos.Content)
	}

	if len(contents) < 2 {
		return 1.0
	}

	totalSimilarity := 0.0
	comparisons := 0
	for i := 0; i < len(contents); i++ {
		for j := i + 1; j < len(contents); j++ {
			totalSimilarity += consensus.TextSimilarity(contents[i], contents[j])
			comparisons++
		}
	}
	return totalSimilarity / float64(comparisons)
}

// evidenceScores computes per-participant evidence quality for a position
// map.
func (d *Dispatcher) evidenceScores(positions map[string]*consensus.Position) map[string]float64 {
	registry := make(map[string][]string, len(positions))
	for id, pos := range positions {
		registry[id] = pos.Evidence
	}
	return d.evaluator.ScoreRegistry(registry)
}

// meanConfidence averages position confidences, 0 for an empty map.
func meanConfidence(positions map[string]*consensus.Position) float64 {
	if len(positions) == 0 {
		return 0
	}
	total := 0.0
	for _, pos := range positions {
		total += pos.Confidence
	}
	return total / float64(len(positions))
}

// sortedIDs returns position keys in deterministic order.
func sortedIDs(positions map[string]*consensus.Position) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
