// Package quality validates the quality of an achieved consensus and
// amplifies weak results through a cross-validation confidence boost.
package quality

import (
	"strings"

	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
	"dev.helix.consensus/internal/consensus/evidence"
)

// AmplificationThreshold is the overall score under which amplification
// applies.
const AmplificationThreshold = 0.8

// amplifiedSuffix tags insights that already went through amplification, so
// a repeated pass is a no-op.
const amplifiedSuffix = "_amplified"

// validationConfidence is the fixed confidence of each contributor's
// post-consensus validation opinion.
const validationConfidence = 0.8

// Validator scores consensus quality and applies amplification.
type Validator struct {
	evaluator *evidence.Evaluator
	log       *logrus.Logger
}

// NewValidator creates a quality validator.
func NewValidator(log *logrus.Logger) *Validator {
	if log == nil {
		log = logrus.New()
	}
	return &Validator{evaluator: evidence.NewEvaluator(), log: log}
}

// Validate computes the quality metrics of an insight within its
// deliberation. required is the number of participants the task asked for;
// when zero, the deliberation's position count is used.
func (v *Validator) Validate(insight *consensus.CollectiveInsight, delib *consensus.Deliberation, required int) map[string]float64 {
	if required <= 0 {
		required = len(delib.Positions)
	}

	participation := 0.0
	conflictResolutionRate := 0.0
	if required > 0 {
		participation = float64(len(insight.ContributingAgents)) / float64(required)
		conflictResolutionRate = 1.0 - float64(len(delib.ConflictLog))/float64(required)
	}
	if conflictResolutionRate < 0 {
		conflictResolutionRate = 0
	}

	evidenceQuality := v.evaluator.MeanScore(delib.EvidenceRegistry)

	overall := participation*0.3 +
		insight.ConfidenceScore*0.3 +
		conflictResolutionRate*0.2 +
		evidenceQuality*0.2

	return map[string]float64{
		"participation_rate":       participation,
		"conflict_resolution_rate": conflictResolutionRate,
		"evidence_quality":         evidenceQuality,
		"confidence_score":         insight.ConfidenceScore,
		"overall_score":            overall,
	}
}

// Amplify boosts a weak insight's confidence by up to 10%, proportional to
// the mean of one fixed-confidence validation opinion per contributor. The
// boost applies at most once: an already-amplified insight is returned
// unchanged.
func (v *Validator) Amplify(insight *consensus.CollectiveInsight, metrics map[string]float64) *consensus.CollectiveInsight {
	if strings.HasSuffix(insight.SynthesisMethod, amplifiedSuffix) {
		return insight
	}
	if metrics["overall_score"] >= AmplificationThreshold {
		return insight
	}
	if len(insight.ContributingAgents) == 0 {
		return insight
	}

	// Each contributor validates at fixed confidence; the mean of identical
	// opinions is that same value.
	total := 0.0
	for range insight.ContributingAgents {
		total += validationConfidence
	}
	validationMean := total / float64(len(insight.ContributingAgents))

	amplified := *insight
	amplified.InsightID = "amplified_" + insight.InsightID
	amplified.ConfidenceScore = consensus.ClampConfidence(insight.ConfidenceScore * (1 + validationMean*0.1))
	amplified.SynthesisMethod = insight.SynthesisMethod + amplifiedSuffix

	v.log.WithFields(logrus.Fields{
		"insight":    insight.InsightID,
		"confidence": insight.ConfidenceScore,
		"amplified":  amplified.ConfidenceScore,
	}).Info("Consensus quality amplified")

	return &amplified
}
