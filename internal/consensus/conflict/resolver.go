package conflict

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
)

// DefaultMediatorID attributes merged hybrid positions when no mediator is
// configured.
const DefaultMediatorID = "queen_coordinator"

// Resolver applies type-specific resolution policy to detected conflicts,
// mutating the position map. Resolutions are applied in detection order, so
// later resolutions compose on top of earlier ones.
type Resolver struct {
	mediatorID string
	log        *logrus.Logger
}

// NewResolver creates a conflict resolver. The mediator identity is credited
// with hybrid positions produced by methodological merges.
func NewResolver(mediatorID string, log *logrus.Logger) *Resolver {
	if mediatorID == "" {
		mediatorID = DefaultMediatorID
	}
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{mediatorID: mediatorID, log: log}
}

// Resolve applies every conflict's resolution policy to the position map and
// returns the updated map. The input map is mutated; conflict records are
// retained by the caller for audit.
func (r *Resolver) Resolve(positions map[string]*consensus.Position, conflicts []consensus.ConflictRecord) map[string]*consensus.Position {
	if len(conflicts) == 0 {
		return positions
	}

	r.log.WithField("conflicts", len(conflicts)).Info("Resolving conflicts between participants")

	for _, c := range conflicts {
		a, okA := positions[c.ParticipantA]
		b, okB := positions[c.ParticipantB]
		if !okA || !okB {
			continue
		}

		switch c.Type {
		case consensus.ConflictFactual:
			r.resolveFactual(c, a, b)
		case consensus.ConflictPriority:
			r.resolvePriority(a, b)
		case consensus.ConflictMethodology:
			r.resolveMethodological(c, positions)
		case consensus.ConflictStrategic:
			r.resolveStrategic(a, b)
		}
	}

	return positions
}

// resolveFactual sides with the stronger evidence: the weaker side's
// confidence is halved, ties reduce both slightly.
func (r *Resolver) resolveFactual(c consensus.ConflictRecord, a, b *consensus.Position) {
	strengthA := float64(len(a.Evidence)) * a.Confidence
	strengthB := float64(len(b.Evidence)) * b.Confidence

	switch {
	case strengthA > strengthB:
		b.Confidence = consensus.ClampConfidence(b.Confidence * 0.5)
		b.Reasoning += fmt.Sprintf(" [Conflict resolved in favor of %s due to stronger evidence]", c.ParticipantA)
	case strengthB > strengthA:
		a.Confidence = consensus.ClampConfidence(a.Confidence * 0.5)
		a.Reasoning += fmt.Sprintf(" [Conflict resolved in favor of %s due to stronger evidence]", c.ParticipantB)
	default:
		a.Confidence = consensus.ClampConfidence(a.Confidence * 0.8)
		b.Confidence = consensus.ClampConfidence(b.Confidence * 0.8)
		a.Reasoning += " [Conflict detected - evidence equally strong]"
		b.Reasoning += " [Conflict detected - evidence equally strong]"
	}
}

// resolvePriority replaces both reasonings with a shared compromise text and
// discounts both confidences for the concession.
func (r *Resolver) resolvePriority(a, b *consensus.Position) {
	compromise := fmt.Sprintf("Priority consideration: %s | Alternative perspective: %s", a.Reasoning, b.Reasoning)

	a.Reasoning = compromise
	b.Reasoning = compromise
	a.Confidence = consensus.ClampConfidence(a.Confidence * 0.9)
	b.Confidence = consensus.ClampConfidence(b.Confidence * 0.9)
}

// resolveMethodological merges both positions into one hybrid position
// attributed to the mediator. Both map entries point at the shared hybrid, so
// the map may hold fewer distinct positions afterwards.
func (r *Resolver) resolveMethodological(c consensus.ConflictRecord, positions map[string]*consensus.Position) {
	a := positions[c.ParticipantA]
	b := positions[c.ParticipantB]

	hybrid := &consensus.Position{
		ParticipantID: r.mediatorID,
		Content: fmt.Sprintf("Integrated solution: %s + %s. This hybrid approach addresses multiple perspectives.",
			a.Content, b.Content),
		Reasoning: fmt.Sprintf("Hybrid approach combining %s with %s. This integrated methodology leverages strengths of both approaches.",
			a.Reasoning, b.Reasoning),
		Confidence: consensus.ClampConfidence((a.Confidence + b.Confidence) / 2 * 0.9),
		Evidence:   dedupeUnion(a.Evidence, b.Evidence),
		Timestamp:  time.Now(),
	}

	positions[c.ParticipantA] = hybrid
	positions[c.ParticipantB] = hybrid
}

// resolveStrategic rewrites both positions in place with a balanced
// synthesis; no identity merge takes place.
func (r *Resolver) resolveStrategic(a, b *consensus.Position) {
	balancedReasoning := fmt.Sprintf("Strategic balance: %s balanced with %s. This approach considers both strategic perspectives for optimal outcome.",
		a.Reasoning, b.Reasoning)
	balancedContent := fmt.Sprintf("Strategic synthesis: %s integrated with %s. Provides balanced approach considering multiple strategic factors.",
		a.Content, b.Content)

	a.Reasoning = balancedReasoning
	a.Content = balancedContent
	a.Confidence = consensus.ClampConfidence(a.Confidence * 0.85)

	b.Reasoning = balancedReasoning
	b.Content = balancedContent
	b.Confidence = consensus.ClampConfidence(b.Confidence * 0.85)
}

// dedupeUnion merges two evidence lists preserving first-seen order.
func dedupeUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	union := make([]string, 0, len(a)+len(b))
	for _, item := range append(append([]string{}, a...), b...) {
		if !seen[item] {
			seen[item] = true
			union = append(union, item)
		}
	}
	return union
}
