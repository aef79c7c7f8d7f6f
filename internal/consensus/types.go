package consensus

import (
	"time"
)

// ConsensusStrategy identifies a strategy for reaching agreement.
type ConsensusStrategy string

const (
	StrategyWeightedVoting         ConsensusStrategy = "weighted_voting"         // Weighted voting based on expertise
	StrategySpecialistAuthority    ConsensusStrategy = "specialist_authority"    // Domain specialist decides
	StrategyEvidenceBased          ConsensusStrategy = "evidence_based"          // Decisions based on evidence strength
	StrategyCollaborativeSynthesis ConsensusStrategy = "collaborative_synthesis" // Joint creation of solution
	StrategyIterativeRefinement    ConsensusStrategy = "iterative_refinement"    // Iterative improvement toward agreement
	StrategyConflictResolution     ConsensusStrategy = "conflict_resolution"     // Active conflict resolution
	StrategyEmergentAgreement      ConsensusStrategy = "emergent_agreement"      // Natural emergence of consensus
	StrategyHybridAdaptive         ConsensusStrategy = "hybrid_adaptive"         // Adaptive combination of strategies
)

// AllStrategies lists every supported strategy. The dispatch table in the
// strategy package must cover exactly this set.
func AllStrategies() []ConsensusStrategy {
	return []ConsensusStrategy{
		StrategyWeightedVoting,
		StrategySpecialistAuthority,
		StrategyEvidenceBased,
		StrategyCollaborativeSynthesis,
		StrategyIterativeRefinement,
		StrategyConflictResolution,
		StrategyEmergentAgreement,
		StrategyHybridAdaptive,
	}
}

// VotingMethod identifies a vote aggregation method.
type VotingMethod string

const (
	VoteSimpleMajority    VotingMethod = "simple_majority"    // 50% + 1 vote
	VoteSuperMajority     VotingMethod = "super_majority"     // 2/3 majority
	VoteQualifiedMajority VotingMethod = "qualified_majority" // 3/4 majority
	VoteUnanimous         VotingMethod = "unanimous"          // All participants agree
	VoteWeightedConsensus VotingMethod = "weighted_consensus" // Weighted by expertise
	VoteCondorcet         VotingMethod = "condorcet"          // Pairwise comparison
	VoteBordaCount        VotingMethod = "borda_count"        // Ranked preference scoring
	VoteApproval          VotingMethod = "approval_voting"    // Approve multiple options
)

// ConflictType classifies a disagreement between two positions.
type ConflictType string

const (
	ConflictFactual     ConflictType = "factual_disagreement"    // Opposite conclusions
	ConflictMethodology ConflictType = "methodological_conflict" // Different approaches
	ConflictPriority    ConflictType = "priority_disagreement"   // Different importance levels
	ConflictStrategic   ConflictType = "strategic_divergence"    // Different strategic visions
)

// ConsensusLevel labels the categorical strength of an agreement.
type ConsensusLevel string

const (
	LevelUnanimous          ConsensusLevel = "unanimous"
	LevelSuperMajority      ConsensusLevel = "majority_super"
	LevelStrongMajority     ConsensusLevel = "majority_strong"
	LevelSimpleMajority     ConsensusLevel = "majority_simple"
	LevelPlurality          ConsensusLevel = "plurality"
	LevelSpecialistOverride ConsensusLevel = "specialist_override"
)

// Rank orders consensus levels from strongest (highest) to weakest.
func (l ConsensusLevel) Rank() int {
	switch l {
	case LevelUnanimous:
		return 6
	case LevelSuperMajority:
		return 5
	case LevelStrongMajority:
		return 4
	case LevelSimpleMajority:
		return 3
	case LevelPlurality:
		return 2
	case LevelSpecialistOverride:
		return 1
	default:
		return 0
	}
}

// TaskPriority ranks tasks for processing.
type TaskPriority int

const (
	PriorityCritical   TaskPriority = 1
	PriorityHigh       TaskPriority = 2
	PriorityMedium     TaskPriority = 3
	PriorityLow        TaskPriority = 4
	PriorityBackground TaskPriority = 5
)

// DeliberationPhase names a stage of a deliberation session.
type DeliberationPhase string

const (
	PhaseInitialPositions     DeliberationPhase = "initial_positions"
	PhaseEvidencePresentation DeliberationPhase = "evidence_presentation"
	PhaseCrossValidation      DeliberationPhase = "cross_validation"
	PhaseNegotiation          DeliberationPhase = "negotiation"
	PhaseSynthesis            DeliberationPhase = "synthesis"
	PhaseValidation           DeliberationPhase = "validation"
)

// Task is a unit of work submitted for collective decision-making.
type Task struct {
	ID                   string         `json:"id"`
	Description          string         `json:"description"`
	Priority             TaskPriority   `json:"priority"`
	RequiredParticipants []string       `json:"required_participants"`
	Context              map[string]any `json:"context,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

// Position is one participant's stance on a task. Positions are owned by the
// caller and ephemeral per task; the resolver may rewrite them in place.
type Position struct {
	ParticipantID string    `json:"participant_id"`
	Content       string    `json:"content"`
	Reasoning     string    `json:"reasoning"`
	Confidence    float64   `json:"confidence"` // 0.0 to 1.0
	Evidence      []string  `json:"evidence,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	cp := *p
	cp.Evidence = append([]string(nil), p.Evidence...)
	return &cp
}

// ConflictRecord describes one detected disagreement between two participants.
type ConflictRecord struct {
	Type         ConflictType `json:"type"`
	ParticipantA string       `json:"participant_a"`
	ParticipantB string       `json:"participant_b"`
	Description  string       `json:"description"`
}

// ConflictingView records a dissenting participant and their stance.
type ConflictingView struct {
	ParticipantID string `json:"participant_id"`
	Content       string `json:"content"`
}

// CollectiveInsight is the synthesized output of a deliberation.
type CollectiveInsight struct {
	InsightID          string            `json:"insight_id"`
	ContributingAgents []string          `json:"contributing_agents"`
	SynthesizedContent string            `json:"synthesized_content"`
	ConsensusLevel     ConsensusLevel    `json:"consensus_level"`
	ConfidenceScore    float64           `json:"confidence_score"`
	ConflictingViews   []ConflictingView `json:"conflicting_views,omitempty"`
	SynthesisMethod    string            `json:"synthesis_method"`
}

// Deliberation records one end-to-end consensus-seeking session. A session is
// created at start, held in the active set while running, and always moved to
// permanent history at end regardless of outcome.
type Deliberation struct {
	ID               string               `json:"id"`
	Task             *Task                `json:"task"`
	Strategy         ConsensusStrategy    `json:"strategy"`
	VotingMethod     VotingMethod         `json:"voting_method"`
	Phases           []DeliberationPhase  `json:"phases"`
	Positions        map[string]*Position `json:"positions"`
	EvidenceRegistry map[string][]string  `json:"evidence_registry"`
	ConflictLog      []ConflictRecord     `json:"conflict_log"`
	FinalInsight     *CollectiveInsight   `json:"final_insight,omitempty"`
	QualityMetrics   map[string]float64   `json:"quality_metrics,omitempty"`
	StartedAt        time.Time            `json:"started_at"`
	EndedAt          time.Time            `json:"ended_at,omitempty"`
}

// AppendPhase records a phase transition on the deliberation.
func (d *Deliberation) AppendPhase(phase DeliberationPhase) {
	d.Phases = append(d.Phases, phase)
}

// Clone returns a deep copy of the deliberation's mutable state. Strategies
// run against a clone so an abandoned execution cannot write into a session
// that has already moved on.
func (d *Deliberation) Clone() *Deliberation {
	cp := *d

	cp.Phases = append([]DeliberationPhase(nil), d.Phases...)
	cp.ConflictLog = append([]ConflictRecord(nil), d.ConflictLog...)

	cp.Positions = make(map[string]*Position, len(d.Positions))
	for id, pos := range d.Positions {
		cp.Positions[id] = pos.Clone()
	}

	cp.EvidenceRegistry = make(map[string][]string, len(d.EvidenceRegistry))
	for id, items := range d.EvidenceRegistry {
		cp.EvidenceRegistry[id] = append([]string(nil), items...)
	}

	if d.QualityMetrics != nil {
		cp.QualityMetrics = make(map[string]float64, len(d.QualityMetrics))
		for k, v := range d.QualityMetrics {
			cp.QualityMetrics[k] = v
		}
	}

	return &cp
}

// ClampConfidence bounds a confidence value to [0,1]. Applied after every
// confidence transformation in the pipeline.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
