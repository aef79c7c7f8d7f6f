package engine

import (
	"fmt"
	"sync"
	"time"

	"dev.helix.consensus/internal/consensus"
)

// maxPatternsPerKey bounds the remembered outcomes per strategy and voting
// method combination.
const maxPatternsPerKey = 100

// strategyPattern is one remembered deliberation outcome.
type strategyPattern struct {
	Strategy         consensus.ConsensusStrategy `json:"strategy"`
	VotingMethod     consensus.VotingMethod      `json:"voting_method"`
	ParticipantCount int                         `json:"participant_count"`
	ConflictCount    int                         `json:"conflict_count"`
	ConsensusLevel   consensus.ConsensusLevel    `json:"consensus_level"`
	Confidence       float64                     `json:"confidence"`
	Duration         time.Duration               `json:"duration"`
	Timestamp        time.Time                   `json:"timestamp"`
}

// Learning accumulates per-strategy outcome patterns so future deliberations
// with a similar shape can reuse what worked. Safe for concurrent use.
type Learning struct {
	patterns map[string][]strategyPattern
	mu       sync.RWMutex
}

// NewLearning creates an empty learning store.
func NewLearning() *Learning {
	return &Learning{patterns: make(map[string][]strategyPattern)}
}

// Learn records the outcome of a completed deliberation. Deliberations
// without a final insight are ignored.
func (l *Learning) Learn(delib *consensus.Deliberation) {
	if delib == nil || delib.FinalInsight == nil {
		return
	}

	pattern := strategyPattern{
		Strategy:         delib.Strategy,
		VotingMethod:     delib.VotingMethod,
		ParticipantCount: len(delib.Positions),
		ConflictCount:    len(delib.ConflictLog),
		ConsensusLevel:   delib.FinalInsight.ConsensusLevel,
		Confidence:       delib.FinalInsight.ConfidenceScore,
		Duration:         delib.EndedAt.Sub(delib.StartedAt),
		Timestamp:        delib.EndedAt,
	}

	key := patternKey(delib.Strategy, delib.VotingMethod)

	l.mu.Lock()
	defer l.mu.Unlock()

	stored := append(l.patterns[key], pattern)
	if len(stored) > maxPatternsPerKey {
		stored = stored[len(stored)-maxPatternsPerKey:]
	}
	l.patterns[key] = stored
}

// OptimalStrategy suggests the strategy with the best mean confidence among
// remembered deliberations of a similar shape. It reports false when no
// comparable history exists.
func (l *Learning) OptimalStrategy(participantCount, conflictCount int) (consensus.ConsensusStrategy, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	best := consensus.ConsensusStrategy("")
	bestScore := 0.0

	for _, strategy := range consensus.AllStrategies() {
		total := 0.0
		matched := 0
		for _, stored := range l.patterns {
			for _, pattern := range stored {
				if pattern.Strategy != strategy {
					continue
				}
				if abs(pattern.ParticipantCount-participantCount) > 2 {
					continue
				}
				if abs(pattern.ConflictCount-conflictCount) > 1 {
					continue
				}
				total += pattern.Confidence
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		if score := total / float64(matched); score > bestScore {
			bestScore = score
			best = strategy
		}
	}

	return best, best != ""
}

// PatternCount returns the total number of remembered outcomes.
func (l *Learning) PatternCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, stored := range l.patterns {
		total += len(stored)
	}
	return total
}

func patternKey(strategy consensus.ConsensusStrategy, voting consensus.VotingMethod) string {
	return fmt.Sprintf("%s_%s", strategy, voting)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
