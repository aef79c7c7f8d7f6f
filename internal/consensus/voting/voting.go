// Package voting provides the vote aggregation methods used during
// consensus-building: majority variants, weighted consensus, Borda count,
// Condorcet, and approval voting. Aggregation functions are pure; the Ballot
// type offers a mutex-guarded collection point for concurrent voters.
package voting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"dev.helix.consensus/internal/consensus"
)

// Vote is a single participant's vote for a choice.
type Vote struct {
	ParticipantID string    `json:"participant_id"`
	Choice        string    `json:"choice"`
	Confidence    float64   `json:"confidence"` // 0-1
	Weight        float64   `json:"weight"`     // expertise weight; falls back to confidence when 0
	Timestamp     time.Time `json:"timestamp"`
}

// Result is the outcome of one aggregation round.
type Result struct {
	Method           consensus.VotingMethod `json:"method"`
	WinningChoice    string                 `json:"winning_choice"`
	WinningScore     float64                `json:"winning_score"`
	Passed           bool                   `json:"passed"` // threshold met for threshold methods
	ChoiceScores     map[string]float64     `json:"choice_scores"`
	ChoiceVoteCounts map[string]int         `json:"choice_vote_counts"`
	Consensus        float64                `json:"consensus"` // winning share of total score, 0-1
	TotalVotes       int                    `json:"total_votes"`
	Timestamp        time.Time              `json:"timestamp"`
}

// Ballot collects votes from concurrent voters. A later vote from the same
// participant replaces the earlier one.
type Ballot struct {
	votes []Vote
	mu    sync.RWMutex
}

// NewBallot creates an empty ballot.
func NewBallot() *Ballot {
	return &Ballot{votes: make([]Vote, 0)}
}

// Add records a vote, replacing any prior vote by the same participant.
func (b *Ballot) Add(vote Vote) error {
	if vote.Choice == "" {
		return fmt.Errorf("vote choice cannot be empty")
	}
	if vote.Confidence < 0 || vote.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", vote.Confidence)
	}
	if vote.Timestamp.IsZero() {
		vote.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.votes {
		if existing.ParticipantID == vote.ParticipantID {
			b.votes[i] = vote
			return nil
		}
	}
	b.votes = append(b.votes, vote)
	return nil
}

// Votes returns a copy of the recorded votes.
func (b *Ballot) Votes() []Vote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	votes := make([]Vote, len(b.votes))
	copy(votes, b.votes)
	return votes
}

// Count returns the number of recorded votes.
func (b *Ballot) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.votes)
}

// SimpleMajority passes when the winning choice holds more than half the
// votes.
func SimpleMajority(votes []Vote) (*Result, error) {
	return thresholdMajority(votes, consensus.VoteSimpleMajority, 0.5, true)
}

// SuperMajority passes at a two-thirds share.
func SuperMajority(votes []Vote) (*Result, error) {
	return thresholdMajority(votes, consensus.VoteSuperMajority, 2.0/3.0, false)
}

// QualifiedMajority passes at a three-quarters share.
func QualifiedMajority(votes []Vote) (*Result, error) {
	return thresholdMajority(votes, consensus.VoteQualifiedMajority, 3.0/4.0, false)
}

// Unanimous passes only when every vote names the same choice.
func Unanimous(votes []Vote) (*Result, error) {
	result, err := thresholdMajority(votes, consensus.VoteUnanimous, 1.0, false)
	if err != nil {
		return nil, err
	}
	result.Passed = result.ChoiceVoteCounts[result.WinningChoice] == len(votes)
	return result, nil
}

// thresholdMajority counts raw votes per choice and applies a share
// threshold. strict requires the share to exceed the threshold, otherwise
// meeting it suffices.
func thresholdMajority(votes []Vote, method consensus.VotingMethod, threshold float64, strict bool) (*Result, error) {
	if len(votes) == 0 {
		return nil, fmt.Errorf("no votes to aggregate")
	}

	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.Choice]++
	}

	scores := make(map[string]float64, len(counts))
	for choice, count := range counts {
		scores[choice] = float64(count)
	}

	winner, winning := argmax(scores)
	share := winning / float64(len(votes))

	passed := share >= threshold
	if strict {
		passed = share > threshold
	}

	return &Result{
		Method:           method,
		WinningChoice:    winner,
		WinningScore:     winning,
		Passed:           passed,
		ChoiceScores:     scores,
		ChoiceVoteCounts: counts,
		Consensus:        share,
		TotalVotes:       len(votes),
		Timestamp:        time.Now(),
	}, nil
}

// WeightedConsensus aggregates by expertise weight: each vote contributes its
// weight (confidence when no weight is set) to its choice.
func WeightedConsensus(votes []Vote) (*Result, error) {
	if len(votes) == 0 {
		return nil, fmt.Errorf("no votes to aggregate")
	}

	scores := make(map[string]float64)
	counts := make(map[string]int)
	total := 0.0
	for _, v := range votes {
		w := v.Weight
		if w == 0 {
			w = v.Confidence
		}
		scores[v.Choice] += w
		counts[v.Choice]++
		total += w
	}

	winner, winning := argmax(scores)

	share := 0.0
	if total > 0 {
		share = winning / total
	}

	return &Result{
		Method:           consensus.VoteWeightedConsensus,
		WinningChoice:    winner,
		WinningScore:     winning,
		Passed:           share > 0.5,
		ChoiceScores:     scores,
		ChoiceVoteCounts: counts,
		Consensus:        share,
		TotalVotes:       len(votes),
		Timestamp:        time.Now(),
	}, nil
}

// BordaCount scores ranked preferences: with n distinct choices, a first
// place is worth n-1 points, second n-2, and so on.
func BordaCount(rankings map[string][]string) (*Result, error) {
	if len(rankings) == 0 {
		return nil, fmt.Errorf("no rankings to aggregate")
	}

	choices := make(map[string]bool)
	for _, ranking := range rankings {
		for _, choice := range ranking {
			choices[choice] = true
		}
	}
	n := len(choices)

	scores := make(map[string]float64, n)
	for _, ranking := range rankings {
		for i, choice := range ranking {
			points := float64(n - 1 - i)
			if points < 0 {
				points = 0
			}
			scores[choice] += points
		}
	}

	winner, winning := argmax(scores)

	total := 0.0
	for _, s := range scores {
		total += s
	}
	share := 0.0
	if total > 0 {
		share = winning / total
	}

	return &Result{
		Method:           consensus.VoteBordaCount,
		WinningChoice:    winner,
		WinningScore:     winning,
		Passed:           winner != "",
		ChoiceScores:     scores,
		ChoiceVoteCounts: make(map[string]int),
		Consensus:        share,
		TotalVotes:       len(rankings),
		Timestamp:        time.Now(),
	}, nil
}

// Condorcet finds the choice that beats every other choice in pairwise
// comparison. When no such winner exists (a preference cycle), it falls back
// to Borda count.
func Condorcet(rankings map[string][]string) (*Result, error) {
	if len(rankings) == 0 {
		return nil, fmt.Errorf("no rankings to aggregate")
	}

	choices := make([]string, 0)
	seen := make(map[string]bool)
	for _, ranking := range rankings {
		for _, choice := range ranking {
			if !seen[choice] {
				seen[choice] = true
				choices = append(choices, choice)
			}
		}
	}
	sort.Strings(choices)

	// pairwiseWins[a][b] counts voters preferring a over b.
	pairwiseWins := make(map[string]map[string]int, len(choices))
	for _, c := range choices {
		pairwiseWins[c] = make(map[string]int)
	}
	for _, ranking := range rankings {
		rank := make(map[string]int, len(ranking))
		for i, choice := range ranking {
			rank[choice] = i
		}
		for _, a := range choices {
			for _, b := range choices {
				if a == b {
					continue
				}
				ra, okA := rank[a]
				rb, okB := rank[b]
				if okA && (!okB || ra < rb) {
					pairwiseWins[a][b]++
				}
			}
		}
	}

	half := len(rankings) / 2
	for _, candidate := range choices {
		beatsAll := true
		for _, other := range choices {
			if candidate == other {
				continue
			}
			if pairwiseWins[candidate][other] <= half {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			scores := make(map[string]float64, len(choices))
			for _, c := range choices {
				wins := 0
				for _, other := range choices {
					if c != other && pairwiseWins[c][other] > half {
						wins++
					}
				}
				scores[c] = float64(wins)
			}
			return &Result{
				Method:           consensus.VoteCondorcet,
				WinningChoice:    candidate,
				WinningScore:     scores[candidate],
				Passed:           true,
				ChoiceScores:     scores,
				ChoiceVoteCounts: make(map[string]int),
				Consensus:        1.0,
				TotalVotes:       len(rankings),
				Timestamp:        time.Now(),
			}, nil
		}
	}

	// Preference cycle: Borda is the deterministic fallback.
	result, err := BordaCount(rankings)
	if err != nil {
		return nil, err
	}
	result.Method = consensus.VoteCondorcet
	return result, nil
}

// Approval counts approvals across voters; each voter may approve several
// choices.
func Approval(approvals map[string][]string) (*Result, error) {
	if len(approvals) == 0 {
		return nil, fmt.Errorf("no approvals to aggregate")
	}

	counts := make(map[string]int)
	for _, approved := range approvals {
		for _, choice := range approved {
			counts[choice]++
		}
	}

	scores := make(map[string]float64, len(counts))
	total := 0.0
	for choice, count := range counts {
		scores[choice] = float64(count)
		total += float64(count)
	}

	winner, winning := argmax(scores)

	share := 0.0
	if total > 0 {
		share = winning / total
	}

	return &Result{
		Method:           consensus.VoteApproval,
		WinningChoice:    winner,
		WinningScore:     winning,
		Passed:           winner != "",
		ChoiceScores:     scores,
		ChoiceVoteCounts: counts,
		Consensus:        share,
		TotalVotes:       len(approvals),
		Timestamp:        time.Now(),
	}, nil
}

// argmax returns the choice with the highest score. Ties break toward the
// lexicographically smallest choice for determinism.
func argmax(scores map[string]float64) (string, float64) {
	if len(scores) == 0 {
		return "", 0
	}

	keys := make([]string, 0, len(scores))
	for choice := range scores {
		keys = append(keys, choice)
	}
	sort.Strings(keys)

	// Seed from the first key so an all-zero score map still yields a
	// winner instead of an empty choice.
	winner := keys[0]
	best := scores[winner]
	for _, choice := range keys[1:] {
		if scores[choice] > best {
			best = scores[choice]
			winner = choice
		}
	}
	return winner, best
}
