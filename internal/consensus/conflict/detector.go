// Package conflict detects and resolves disagreements between participant
// positions. Detection is purely lexical: four keyword vocabularies classify
// pairwise disagreements into factual, priority, methodological, and
// strategic categories.
package conflict

import (
	"sort"
	"strings"

	"dev.helix.consensus/internal/consensus"
)

// antonymPairs drive factual disagreement detection: one position contains a
// term, the other its paired opposite (either direction).
var antonymPairs = [][2]string{
	{"yes", "no"},
	{"true", "false"},
	{"implement", "avoid"},
	{"enable", "disable"},
	{"include", "exclude"},
	{"add", "remove"},
}

var priorityTerms = []string{"critical", "urgent", "important", "optional", "secondary"}

var methodologyTerms = []string{
	"top-down", "bottom-up", "iterative", "waterfall", "agile",
	"proactive", "reactive", "preventive", "corrective",
}

var strategicTerms = []string{
	"long-term", "short-term", "scalable", "maintainable",
	"innovative", "conservative", "aggressive", "defensive",
}

// Detector performs pairwise conflict detection over a position map. It is a
// pure function over its input; the zero value is ready to use.
type Detector struct{}

// NewDetector creates a conflict detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect compares every pair of positions and returns the ordered conflict
// list. Participant pairs are visited in sorted-key order so output is
// deterministic, and each category test is symmetric in its pair.
func (d *Detector) Detect(positions map[string]*consensus.Position) []consensus.ConflictRecord {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var conflicts []consensus.ConflictRecord
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := positions[ids[i]], positions[ids[j]]
			for _, found := range d.comparePair(a, b) {
				found.ParticipantA = ids[i]
				found.ParticipantB = ids[j]
				conflicts = append(conflicts, found)
			}
		}
	}
	return conflicts
}

// comparePair runs the four category tests independently on one pair.
func (d *Detector) comparePair(a, b *consensus.Position) []consensus.ConflictRecord {
	var found []consensus.ConflictRecord

	if oppositePositions(a.Content, b.Content) {
		found = append(found, consensus.ConflictRecord{
			Type:        consensus.ConflictFactual,
			Description: "Opposite conclusions",
		})
	}
	if divergentFirstMatch(a.Content, b.Content, priorityTerms) {
		found = append(found, consensus.ConflictRecord{
			Type:        consensus.ConflictPriority,
			Description: "Different priority levels",
		})
	}
	if divergentFirstMatch(a.Reasoning, b.Reasoning, methodologyTerms) {
		found = append(found, consensus.ConflictRecord{
			Type:        consensus.ConflictMethodology,
			Description: "Different methodological approaches",
		})
	}
	if divergentFirstMatch(a.Content, b.Content, strategicTerms) {
		found = append(found, consensus.ConflictRecord{
			Type:        consensus.ConflictStrategic,
			Description: "Different strategic directions",
		})
	}

	return found
}

// oppositePositions reports whether the contents contain a paired antonym in
// either direction.
func oppositePositions(contentA, contentB string) bool {
	lowerA := strings.ToLower(contentA)
	lowerB := strings.ToLower(contentB)

	for _, pair := range antonymPairs {
		if strings.Contains(lowerA, pair[0]) && strings.Contains(lowerB, pair[1]) {
			return true
		}
		if strings.Contains(lowerA, pair[1]) && strings.Contains(lowerB, pair[0]) {
			return true
		}
	}
	return false
}

// divergentFirstMatch reports whether both texts contain a term from the
// vocabulary and their first matches differ.
func divergentFirstMatch(textA, textB string, vocabulary []string) bool {
	firstA := firstMatch(textA, vocabulary)
	firstB := firstMatch(textB, vocabulary)
	return firstA != "" && firstB != "" && firstA != firstB
}

// firstMatch returns the first vocabulary term present in the text, in
// vocabulary order.
func firstMatch(text string, vocabulary []string) string {
	lower := strings.ToLower(text)
	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}
