package consensus

import "strings"

// Keyword tiers for inferring a task's priority from its description. Checked
// in order; the first tier with a hit wins.
var (
	criticalKeywords   = []string{"critical", "emergency", "urgent", "immediately", "outage", "security breach"}
	highKeywords       = []string{"important", "asap", "blocker", "blocking", "deadline", "high priority"}
	lowKeywords        = []string{"minor", "cosmetic", "cleanup", "nice to have", "low priority"}
	backgroundKeywords = []string{"background", "housekeeping", "maintenance", "whenever", "eventually"}
)

// InferPriority derives a task priority from urgency keywords in the
// description. Descriptions without a recognized keyword default to medium.
func InferPriority(description string) TaskPriority {
	lowered := strings.ToLower(description)

	switch {
	case containsAny(lowered, criticalKeywords):
		return PriorityCritical
	case containsAny(lowered, highKeywords):
		return PriorityHigh
	case containsAny(lowered, lowKeywords):
		return PriorityLow
	case containsAny(lowered, backgroundKeywords):
		return PriorityBackground
	default:
		return PriorityMedium
	}
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
