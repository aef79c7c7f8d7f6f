// Package participant defines the capability contract for deliberation
// participants and the static role registry with authority weights. Position
// generation itself is an opaque capability supplied by the caller; the
// engine only requires failure isolation around it.
package participant

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dev.helix.consensus/internal/consensus"
)

// Provider produces a participant's position on a task. Implementations may
// fail; the engine substitutes a degraded placeholder rather than aborting
// the deliberation.
type Provider interface {
	GeneratePosition(ctx context.Context, task *consensus.Task) (*consensus.Position, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, task *consensus.Task) (*consensus.Position, error)

// GeneratePosition calls the wrapped function.
func (f ProviderFunc) GeneratePosition(ctx context.Context, task *consensus.Task) (*consensus.Position, error) {
	return f(ctx, task)
}

// Role describes a specialist participant: its authority weight for weighted
// voting and the task keywords that mark its domain.
type Role struct {
	ID             string   `json:"id"`
	Authority      float64  `json:"authority"` // 0-1 expertise weight
	DomainKeywords []string `json:"domain_keywords,omitempty"`
}

// DefaultAuthority is assumed for participants without a registered role.
const DefaultAuthority = 0.5

// CoordinatorRole is the fallback lead when no specialist matches a task and
// the mediating identity for merged hybrid positions.
const CoordinatorRole = "queen_coordinator"

// Registry holds the role table. Reads dominate; writes are rare and
// serialized.
type Registry struct {
	roles map[string]Role
	mu    sync.RWMutex
}

// NewRegistry creates a registry preloaded with the default specialist roles.
func NewRegistry() *Registry {
	r := &Registry{roles: make(map[string]Role)}
	for _, role := range defaultRoles() {
		r.roles[role.ID] = role
	}
	return r
}

// defaultRoles returns the ten-specialist authority table.
func defaultRoles() []Role {
	return []Role{
		{ID: CoordinatorRole, Authority: 1.0},
		{ID: "security_specialist", Authority: 0.95, DomainKeywords: []string{"security", "auth", "encryption", "vulnerability"}},
		{ID: "code_architect", Authority: 0.9, DomainKeywords: []string{"architecture", "structure", "design", "framework"}},
		{ID: "performance_optimizer", Authority: 0.85, DomainKeywords: []string{"performance", "optimization", "speed", "efficiency"}},
		{ID: "testing_quality", Authority: 0.85, DomainKeywords: []string{"test", "quality", "validation", "verification"}},
		{ID: "integration_expert", Authority: 0.8, DomainKeywords: []string{"integration", "api", "connect", "system"}},
		{ID: "ui_ux_designer", Authority: 0.75, DomainKeywords: []string{"ui", "ux", "interface", "user"}},
		{ID: "data_analytics", Authority: 0.75, DomainKeywords: []string{"data", "analytics", "metrics", "analysis"}},
		{ID: "documentation_tech_writer", Authority: 0.7},
		{ID: "innovation_strategist", Authority: 0.7},
	}
}

// Register adds or replaces a role.
func (r *Registry) Register(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.ID] = role
}

// Authority returns the authority weight for a participant, or
// DefaultAuthority when unknown.
func (r *Registry) Authority(participantID string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if role, ok := r.roles[participantID]; ok {
		return role.Authority
	}
	return DefaultAuthority
}

// DomainKeywords returns the domain keywords for a participant.
func (r *Registry) DomainKeywords(participantID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if role, ok := r.roles[participantID]; ok {
		return append([]string(nil), role.DomainKeywords...)
	}
	return nil
}

// IDs returns the registered role ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.roles))
	for id := range r.roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DegradedPosition builds the low-confidence placeholder substituted for a
// failed participant.
func DegradedPosition(participantID string, cause error) *consensus.Position {
	return &consensus.Position{
		ParticipantID: participantID,
		Content:       fmt.Sprintf("Participant encountered error: %v", cause),
		Reasoning:     "Processing failed - using fallback response",
		Confidence:    0.3,
		Timestamp:     time.Now(),
	}
}
