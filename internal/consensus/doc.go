// Package consensus provides the multi-agent consensus engine core types.
//
// The engine builds collective decisions from independent specialist
// positions. A deliberation collects one position per participant, analyzes
// the decision landscape, resolves pairwise conflicts, executes a consensus
// strategy, and validates the quality of the resulting collective insight.
//
// # Components
//
// The engine consists of these packages:
//
//   - consensus: core types (positions, insights, deliberations) and synthesis
//   - consensus/evidence: keyword and specificity scoring of evidence items
//   - consensus/conflict: pairwise conflict detection and mediation
//   - consensus/voting: 8 voting methods (SimpleMajority, SuperMajority,
//     QualifiedMajority, Unanimous, WeightedConsensus, BordaCount, Condorcet,
//     Approval)
//   - consensus/strategy: 8 consensus strategies behind a single dispatcher
//   - consensus/quality: validation metrics and weak-consensus amplification
//   - consensus/participant: specialist roles, authority weights, providers
//   - consensus/history: append-only deliberation history (memory, PostgreSQL)
//   - consensus/engine: the orchestrator tying everything together
//
// # Failure model
//
// The engine never surfaces strategy failures to callers. Strategy errors and
// deliberation timeouts degrade through a fallback chain that always produces
// a usable insight, down to an explicit no-consensus sentinel. Every
// deliberation, degraded or not, is recorded in history.
package consensus
