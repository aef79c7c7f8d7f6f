// Package engine owns the deliberation lifecycle: concurrent position
// collection, landscape analysis, strategy dispatch, quality validation and
// amplification, timeout and fallback handling, and history recording. No
// failure propagates past ReachConsensus; every failure degrades to a
// defined insight.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
	"dev.helix.consensus/internal/consensus/history"
	"dev.helix.consensus/internal/consensus/participant"
	"dev.helix.consensus/internal/consensus/quality"
	"dev.helix.consensus/internal/consensus/strategy"
)

// Config configures the consensus engine.
type Config struct {
	// DeliberationTimeout bounds one deliberation end to end; on expiry the
	// fallback consensus is returned instead of blocking the caller.
	DeliberationTimeout time.Duration `json:"deliberation_timeout"`
	// AnalyticsWindow is how many recent deliberations analytics cover.
	AnalyticsWindow int `json:"analytics_window"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DeliberationTimeout: 5 * time.Minute,
		AnalyticsWindow:     20,
	}
}

// Observer receives deliberation outcome notifications, e.g. for metrics.
type Observer interface {
	ObserveDeliberation(strategy string, level string, seconds float64, fellBack bool)
	SetActiveDeliberations(n int)
}

// Options override the engine's strategy and voting-method selection for one
// deliberation.
type Options struct {
	Strategy     consensus.ConsensusStrategy `json:"strategy,omitempty"`
	VotingMethod consensus.VotingMethod      `json:"voting_method,omitempty"`
}

// Engine is the deliberation orchestrator. It is safe for concurrent use;
// independent deliberations run fully concurrently against the shared role
// registry and learning state.
type Engine struct {
	config     Config
	log        *logrus.Logger
	dispatcher *strategy.Dispatcher
	validator  *quality.Validator
	registry   *participant.Registry
	store      history.Store
	learning   *Learning
	observer   Observer

	active   map[string]*consensus.Deliberation
	activeMu sync.Mutex
}

// New creates a consensus engine. A nil store gets an in-memory history; nil
// registry, synthesizer, and logger get defaults.
func New(config Config, registry *participant.Registry, store history.Store, synth consensus.Synthesizer, log *logrus.Logger) *Engine {
	if config.DeliberationTimeout <= 0 {
		config.DeliberationTimeout = DefaultConfig().DeliberationTimeout
	}
	if config.AnalyticsWindow <= 0 {
		config.AnalyticsWindow = DefaultConfig().AnalyticsWindow
	}
	if registry == nil {
		registry = participant.NewRegistry()
	}
	if store == nil {
		store = history.NewMemoryStore()
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:     config,
		log:        log,
		dispatcher: strategy.NewDispatcher(registry, synth, log),
		validator:  quality.NewValidator(log),
		registry:   registry,
		store:      store,
		learning:   NewLearning(),
		active:     make(map[string]*consensus.Deliberation),
	}
}

// SetObserver attaches an outcome observer. Call before serving traffic.
func (e *Engine) SetObserver(observer Observer) {
	e.observer = observer
}

// Registry exposes the role registry for configuration.
func (e *Engine) Registry() *participant.Registry {
	return e.registry
}

// ReachConsensus orchestrates agreement over the given positions. It never
// returns an error: strategy failures and timeouts degrade to the fallback
// consensus, and the deliberation is always recorded in history with its end
// timestamp set.
func (e *Engine) ReachConsensus(ctx context.Context, task *consensus.Task, positions map[string]*consensus.Position, opts *Options) *consensus.CollectiveInsight {
	start := time.Now()

	// Deliberations own their positions; strategies and the resolver mutate
	// them freely without touching the caller's map.
	owned := make(map[string]*consensus.Position, len(positions))
	for id, pos := range positions {
		owned[id] = pos.Clone()
	}

	land := e.dispatcher.Analyze(owned)

	chosenStrategy := land.RecommendedStrategy
	chosenVoting := land.RecommendedVoting
	if opts != nil && opts.Strategy != "" {
		chosenStrategy = opts.Strategy
	}
	if opts != nil && opts.VotingMethod != "" {
		chosenVoting = opts.VotingMethod
	}

	delib := &consensus.Deliberation{
		ID:               uuid.NewString(),
		Task:             task,
		Strategy:         chosenStrategy,
		VotingMethod:     chosenVoting,
		Phases:           []consensus.DeliberationPhase{consensus.PhaseInitialPositions},
		Positions:        owned,
		EvidenceRegistry: evidenceRegistry(owned),
		ConflictLog:      make([]consensus.ConflictRecord, 0),
		StartedAt:        start,
	}

	e.trackActive(delib)

	e.log.WithFields(logrus.Fields{
		"deliberation": delib.ID,
		"task":         taskID(task),
		"strategy":     chosenStrategy,
		"participants": len(owned),
		"agreement":    land.AgreementScore,
		"conflicts":    land.ConflictCount,
	}).Info("Initiating consensus deliberation")

	insight, fellBack := e.runStrategy(ctx, delib)

	// Validate and, when the result is weak, amplify once.
	delib.AppendPhase(consensus.PhaseValidation)
	required := 0
	if task != nil {
		required = len(task.RequiredParticipants)
	}
	metrics := e.validator.Validate(insight, delib, required)
	insight = e.validator.Amplify(insight, metrics)

	delib.FinalInsight = insight
	delib.QualityMetrics = metrics
	delib.EndedAt = time.Now()

	e.finish(ctx, delib)
	e.learning.Learn(delib)

	if e.observer != nil {
		e.observer.ObserveDeliberation(string(delib.Strategy), string(insight.ConsensusLevel),
			delib.EndedAt.Sub(delib.StartedAt).Seconds(), fellBack)
	}

	e.log.WithFields(logrus.Fields{
		"deliberation": delib.ID,
		"level":        insight.ConsensusLevel,
		"confidence":   insight.ConfidenceScore,
		"duration":     delib.EndedAt.Sub(delib.StartedAt),
	}).Info("Consensus reached")

	return insight
}

// runStrategy executes the chosen strategy under the deliberation timeout.
// It reports whether the fallback path was taken.
//
// The strategy goroutine works on a clone of the deliberation. On timeout the
// goroutine is abandoned and keeps writing into its clone only; the shared
// session stays untouched and safe to validate and record. Strategy-side
// mutations are merged back on the success branch alone.
func (e *Engine) runStrategy(ctx context.Context, delib *consensus.Deliberation) (*consensus.CollectiveInsight, bool) {
	if len(delib.Positions) == 0 {
		return e.fallbackConsensus(delib.Positions), true
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.DeliberationTimeout)
	defer cancel()

	type outcome struct {
		insight *consensus.CollectiveInsight
		err     error
	}
	done := make(chan outcome, 1)

	shadow := delib.Clone()
	go func() {
		insight, err := e.dispatcher.Execute(ctx, shadow.Strategy, shadow)
		done <- outcome{insight: insight, err: err}
	}()

	select {
	case <-ctx.Done():
		e.log.WithField("deliberation", delib.ID).Warn("Deliberation timed out, using fallback consensus")
		return e.fallbackConsensus(delib.Positions), true
	case result := <-done:
		if result.err != nil {
			e.log.WithError(result.err).WithField("deliberation", delib.ID).
				Error("Consensus strategy failed, using fallback consensus")
			return e.fallbackConsensus(delib.Positions), true
		}
		delib.Phases = shadow.Phases
		delib.Positions = shadow.Positions
		delib.ConflictLog = shadow.ConflictLog
		return result.insight, false
	}
}

// Deliberate generates positions from the given providers concurrently, then
// reaches consensus on them. Each provider runs in its own goroutine; a
// failed provider contributes a degraded placeholder instead of aborting the
// deliberation. The fan-out shares the deliberation timeout: providers that
// miss the deadline are abandoned and replaced by placeholders so one hung
// participant never blocks the caller.
func (e *Engine) Deliberate(ctx context.Context, task *consensus.Task, providers map[string]participant.Provider) *consensus.CollectiveInsight {
	ctx, cancel := context.WithTimeout(ctx, e.config.DeliberationTimeout)
	defer cancel()

	var (
		mu        sync.Mutex
		collected = make(map[string]*consensus.Position, len(providers))
		sealed    bool
	)
	var wg sync.WaitGroup

	for id, provider := range providers {
		wg.Add(1)
		go func(id string, provider participant.Provider) {
			defer wg.Done()

			pos, err := provider.GeneratePosition(ctx, task)
			if err != nil || pos == nil {
				e.log.WithError(err).WithField("participant", id).Error("Participant failed, substituting placeholder")
				pos = participant.DegradedPosition(id, err)
			}
			pos.ParticipantID = id

			mu.Lock()
			if !sealed {
				collected[id] = pos
			}
			mu.Unlock()
		}(id, provider)
	}

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-ctx.Done():
		e.log.WithField("task", taskID(task)).Warn("Position generation timed out, substituting placeholders")
	}

	// Seal before reading so an abandoned provider cannot write into the map
	// the deliberation is about to consume.
	mu.Lock()
	sealed = true
	positions := make(map[string]*consensus.Position, len(providers))
	for id := range providers {
		if pos, ok := collected[id]; ok {
			positions[id] = pos
		} else {
			positions[id] = participant.DegradedPosition(id, ctx.Err())
		}
	}
	mu.Unlock()

	return e.ReachConsensus(ctx, task, positions, nil)
}

// trackActive adds the deliberation to the active set.
func (e *Engine) trackActive(delib *consensus.Deliberation) {
	e.activeMu.Lock()
	e.active[delib.ID] = delib
	n := len(e.active)
	e.activeMu.Unlock()

	if e.observer != nil {
		e.observer.SetActiveDeliberations(n)
	}
}

// finish moves the deliberation from the active set to permanent history.
// Sessions are never silently dropped: history append failures are logged
// but the deliberation stays complete in memory.
func (e *Engine) finish(ctx context.Context, delib *consensus.Deliberation) {
	e.activeMu.Lock()
	delete(e.active, delib.ID)
	n := len(e.active)
	e.activeMu.Unlock()

	if e.observer != nil {
		e.observer.SetActiveDeliberations(n)
	}

	if err := e.store.Append(ctx, delib); err != nil {
		e.log.WithError(err).WithField("deliberation", delib.ID).Error("Failed to record deliberation history")
	}
}

// ActiveCount returns the number of in-flight deliberations.
func (e *Engine) ActiveCount() int {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	return len(e.active)
}

func evidenceRegistry(positions map[string]*consensus.Position) map[string][]string {
	registry := make(map[string][]string, len(positions))
	for id, pos := range positions {
		registry[id] = append([]string(nil), pos.Evidence...)
	}
	return registry
}

func taskID(task *consensus.Task) string {
	if task == nil {
		return ""
	}
	return task.ID
}
