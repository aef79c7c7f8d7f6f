// Package handlers exposes the consensus engine over HTTP.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
	"dev.helix.consensus/internal/consensus/engine"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConsensusHandler handles consensus-related HTTP requests.
type ConsensusHandler struct {
	engine *engine.Engine
	log    *logrus.Logger
}

// NewConsensusHandler creates a new consensus handler.
func NewConsensusHandler(e *engine.Engine, log *logrus.Logger) *ConsensusHandler {
	if log == nil {
		log = logrus.New()
	}
	return &ConsensusHandler{engine: e, log: log}
}

// PositionRequest is one participant's submitted stance.
type PositionRequest struct {
	Content    string   `json:"content" binding:"required"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Evidence   []string `json:"evidence"`
}

// ConsensusRequest asks the engine to reach consensus over submitted
// positions.
type ConsensusRequest struct {
	Task         TaskRequest                `json:"task" binding:"required"`
	Positions    map[string]PositionRequest `json:"positions" binding:"required"`
	Strategy     string                     `json:"strategy,omitempty"`
	VotingMethod string                     `json:"voting_method,omitempty"`
}

// TaskRequest describes the task under deliberation.
type TaskRequest struct {
	ID                   string   `json:"id"`
	Description          string   `json:"description" binding:"required"`
	Priority             int      `json:"priority"`
	RequiredParticipants []string `json:"required_participants"`
}

// ConsensusResponse carries the collective insight back to the caller.
type ConsensusResponse struct {
	InsightID          string   `json:"insight_id"`
	ContributingAgents []string `json:"contributing_agents"`
	SynthesizedContent string   `json:"synthesized_content"`
	ConsensusLevel     string   `json:"consensus_level"`
	ConfidenceScore    float64  `json:"confidence_score"`
	SynthesisMethod    string   `json:"synthesis_method"`
	ConflictingViews   int      `json:"conflicting_views"`
}

// ReachConsensus godoc
// @Summary Reach consensus over submitted positions
// @Description Runs a full deliberation over the given participant positions
// @Tags consensus
// @Accept json
// @Produce json
// @Success 200 {object} ConsensusResponse
// @Failure 400 {object} ErrorResponse
// @Router /v1/consensus [post]
func (h *ConsensusHandler) ReachConsensus(c *gin.Context) {
	var req ConsensusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if req.Strategy != "" && !validStrategy(req.Strategy) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown consensus strategy: " + req.Strategy})
		return
	}

	priority := consensus.TaskPriority(req.Task.Priority)
	if priority == 0 {
		priority = consensus.InferPriority(req.Task.Description)
	}

	task := &consensus.Task{
		ID:                   req.Task.ID,
		Description:          req.Task.Description,
		Priority:             priority,
		RequiredParticipants: req.Task.RequiredParticipants,
	}

	positions := make(map[string]*consensus.Position, len(req.Positions))
	for id, pos := range req.Positions {
		positions[id] = &consensus.Position{
			ParticipantID: id,
			Content:       pos.Content,
			Confidence:    consensus.ClampConfidence(pos.Confidence),
			Reasoning:     pos.Reasoning,
			Evidence:      pos.Evidence,
		}
	}

	var opts *engine.Options
	if req.Strategy != "" || req.VotingMethod != "" {
		opts = &engine.Options{
			Strategy:     consensus.ConsensusStrategy(req.Strategy),
			VotingMethod: consensus.VotingMethod(req.VotingMethod),
		}
	}

	insight := h.engine.ReachConsensus(c.Request.Context(), task, positions, opts)

	c.JSON(http.StatusOK, ConsensusResponse{
		InsightID:          insight.InsightID,
		ContributingAgents: insight.ContributingAgents,
		SynthesizedContent: insight.SynthesizedContent,
		ConsensusLevel:     string(insight.ConsensusLevel),
		ConfidenceScore:    insight.ConfidenceScore,
		SynthesisMethod:    insight.SynthesisMethod,
		ConflictingViews:   len(insight.ConflictingViews),
	})
}

// GetAnalytics godoc
// @Summary Get consensus analytics
// @Description Aggregate statistics over recent deliberations
// @Tags consensus
// @Produce json
// @Success 200 {object} engine.Analytics
// @Failure 500 {object} ErrorResponse
// @Router /v1/consensus/analytics [get]
func (h *ConsensusHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.engine.Analytics(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to compute consensus analytics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *ConsensusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "healthy",
		"active_deliberations": h.engine.ActiveCount(),
	})
}

// RegisterRoutes wires the consensus endpoints onto the router.
func (h *ConsensusHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/consensus", h.ReachConsensus)
		v1.GET("/consensus/analytics", h.GetAnalytics)
	}
}

func validStrategy(name string) bool {
	for _, strategy := range consensus.AllStrategies() {
		if string(strategy) == name {
			return true
		}
	}
	return false
}
