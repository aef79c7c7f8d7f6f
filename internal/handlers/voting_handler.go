package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
	"dev.helix.consensus/internal/consensus/voting"
)

// VotingHandler exposes the vote aggregation methods directly, for callers
// that already hold discrete choices instead of free-text positions.
type VotingHandler struct {
	log *logrus.Logger
}

// NewVotingHandler creates a new voting handler.
func NewVotingHandler(log *logrus.Logger) *VotingHandler {
	if log == nil {
		log = logrus.New()
	}
	return &VotingHandler{log: log}
}

// VoteRequest is one participant's vote on a discrete choice.
type VoteRequest struct {
	ParticipantID string  `json:"participant_id" binding:"required"`
	Choice        string  `json:"choice" binding:"required"`
	Confidence    float64 `json:"confidence"`
	Weight        float64 `json:"weight"`
}

// AggregateRequest asks for one aggregation round over submitted votes. Votes
// carry single choices; rankings and approvals carry per-participant choice
// lists for the ranked and approval methods.
type AggregateRequest struct {
	Method    string              `json:"method" binding:"required"`
	Votes     []VoteRequest       `json:"votes,omitempty"`
	Rankings  map[string][]string `json:"rankings,omitempty"`
	Approvals map[string][]string `json:"approvals,omitempty"`
}

// Aggregate godoc
// @Summary Aggregate votes with a named voting method
// @Tags voting
// @Accept json
// @Produce json
// @Success 200 {object} voting.Result
// @Failure 400 {object} ErrorResponse
// @Router /v1/votes/aggregate [post]
func (h *VotingHandler) Aggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	votes := make([]voting.Vote, 0, len(req.Votes))
	for _, v := range req.Votes {
		votes = append(votes, voting.Vote{
			ParticipantID: v.ParticipantID,
			Choice:        v.Choice,
			Confidence:    consensus.ClampConfidence(v.Confidence),
			Weight:        v.Weight,
		})
	}

	var result *voting.Result
	var err error

	switch consensus.VotingMethod(req.Method) {
	case consensus.VoteSimpleMajority:
		result, err = voting.SimpleMajority(votes)
	case consensus.VoteSuperMajority:
		result, err = voting.SuperMajority(votes)
	case consensus.VoteQualifiedMajority:
		result, err = voting.QualifiedMajority(votes)
	case consensus.VoteUnanimous:
		result, err = voting.Unanimous(votes)
	case consensus.VoteWeightedConsensus:
		result, err = voting.WeightedConsensus(votes)
	case consensus.VoteBordaCount:
		result, err = voting.BordaCount(req.Rankings)
	case consensus.VoteCondorcet:
		result, err = voting.Condorcet(req.Rankings)
	case consensus.VoteApproval:
		result, err = voting.Approval(req.Approvals)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown voting method: " + req.Method})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{
		"method": result.Method,
		"winner": result.WinningChoice,
		"votes":  result.TotalVotes,
	}).Debug("Votes aggregated")

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes wires the voting endpoints onto the router.
func (h *VotingHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/votes/aggregate", h.Aggregate)
	}
}
