package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.consensus/internal/consensus/voting"
)

func setupVotingRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewVotingHandler(nil).RegisterRoutes(router)
	return router
}

func TestAggregate_SimpleMajority(t *testing.T) {
	router := setupVotingRouter(t)

	w := postJSON(t, router, "/v1/votes/aggregate", AggregateRequest{
		Method: "simple_majority",
		Votes: []VoteRequest{
			{ParticipantID: "a", Choice: "option_a", Confidence: 0.9},
			{ParticipantID: "b", Choice: "option_a", Confidence: 0.8},
			{ParticipantID: "c", Choice: "option_b", Confidence: 0.7},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result voting.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "option_a", result.WinningChoice)
	assert.True(t, result.Passed)
}

func TestAggregate_BordaCount(t *testing.T) {
	router := setupVotingRouter(t)

	w := postJSON(t, router, "/v1/votes/aggregate", AggregateRequest{
		Method: "borda_count",
		Rankings: map[string][]string{
			"a": {"x", "y"},
			"b": {"x", "y"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result voting.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "x", result.WinningChoice)
}

func TestAggregate_UnknownMethod(t *testing.T) {
	router := setupVotingRouter(t)

	w := postJSON(t, router, "/v1/votes/aggregate", AggregateRequest{
		Method: "coin_flip",
		Votes:  []VoteRequest{{ParticipantID: "a", Choice: "x", Confidence: 0.5}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregate_NoVotes(t *testing.T) {
	router := setupVotingRouter(t)

	w := postJSON(t, router, "/v1/votes/aggregate", AggregateRequest{
		Method: "unanimous",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
