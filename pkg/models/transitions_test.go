package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardPath(t *testing.T) {
	assert.True(t, CanTransition(StatusScored, StatusInvited))
	assert.True(t, CanTransition(StatusInvited, StatusScheduled))
	assert.True(t, CanTransition(StatusScheduled, StatusInterviewDone))
	assert.True(t, CanTransition(StatusInterviewDone, StatusEvaluated))
	assert.True(t, CanTransition(StatusEvaluated, StatusDecided))
}

func TestCanTransition_MarketplaceFork(t *testing.T) {
	assert.True(t, CanTransition(StatusInterviewDone, StatusMarketplace))
	assert.True(t, CanTransition(StatusEvaluated, StatusMarketplace))

	// The fork is only reachable after the interview is done
	assert.False(t, CanTransition(StatusScored, StatusMarketplace))
	assert.False(t, CanTransition(StatusInvited, StatusMarketplace))
	assert.False(t, CanTransition(StatusScheduled, StatusMarketplace))
}

func TestCanTransition_DeniedEdges(t *testing.T) {
	// No skipping ahead
	assert.False(t, CanTransition(StatusScored, StatusScheduled))
	assert.False(t, CanTransition(StatusInvited, StatusEvaluated))
	assert.False(t, CanTransition(StatusScheduled, StatusDecided))

	// No going backwards
	assert.False(t, CanTransition(StatusInvited, StatusScored))
	assert.False(t, CanTransition(StatusEvaluated, StatusInterviewDone))

	// No repeating the same status
	assert.False(t, CanTransition(StatusInvited, StatusInvited))
}

func TestCanTransition_TerminalStatuses(t *testing.T) {
	for _, next := range CandidateStatuses {
		assert.False(t, CanTransition(StatusDecided, next), "decided must not reach %s", next)
		assert.False(t, CanTransition(StatusMarketplace, next), "marketplace must not reach %s", next)
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []CandidateStatus{StatusInvited}, NextStatuses(StatusScored))
	assert.ElementsMatch(t, []CandidateStatus{StatusDecided, StatusMarketplace}, NextStatuses(StatusEvaluated))
	assert.Empty(t, NextStatuses(StatusDecided))
}

func TestCandidateStatusIsValid(t *testing.T) {
	for _, status := range CandidateStatuses {
		assert.True(t, status.IsValid())
	}
	assert.False(t, CandidateStatus("archived").IsValid())
	assert.False(t, CandidateStatus("").IsValid())
}
