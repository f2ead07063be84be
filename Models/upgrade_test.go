package Models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalTransitions(t *testing.T) {
	assert.True(t, CanTransitionProposal(ProposalPending, ProposalApproved))
	assert.True(t, CanTransitionProposal(ProposalPending, ProposalRejected))
	assert.True(t, CanTransitionProposal(ProposalPending, ProposalCancelled))
	assert.True(t, CanTransitionProposal(ProposalApproved, ProposalExecuted))
	assert.True(t, CanTransitionProposal(ProposalApproved, ProposalCancelled))

	// Pending may not jump straight to Executed.
	assert.False(t, CanTransitionProposal(ProposalPending, ProposalExecuted))

	// Terminal states never move again.
	for _, terminal := range []ProposalStatus{ProposalRejected, ProposalCancelled, ProposalExecuted} {
		for _, to := range []ProposalStatus{ProposalPending, ProposalApproved, ProposalRejected, ProposalCancelled, ProposalExecuted} {
			assert.False(t, CanTransitionProposal(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestProposalIsTerminal(t *testing.T) {
	assert.False(t, (&UpgradeProposal{Status: ProposalPending}).IsTerminal())
	assert.False(t, (&UpgradeProposal{Status: ProposalApproved}).IsTerminal())
	assert.True(t, (&UpgradeProposal{Status: ProposalRejected}).IsTerminal())
	assert.True(t, (&UpgradeProposal{Status: ProposalCancelled}).IsTerminal())
	assert.True(t, (&UpgradeProposal{Status: ProposalExecuted}).IsTerminal())
}
