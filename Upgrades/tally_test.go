package Upgrades

import (
	"testing"
	"time"

	"EVShare/Models"

	"github.com/stretchr/testify/assert"
)

func approveVote(voterID uint) Models.UpgradeVote {
	return Models.UpgradeVote{VoterID: voterID, IsApprove: true, VotedAt: time.Now()}
}

func rejectVote(voterID uint) Models.UpgradeVote {
	return Models.UpgradeVote{VoterID: voterID, IsApprove: false, VotedAt: time.Now()}
}

func TestBuildTally(t *testing.T) {
	votes := []Models.UpgradeVote{approveVote(1), approveVote(2), rejectVote(3)}
	tally := BuildTally(votes, 5)

	assert.Equal(t, 2, tally.VotesFor)
	assert.Equal(t, 1, tally.VotesAgainst)
	assert.Equal(t, 5, tally.TotalOwners)
}

func TestDecideSingleRejectionVetoes(t *testing.T) {
	// Even with every other owner approving, one rejection ends it.
	votes := []Models.UpgradeVote{approveVote(1), approveVote(2), approveVote(3), rejectVote(4)}
	tally := BuildTally(votes, 4)

	assert.Equal(t, Models.ProposalRejected, tally.Decide())
}

func TestDecideStrictMajority(t *testing.T) {
	tests := []struct {
		name     string
		approves int
		owners   int
		want     Models.ProposalStatus
	}{
		{"sole owner approves", 1, 1, Models.ProposalApproved},
		{"one of two is only half", 1, 2, Models.ProposalPending},
		{"two of two", 2, 2, Models.ProposalApproved},
		{"two of three", 2, 3, Models.ProposalApproved},
		{"one of three", 1, 3, Models.ProposalPending},
		{"exactly half of four stays pending", 2, 4, Models.ProposalPending},
		{"three of four", 3, 4, Models.ProposalApproved},
		{"three of six is only half", 3, 6, Models.ProposalPending},
		{"four of six", 4, 6, Models.ProposalApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var votes []Models.UpgradeVote
			for i := 0; i < tt.approves; i++ {
				votes = append(votes, approveVote(uint(i+1)))
			}
			tally := BuildTally(votes, tt.owners)
			assert.Equal(t, tt.want, tally.Decide())
		})
	}
}

func TestDecideNoVotesStaysPending(t *testing.T) {
	tally := BuildTally(nil, 3)
	assert.Equal(t, Models.ProposalPending, tally.Decide())
}
