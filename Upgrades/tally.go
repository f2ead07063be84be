package Upgrades

import (
	"EVShare/Models"
)

// Tally summarises the votes on a proposal against the vehicle's current
// co-owner count.
type Tally struct {
	VotesFor     int `json:"votes_for"`
	VotesAgainst int `json:"votes_against"`
	TotalOwners  int `json:"total_co_owners"`
}

// BuildTally counts the recorded votes. totalOwners is the size of the
// co-owner set at evaluation time, not the number of voters so far.
func BuildTally(votes []Models.UpgradeVote, totalOwners int) Tally {
	t := Tally{TotalOwners: totalOwners}
	for _, v := range votes {
		if v.IsApprove {
			t.VotesFor++
		} else {
			t.VotesAgainst++
		}
	}
	return t
}

// Decide applies the decision rule:
//   - any rejection vetoes the proposal immediately;
//   - otherwise a strict majority of all co-owners (votes_for > owners/2)
//     approves it; exactly half is not enough;
//   - otherwise the proposal stays pending.
func (t Tally) Decide() Models.ProposalStatus {
	if t.VotesAgainst > 0 {
		return Models.ProposalRejected
	}
	if 2*t.VotesFor > t.TotalOwners {
		return Models.ProposalApproved
	}
	return Models.ProposalPending
}
