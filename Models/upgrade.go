package Models

import (
	"time"

	"gorm.io/gorm"
)

type UpgradeType string

const (
	UpgradeBattery     UpgradeType = "BatteryUpgrade"
	UpgradeInsurance   UpgradeType = "InsurancePackage"
	UpgradeTechnology  UpgradeType = "TechnologyUpgrade"
	UpgradeInterior    UpgradeType = "InteriorUpgrade"
	UpgradePerformance UpgradeType = "PerformanceUpgrade"
	UpgradeSafety      UpgradeType = "SafetyUpgrade"
	UpgradeOther       UpgradeType = "Other"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "Pending"
	ProposalApproved  ProposalStatus = "Approved"
	ProposalRejected  ProposalStatus = "Rejected"
	ProposalCancelled ProposalStatus = "Cancelled"
	ProposalExecuted  ProposalStatus = "Executed"
)

// AllowedProposalTransitions is the proposal state machine as a directed graph.
// Rejected, Cancelled and Executed are terminal.
var AllowedProposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalPending:   {ProposalApproved, ProposalRejected, ProposalCancelled},
	ProposalApproved:  {ProposalExecuted, ProposalCancelled},
	ProposalRejected:  {},
	ProposalCancelled: {},
	ProposalExecuted:  {},
}

// CanTransitionProposal reports whether from -> to is a legal status change.
func CanTransitionProposal(from, to ProposalStatus) bool {
	for _, s := range AllowedProposalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpgradeProposal is a co-owner's request to perform and fund a vehicle
// upgrade. Version is an optimistic-concurrency counter: every status
// evaluation commits through "UPDATE ... WHERE version = ?" so two concurrent
// votes can never both win a decision transition.
type UpgradeProposal struct {
	gorm.Model
	VehicleID  uint `json:"vehicle_id" gorm:"not null;index"`
	ProposerID uint `json:"proposer_id" gorm:"not null;index"`

	UpgradeType   UpgradeType `json:"upgrade_type" gorm:"size:30;not null"`
	Title         string      `json:"title" gorm:"size:255;not null"`
	Description   string      `json:"description" gorm:"type:text"`
	Justification string      `json:"justification" gorm:"type:text"`
	EstimatedCost float64     `json:"estimated_cost" gorm:"not null"`

	VendorName    string `json:"vendor_name" gorm:"size:255"`
	VendorContact string `json:"vendor_contact" gorm:"size:255"`
	ImageURL      string `json:"image_url" gorm:"size:500"`

	ProposedInstallationDate *time.Time `json:"proposed_installation_date"`
	EstimatedDurationDays    int        `json:"estimated_duration_days"`

	Status  ProposalStatus `json:"status" gorm:"size:20;not null;index;default:'Pending'"`
	Version int            `json:"-" gorm:"not null;default:0"`

	// Populated only on execution.
	ActualCost      *float64   `json:"actual_cost"`
	ExecutionNotes  string     `json:"execution_notes" gorm:"type:text"`
	InvoiceImageURL string     `json:"invoice_image_url" gorm:"size:500"`
	ExecutedAt      *time.Time `json:"executed_at"`

	Vehicle  Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Proposer User          `json:"proposer,omitempty" gorm:"foreignKey:ProposerID"`
	Votes    []UpgradeVote `json:"votes,omitempty" gorm:"foreignKey:ProposalID"`
}

// IsTerminal reports whether the proposal can no longer change status.
func (p *UpgradeProposal) IsTerminal() bool {
	return len(AllowedProposalTransitions[p.Status]) == 0
}

// UpgradeVote records one co-owner's vote. At most one vote per
// (proposal, voter); the proposer's approve vote is created with the proposal.
type UpgradeVote struct {
	gorm.Model
	ProposalID uint      `json:"proposal_id" gorm:"not null;uniqueIndex:idx_proposal_voter"`
	VoterID    uint      `json:"voter_id" gorm:"not null;uniqueIndex:idx_proposal_voter"`
	IsApprove  bool      `json:"is_approve" gorm:"not null"`
	Comments   string    `json:"comments" gorm:"size:1000"`
	VotedAt    time.Time `json:"voted_at" gorm:"not null"`

	Proposal UpgradeProposal `json:"proposal,omitempty" gorm:"foreignKey:ProposalID"`
	Voter    User            `json:"voter,omitempty" gorm:"foreignKey:VoterID"`
}
