package Upgrades

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"EVShare/Models"

	"gorm.io/gorm"
)

// maxRetries bounds the optimistic-lock retry loop for Vote/Execute/Cancel.
const maxRetries = 3

// NotifyFunc delivers a notification to a set of users. Delivery is best
// effort and happens after the owning transaction commits.
type NotifyFunc func(userIDs []uint, kind Models.NotificationKind, title, body, reference string)

// Engine owns the upgrade-proposal lifecycle: creation, vote tallying,
// decision evaluation and fund-gated execution. All status transitions commit
// through an optimistic version guard so concurrent callers serialize
// per proposal even across server processes.
type Engine struct {
	DB        *gorm.DB
	Directory CoOwnershipDirectory
	Ledger    FundLedger
	Roles     RoleChecker
	Clock     Clock
	Notify    NotifyFunc
}

// NewEngine wires the engine with gorm-backed collaborators.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		DB:        db,
		Directory: gormDirectory{},
		Ledger:    gormLedger{},
		Roles:     gormRoles{},
		Clock:     systemClock{},
	}
}

// ProposeInput carries the client-supplied fields of a new proposal.
type ProposeInput struct {
	VehicleID     uint
	ProposerID    uint
	UpgradeType   Models.UpgradeType
	Title         string
	Description   string
	Justification string
	EstimatedCost float64

	VendorName    string
	VendorContact string
	ImageURL      string

	ProposedInstallationDate *time.Time
	EstimatedDurationDays    int
}

// ProposalResult is a proposal together with its current tally.
type ProposalResult struct {
	Proposal Models.UpgradeProposal `json:"proposal"`
	Tally    Tally                  `json:"tally"`
}

var validUpgradeTypes = map[Models.UpgradeType]bool{
	Models.UpgradeBattery:     true,
	Models.UpgradeInsurance:   true,
	Models.UpgradeTechnology:  true,
	Models.UpgradeInterior:    true,
	Models.UpgradePerformance: true,
	Models.UpgradeSafety:      true,
	Models.UpgradeOther:       true,
}

// Propose creates a Pending proposal and, in the same transaction, the
// proposer's implicit approve vote.
func (e *Engine) Propose(in ProposeInput) (*ProposalResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, validation("title is required")
	}
	if in.EstimatedCost < 0 {
		return nil, validation("estimated cost cannot be negative")
	}
	if !validUpgradeTypes[in.UpgradeType] {
		return nil, validation(fmt.Sprintf("unknown upgrade type %q", in.UpgradeType))
	}

	var result ProposalResult
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		exists, err := e.Directory.VehicleExists(tx, in.VehicleID)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("vehicle not found")
		}

		isOwner, err := e.Directory.IsCoOwner(tx, in.VehicleID, in.ProposerID)
		if err != nil {
			return err
		}
		if !isOwner {
			return forbidden("only co-owners can propose upgrades")
		}

		proposal := Models.UpgradeProposal{
			VehicleID:                in.VehicleID,
			ProposerID:               in.ProposerID,
			UpgradeType:              in.UpgradeType,
			Title:                    strings.TrimSpace(in.Title),
			Description:              in.Description,
			Justification:            in.Justification,
			EstimatedCost:            in.EstimatedCost,
			VendorName:               in.VendorName,
			VendorContact:            in.VendorContact,
			ImageURL:                 in.ImageURL,
			ProposedInstallationDate: in.ProposedInstallationDate,
			EstimatedDurationDays:    in.EstimatedDurationDays,
			Status:                   Models.ProposalPending,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		// The proposer implicitly approves their own proposal.
		vote := Models.UpgradeVote{
			ProposalID: proposal.ID,
			VoterID:    in.ProposerID,
			IsApprove:  true,
			Comments:   "Proposed this upgrade",
			VotedAt:    e.Clock.Now(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		owners, err := e.Directory.GetCoOwners(tx, in.VehicleID)
		if err != nil {
			return err
		}

		proposal.Votes = []Models.UpgradeVote{vote}
		result.Proposal = proposal
		result.Tally = BuildTally(proposal.Votes, len(owners))

		// A sole owner approves their own proposal outright.
		if next := result.Tally.Decide(); next == Models.ProposalApproved {
			res := tx.Model(&Models.UpgradeProposal{}).
				Where("id = ? AND version = ?", proposal.ID, proposal.Version).
				Updates(map[string]interface{}{
					"status":  Models.ProposalApproved,
					"version": proposal.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			result.Proposal.Status = Models.ProposalApproved
			result.Proposal.Version++
		}
		return nil
	})
	if err != nil {
		return nil, e.wrap(err)
	}

	e.notifyCoOwners(in.VehicleID, in.ProposerID, Models.NotificationProposal,
		"New upgrade proposal",
		fmt.Sprintf("%q was proposed for one of your vehicles", result.Proposal.Title),
		proposalRef(result.Proposal.ID))
	return &result, nil
}

// Vote records a co-owner's vote and immediately evaluates the decision rule
// against the vehicle's current co-owner set. A rejection vetoes the proposal;
// a strict majority of approvals approves it. The vote insert and any status
// transition commit atomically under the proposal's version guard.
func (e *Engine) Vote(proposalID, voterID uint, isApprove bool, comments string) (*ProposalResult, error) {
	var result ProposalResult
	var decided Models.ProposalStatus

	for attempt := 0; attempt < maxRetries; attempt++ {
		decided = ""
		err := e.DB.Transaction(func(tx *gorm.DB) error {
			var proposal Models.UpgradeProposal
			if err := tx.First(&proposal, proposalID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("proposal not found")
				}
				return err
			}

			if proposal.Status != Models.ProposalPending {
				return conflict("voting is closed for this proposal")
			}

			isOwner, err := e.Directory.IsCoOwner(tx, proposal.VehicleID, voterID)
			if err != nil {
				return err
			}
			if !isOwner {
				return forbidden("only co-owners can vote on upgrades")
			}

			var existing int64
			err = tx.Model(&Models.UpgradeVote{}).
				Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).
				Count(&existing).Error
			if err != nil {
				return err
			}
			if existing > 0 {
				return conflict("you have already voted on this proposal")
			}

			vote := Models.UpgradeVote{
				ProposalID: proposalID,
				VoterID:    voterID,
				IsApprove:  isApprove,
				Comments:   comments,
				VotedAt:    e.Clock.Now(),
			}
			if err := tx.Create(&vote).Error; err != nil {
				// Racing duplicate caught by the unique index.
				if strings.Contains(err.Error(), "UNIQUE constraint") ||
					strings.Contains(err.Error(), "Duplicate entry") {
					return conflict("you have already voted on this proposal")
				}
				return err
			}

			var votes []Models.UpgradeVote
			if err := tx.Where("proposal_id = ?", proposalID).Find(&votes).Error; err != nil {
				return err
			}
			owners, err := e.Directory.GetCoOwners(tx, proposal.VehicleID)
			if err != nil {
				return err
			}

			tally := BuildTally(votes, len(owners))
			next := tally.Decide()

			// Every vote bumps the version, decision or not, so two
			// concurrent votes cannot both evaluate against the same state.
			updates := map[string]interface{}{"version": proposal.Version + 1}
			if next != Models.ProposalPending {
				updates["status"] = next
			}
			res := tx.Model(&Models.UpgradeProposal{}).
				Where("id = ? AND version = ?", proposal.ID, proposal.Version).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}

			proposal.Status = next
			proposal.Version++
			proposal.Votes = votes
			result.Proposal = proposal
			result.Tally = tally
			if next != Models.ProposalPending {
				decided = next
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, e.wrap(err)
	}
	if result.Proposal.ID == 0 {
		return nil, conflict("proposal is being updated concurrently, please retry")
	}

	if decided != "" {
		e.notifyCoOwners(result.Proposal.VehicleID, 0, Models.NotificationProposal,
			fmt.Sprintf("Upgrade proposal %s", strings.ToLower(string(decided))),
			fmt.Sprintf("%q is now %s", result.Proposal.Title, strings.ToLower(string(decided))),
			proposalRef(result.Proposal.ID))
	}
	return &result, nil
}

// Execute debits the vehicle fund and marks the proposal executed in one
// transaction. Either both happen or neither: a failed debit (including a
// concurrent debit that drained the fund) rolls the status transition back.
func (e *Engine) Execute(proposalID, actorID uint, actualCost float64, executionNotes, invoiceImageURL string) (*ProposalResult, error) {
	if actualCost < 0 {
		return nil, validation("actual cost cannot be negative")
	}

	var result ProposalResult
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := e.DB.Transaction(func(tx *gorm.DB) error {
			var proposal Models.UpgradeProposal
			if err := tx.First(&proposal, proposalID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("proposal not found")
				}
				return err
			}

			switch proposal.Status {
			case Models.ProposalExecuted:
				return conflict("proposal has already been executed")
			case Models.ProposalApproved:
				// proceed
			default:
				return conflict("only approved proposals can be executed")
			}

			if err := e.requireAdminOrProposer(tx, &proposal, actorID, "execute"); err != nil {
				return err
			}

			balance, err := e.Ledger.Balance(tx, proposal.VehicleID)
			if err != nil {
				if errors.Is(err, ErrFundNotFound) {
					return notFound("vehicle fund not found")
				}
				return err
			}
			if balance < actualCost {
				return insufficientFunds(fmt.Sprintf(
					"fund balance %.2f is less than actual cost %.2f", balance, actualCost))
			}

			// The guarded debit re-validates the balance; the read above only
			// produces a friendlier error for the common case.
			err = e.Ledger.Debit(tx, proposal.VehicleID, actualCost, actorID,
				Models.TransactionUpgradeExpense, proposalRef(proposal.ID), proposal.Title)
			if err != nil {
				if errors.Is(err, ErrInsufficientBalance) {
					return insufficientFunds("fund balance is insufficient")
				}
				if errors.Is(err, ErrFundNotFound) {
					return notFound("vehicle fund not found")
				}
				return err
			}

			now := e.Clock.Now()
			res := tx.Model(&Models.UpgradeProposal{}).
				Where("id = ? AND version = ?", proposal.ID, proposal.Version).
				Updates(map[string]interface{}{
					"status":            Models.ProposalExecuted,
					"actual_cost":       actualCost,
					"execution_notes":   executionNotes,
					"invoice_image_url": invoiceImageURL,
					"executed_at":       now,
					"version":           proposal.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}

			proposal.Status = Models.ProposalExecuted
			proposal.ActualCost = &actualCost
			proposal.ExecutionNotes = executionNotes
			proposal.InvoiceImageURL = invoiceImageURL
			proposal.ExecutedAt = &now
			proposal.Version++
			result.Proposal = proposal

			var votes []Models.UpgradeVote
			if err := tx.Where("proposal_id = ?", proposalID).Find(&votes).Error; err != nil {
				return err
			}
			owners, err := e.Directory.GetCoOwners(tx, proposal.VehicleID)
			if err != nil {
				return err
			}
			result.Proposal.Votes = votes
			result.Tally = BuildTally(votes, len(owners))
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, e.wrap(err)
	}
	if result.Proposal.ID == 0 {
		return nil, conflict("proposal is being updated concurrently, please retry")
	}

	e.notifyCoOwners(result.Proposal.VehicleID, 0, Models.NotificationProposal,
		"Upgrade executed",
		fmt.Sprintf("%q was executed for %.2f from the vehicle fund", result.Proposal.Title, actualCost),
		proposalRef(result.Proposal.ID))
	return &result, nil
}

// Cancel withdraws a Pending or Approved proposal. Funds are only ever
// debited at execution, so cancelling never touches the ledger.
func (e *Engine) Cancel(proposalID, actorID uint) (*ProposalResult, error) {
	var result ProposalResult
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := e.DB.Transaction(func(tx *gorm.DB) error {
			var proposal Models.UpgradeProposal
			if err := tx.First(&proposal, proposalID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("proposal not found")
				}
				return err
			}

			switch proposal.Status {
			case Models.ProposalExecuted:
				return conflict("an executed proposal cannot be cancelled")
			case Models.ProposalRejected:
				return conflict("proposal has already been rejected")
			case Models.ProposalCancelled:
				return conflict("proposal has already been cancelled")
			}

			if err := e.requireAdminOrProposer(tx, &proposal, actorID, "cancel"); err != nil {
				return err
			}

			res := tx.Model(&Models.UpgradeProposal{}).
				Where("id = ? AND version = ?", proposal.ID, proposal.Version).
				Updates(map[string]interface{}{
					"status":  Models.ProposalCancelled,
					"version": proposal.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}

			proposal.Status = Models.ProposalCancelled
			proposal.Version++
			result.Proposal = proposal
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, e.wrap(err)
	}
	if result.Proposal.ID == 0 {
		return nil, conflict("proposal is being updated concurrently, please retry")
	}

	e.notifyCoOwners(result.Proposal.VehicleID, actorID, Models.NotificationProposal,
		"Upgrade proposal cancelled",
		fmt.Sprintf("%q was cancelled", result.Proposal.Title),
		proposalRef(result.Proposal.ID))
	return &result, nil
}

// GetProposalDetails returns the proposal with its votes and current tally.
func (e *Engine) GetProposalDetails(proposalID uint) (*ProposalResult, error) {
	var proposal Models.UpgradeProposal
	err := e.DB.Preload("Votes").Preload("Proposer").First(&proposal, proposalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("proposal not found")
		}
		return nil, internal(err)
	}

	owners, err := e.Directory.GetCoOwners(e.DB, proposal.VehicleID)
	if err != nil {
		return nil, internal(err)
	}
	return &ProposalResult{
		Proposal: proposal,
		Tally:    BuildTally(proposal.Votes, len(owners)),
	}, nil
}

// GetPendingUpgradesForVehicle lists the vehicle's open proposals with
// tallies.
func (e *Engine) GetPendingUpgradesForVehicle(vehicleID uint) ([]ProposalResult, error) {
	exists, err := e.Directory.VehicleExists(e.DB, vehicleID)
	if err != nil {
		return nil, internal(err)
	}
	if !exists {
		return nil, notFound("vehicle not found")
	}

	var proposals []Models.UpgradeProposal
	err = e.DB.Preload("Votes").
		Where("vehicle_id = ? AND status = ?", vehicleID, Models.ProposalPending).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, internal(err)
	}

	owners, err := e.Directory.GetCoOwners(e.DB, vehicleID)
	if err != nil {
		return nil, internal(err)
	}

	results := make([]ProposalResult, 0, len(proposals))
	for _, p := range proposals {
		results = append(results, ProposalResult{
			Proposal: p,
			Tally:    BuildTally(p.Votes, len(owners)),
		})
	}
	return results, nil
}

// GetUserVotingHistory lists a user's votes, newest first.
func (e *Engine) GetUserVotingHistory(userID uint) ([]Models.UpgradeVote, error) {
	var votes []Models.UpgradeVote
	err := e.DB.Preload("Proposal").
		Where("voter_id = ?", userID).
		Order("voted_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, internal(err)
	}
	return votes, nil
}

// VehicleUpgradeStats aggregates a vehicle's proposal activity.
type VehicleUpgradeStats struct {
	VehicleID        uint                            `json:"vehicle_id"`
	TotalProposals   int64                           `json:"total_proposals"`
	CountsByStatus   map[Models.ProposalStatus]int64 `json:"counts_by_status"`
	TotalExecuted    int64                           `json:"total_executed"`
	TotalSpent       float64                         `json:"total_spent"`
	PendingEstimated float64                         `json:"pending_estimated_cost"`
}

// GetVehicleStatistics summarises proposal counts and upgrade spend.
func (e *Engine) GetVehicleStatistics(vehicleID uint) (*VehicleUpgradeStats, error) {
	exists, err := e.Directory.VehicleExists(e.DB, vehicleID)
	if err != nil {
		return nil, internal(err)
	}
	if !exists {
		return nil, notFound("vehicle not found")
	}

	stats := VehicleUpgradeStats{
		VehicleID:      vehicleID,
		CountsByStatus: map[Models.ProposalStatus]int64{},
	}

	type statusCount struct {
		Status Models.ProposalStatus
		Count  int64
	}
	var rows []statusCount
	err = e.DB.Model(&Models.UpgradeProposal{}).
		Select("status, count(*) as count").
		Where("vehicle_id = ?", vehicleID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err)
	}
	for _, r := range rows {
		stats.CountsByStatus[r.Status] = r.Count
		stats.TotalProposals += r.Count
	}
	stats.TotalExecuted = stats.CountsByStatus[Models.ProposalExecuted]

	err = e.DB.Model(&Models.UpgradeProposal{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, Models.ProposalExecuted).
		Select("COALESCE(SUM(actual_cost), 0)").
		Scan(&stats.TotalSpent).Error
	if err != nil {
		return nil, internal(err)
	}

	err = e.DB.Model(&Models.UpgradeProposal{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, Models.ProposalPending).
		Select("COALESCE(SUM(estimated_cost), 0)").
		Scan(&stats.PendingEstimated).Error
	if err != nil {
		return nil, internal(err)
	}
	return &stats, nil
}

func (e *Engine) requireAdminOrProposer(tx *gorm.DB, proposal *Models.UpgradeProposal, actorID uint, action string) error {
	if actorID == proposal.ProposerID {
		return nil
	}
	isAdmin, err := e.Roles.IsAdmin(tx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return forbidden(fmt.Sprintf("only an admin or the proposer can %s this proposal", action))
	}
	return nil
}

// notifyCoOwners fans a notification out to the vehicle's co-owners,
// optionally skipping one user (the actor). Best effort.
func (e *Engine) notifyCoOwners(vehicleID, skipUserID uint, kind Models.NotificationKind, title, body, reference string) {
	if e.Notify == nil {
		return
	}
	owners, err := e.Directory.GetCoOwners(e.DB, vehicleID)
	if err != nil {
		return
	}
	ids := make([]uint, 0, len(owners))
	for _, o := range owners {
		if o.UserID == skipUserID {
			continue
		}
		ids = append(ids, o.UserID)
	}
	if len(ids) > 0 {
		e.Notify(ids, kind, title, body, reference)
	}
}

// wrap converts transaction errors into engine errors, passing typed ones
// through untouched.
func (e *Engine) wrap(err error) error {
	if engineErr, ok := AsEngineError(err); ok {
		return engineErr
	}
	return internal(err)
}

func proposalRef(id uint) string {
	return fmt.Sprintf("upgrade-proposal:%d", id)
}
