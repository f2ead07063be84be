package Controllers

import (
	"strconv"
	"time"

	"EVShare/Models"
	"EVShare/Upgrades"

	"github.com/gofiber/fiber/v2"
)

// UpgradeController is a thin HTTP layer over the upgrade-proposal engine:
// parse the request, call the engine, map the typed error to a status code.
type UpgradeController struct {
	Engine *Upgrades.Engine
}

func NewUpgradeController(engine *Upgrades.Engine) *UpgradeController {
	return &UpgradeController{Engine: engine}
}

func engineError(ctx *fiber.Ctx, err error) error {
	if e, ok := Upgrades.AsEngineError(err); ok {
		return ctx.Status(e.HTTPStatus()).JSON(fiber.Map{"error": e.Message, "kind": e.Kind})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

type ProposeUpgradeRequest struct {
	VehicleID     uint    `json:"vehicle_id" validate:"required"`
	UpgradeType   string  `json:"upgrade_type" validate:"required"`
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	Justification string  `json:"justification"`
	EstimatedCost float64 `json:"estimated_cost"`

	VendorName    string `json:"vendor_name"`
	VendorContact string `json:"vendor_contact"`
	ImageURL      string `json:"image_url"`

	ProposedInstallationDate string `json:"proposed_installation_date"`
	EstimatedDurationDays    int    `json:"estimated_duration_days"`
}

func (c *UpgradeController) Propose(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req ProposeUpgradeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	input := Upgrades.ProposeInput{
		VehicleID:             req.VehicleID,
		ProposerID:            user.ID,
		UpgradeType:           Models.UpgradeType(req.UpgradeType),
		Title:                 req.Title,
		Description:           req.Description,
		Justification:         req.Justification,
		EstimatedCost:         req.EstimatedCost,
		VendorName:            req.VendorName,
		VendorContact:         req.VendorContact,
		ImageURL:              req.ImageURL,
		EstimatedDurationDays: req.EstimatedDurationDays,
	}
	if req.ProposedInstallationDate != "" {
		date, err := time.Parse("2006-01-02", req.ProposedInstallationDate)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid proposed_installation_date, expected YYYY-MM-DD",
			})
		}
		input.ProposedInstallationDate = &date
	}

	result, err := c.Engine.Propose(input)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(result)
}

type VoteRequest struct {
	IsApprove *bool  `json:"is_approve" validate:"required"`
	Comments  string `json:"comments"`
}

func (c *UpgradeController) Vote(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal ID"})
	}

	var req VoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.Engine.Vote(uint(id), user.ID, *req.IsApprove, req.Comments)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(result)
}

type ExecuteUpgradeRequest struct {
	ActualCost      float64 `json:"actual_cost" validate:"gte=0"`
	ExecutionNotes  string  `json:"execution_notes"`
	InvoiceImageURL string  `json:"invoice_image_url"`
}

func (c *UpgradeController) Execute(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal ID"})
	}

	var req ExecuteUpgradeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.Engine.Execute(uint(id), user.ID, req.ActualCost, req.ExecutionNotes, req.InvoiceImageURL)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(result)
}

func (c *UpgradeController) Cancel(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal ID"})
	}

	result, err := c.Engine.Cancel(uint(id), user.ID)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(result)
}

func (c *UpgradeController) GetProposal(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal ID"})
	}

	result, err := c.Engine.GetProposalDetails(uint(id))
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(result)
}

func (c *UpgradeController) GetPendingForVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	results, err := c.Engine.GetPendingUpgradesForVehicle(uint(id))
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(results)
}

func (c *UpgradeController) GetMyVotingHistory(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	votes, err := c.Engine.GetUserVotingHistory(user.ID)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(votes)
}

func (c *UpgradeController) GetVehicleStatistics(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	stats, err := c.Engine.GetVehicleStatistics(uint(id))
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(stats)
}
