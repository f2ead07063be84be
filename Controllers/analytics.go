package Controllers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"EVShare/Models"
	"EVShare/Upgrades"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AnalyticsController aggregates usage, fund and upgrade numbers per vehicle.
type AnalyticsController struct {
	DB     *gorm.DB
	Engine *Upgrades.Engine
}

func NewAnalyticsController(db *gorm.DB, engine *Upgrades.Engine) *AnalyticsController {
	return &AnalyticsController{DB: db, Engine: engine}
}

type coOwnerUsage struct {
	UserID      uint    `json:"user_id"`
	Name        string  `json:"name"`
	Share       float64 `json:"ownership_percentage"`
	Bookings    int64   `json:"bookings"`
	BookedHours float64 `json:"booked_hours"`
}

type vehicleStatistics struct {
	VehicleID        uint                           `json:"vehicle_id"`
	BookingsByStatus map[Models.BookingStatus]int64 `json:"bookings_by_status"`
	TotalBookedHours float64                        `json:"total_booked_hours"`
	FundBalance      float64                        `json:"fund_balance"`
	TotalInflow      float64                        `json:"total_inflow"`
	TotalOutflow     float64                        `json:"total_outflow"`
	MaintenanceSpend float64                        `json:"maintenance_spend"`
	Upgrades         *Upgrades.VehicleUpgradeStats  `json:"upgrades"`
	CoOwnerUsage     []coOwnerUsage                 `json:"co_owner_usage"`
}

func (c *AnalyticsController) buildStatistics(vehicleID uint) (*vehicleStatistics, error) {
	stats := vehicleStatistics{
		VehicleID:        vehicleID,
		BookingsByStatus: map[Models.BookingStatus]int64{},
	}

	type statusCount struct {
		Status Models.BookingStatus
		Count  int64
	}
	var rows []statusCount
	err := c.DB.Model(&Models.Booking{}).
		Select("status, count(*) as count").
		Where("vehicle_id = ?", vehicleID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.BookingsByStatus[r.Status] = r.Count
	}

	var bookings []Models.Booking
	err = c.DB.Where("vehicle_id = ? AND status = ?", vehicleID, Models.BookingCompleted).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		stats.TotalBookedHours += b.EndTime.Sub(b.StartTime).Hours()
	}

	var fund Models.VehicleFund
	if err := c.DB.Where("vehicle_id = ?", vehicleID).First(&fund).Error; err == nil {
		stats.FundBalance = fund.Balance
	}

	err = c.DB.Model(&Models.FundTransaction{}).
		Where("vehicle_id = ? AND amount > 0", vehicleID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalInflow).Error
	if err != nil {
		return nil, err
	}
	err = c.DB.Model(&Models.FundTransaction{}).
		Where("vehicle_id = ? AND amount < 0", vehicleID).
		Select("COALESCE(-SUM(amount), 0)").
		Scan(&stats.TotalOutflow).Error
	if err != nil {
		return nil, err
	}

	err = c.DB.Model(&Models.MaintenanceRecord{}).
		Where("vehicle_id = ?", vehicleID).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&stats.MaintenanceSpend).Error
	if err != nil {
		return nil, err
	}

	upgradeStats, err := c.Engine.GetVehicleStatistics(vehicleID)
	if err != nil {
		return nil, err
	}
	stats.Upgrades = upgradeStats

	var ownerships []Models.CoOwnership
	if err := c.DB.Preload("User").Where("vehicle_id = ?", vehicleID).Find(&ownerships).Error; err != nil {
		return nil, err
	}
	for _, o := range ownerships {
		usage := coOwnerUsage{
			UserID: o.UserID,
			Name:   o.User.Name,
			Share:  o.OwnershipPercentage,
		}
		var userBookings []Models.Booking
		err := c.DB.Where("vehicle_id = ? AND user_id = ? AND status = ?",
			vehicleID, o.UserID, Models.BookingCompleted).
			Find(&userBookings).Error
		if err != nil {
			return nil, err
		}
		usage.Bookings = int64(len(userBookings))
		for _, b := range userBookings {
			usage.BookedHours += b.EndTime.Sub(b.StartTime).Hours()
		}
		stats.CoOwnerUsage = append(stats.CoOwnerUsage, usage)
	}

	return &stats, nil
}

// GetVehicleStatistics returns the aggregated numbers as JSON.
func (c *AnalyticsController) GetVehicleStatistics(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var vehicle Models.Vehicle
	if err := c.DB.First(&vehicle, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}

	stats, err := c.buildStatistics(uint(id))
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.JSON(stats)
}

// ExportVehicleStatistics streams the same numbers as an Excel workbook.
func (c *AnalyticsController) ExportVehicleStatistics(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var vehicle Models.Vehicle
	if err := c.DB.First(&vehicle, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}

	stats, err := c.buildStatistics(uint(id))
	if err != nil {
		return engineError(ctx, err)
	}

	buf, err := buildStatisticsWorkbook(&vehicle, stats)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	filename := fmt.Sprintf("vehicle-%s-statistics-%s.xlsx",
		vehicle.PlateNumber, time.Now().Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(buf.Bytes())
}

func buildStatisticsWorkbook(vehicle *Models.Vehicle, stats *vehicleStatistics) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "Statistics"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Vehicle %s (%s %s)",
		vehicle.PlateNumber, vehicle.Make, vehicle.VehicleModel))

	summary := [][]interface{}{
		{"Fund balance", stats.FundBalance},
		{"Total contributions", stats.TotalInflow},
		{"Total expenses", stats.TotalOutflow},
		{"Maintenance spend", stats.MaintenanceSpend},
		{"Upgrade spend", stats.Upgrades.TotalSpent},
		{"Total booked hours", stats.TotalBookedHours},
		{"Upgrade proposals", stats.Upgrades.TotalProposals},
		{"Executed upgrades", stats.Upgrades.TotalExecuted},
	}
	for i, row := range summary {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+3), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+3), row[1])
	}

	usageStart := len(summary) + 5
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", usageStart), "Co-owner")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", usageStart), "Share %")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", usageStart), "Completed bookings")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", usageStart), "Booked hours")
	for i, usage := range stats.CoOwnerUsage {
		row := usageStart + 1 + i
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), usage.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), usage.Share)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), usage.Bookings)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), usage.BookedHours)
	}

	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "D", 18)

	if defaultSheet := f.GetSheetName(0); defaultSheet != sheetName {
		f.DeleteSheet(defaultSheet)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
