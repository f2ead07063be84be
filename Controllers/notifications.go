package Controllers

import (
	"strconv"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationController serves each user's notification feed.
type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications lists the caller's notifications, unread first.
func (c *NotificationController) GetNotifications(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var notifications []Models.Notification
	err := c.DB.Where("user_id = ?", user.ID).
		Order("read ASC, created_at DESC").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve notifications"})
	}
	return ctx.JSON(notifications)
}

// MarkRead marks one notification as read.
func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	var notification Models.Notification
	result := c.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	if err := c.DB.Model(&notification).Update("read", true).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	return ctx.JSON(notification)
}

// MarkAllRead marks every unread notification of the caller as read.
func (c *NotificationController) MarkAllRead(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	err := c.DB.Model(&Models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}
	return ctx.JSON(fiber.Map{"message": "All notifications marked as read"})
}
