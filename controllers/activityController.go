package controllers

import (
	"github.com/gofiber/fiber/v2"

	"handyman-backend/models"
	"handyman-backend/utils"
)

// GetActivity lists the latest audit entries, newest first.
func (h *Handlers) GetActivity(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	var entries []models.ActivityLog
	if err := h.DB.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"activity": entries})
}
