package controllers

import (
	"github.com/gofiber/fiber/v2"

	"handyman-backend/middlewares"
	"handyman-backend/models"
	"handyman-backend/utils"
)

type SettingsUpdateInput struct {
	BusinessName    *string  `json:"business_name"`
	Phone           *string  `json:"phone"`
	Email           *string  `json:"email" validate:"omitempty,email"`
	Address         *string  `json:"address"`
	DefaultTaxRate  *float64 `json:"default_tax_rate" validate:"omitempty,gte=0"`
	EstimateDueDays *int     `json:"estimate_due_days" validate:"omitempty,gte=0"`
	InvoiceDueDays  *int     `json:"invoice_due_days" validate:"omitempty,gte=0"`
}

func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.settings())
}

func (h *Handlers) UpdateSettings(c *fiber.Ctx) error {
	var in SettingsUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := h.DB.Model(&models.Settings{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(h.settings())
}
