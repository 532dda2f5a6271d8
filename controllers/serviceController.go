package controllers

import (
	"github.com/gofiber/fiber/v2"

	"handyman-backend/billing"
	"handyman-backend/middlewares"
	"handyman-backend/models"
	"handyman-backend/utils"
)

type ServiceInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BasePrice   float64 `json:"base_price" validate:"gte=0"`
	Active      *bool   `json:"active"`
}

type ServiceUpdateInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	BasePrice   *float64 `json:"base_price" validate:"omitempty,gte=0"`
	Active      *bool    `json:"active"`
}

func (h *Handlers) CreateService(c *fiber.Ctx) error {
	var in ServiceInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	service := models.Service{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		BasePrice:   in.BasePrice,
		Active:      active,
	}
	if err := h.DB.Create(&service).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create service")
	}
	return c.Status(fiber.StatusCreated).JSON(service)
}

func (h *Handlers) GetServices(c *fiber.Ctx) error {
	q := h.DB.Model(&models.Service{})
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}
	var services []models.Service
	if err := q.Order("title").Find(&services).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"services": services})
}

func (h *Handlers) GetService(c *fiber.Ctx) error {
	var service models.Service
	if err := h.DB.Where("id = ?", c.Params("id")).First(&service).Error; err != nil {
		return billing.ErrNotFound
	}
	return c.JSON(service)
}

func (h *Handlers) UpdateService(c *fiber.Ctx) error {
	var in ServiceUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return h.GetService(c)
	}

	res := h.DB.Model(&models.Service{}).Where("id = ?", c.Params("id")).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrNotFound
	}
	return h.GetService(c)
}

func (h *Handlers) DeleteService(c *fiber.Ctx) error {
	res := h.DB.Where("id = ?", c.Params("id")).Delete(&models.Service{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrNotFound
	}
	return c.JSON(fiber.Map{"message": "success"})
}
