package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"handyman-backend/billing"
	"handyman-backend/middlewares"
	"handyman-backend/models"
	"handyman-backend/utils"
)

type ClientInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type ClientUpdateInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Phone   *string `json:"phone" validate:"omitempty,min=1"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (h *Handlers) CreateClient(c *fiber.Ctx) error {
	var in ClientInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	client := models.Client{
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
		Notes:   in.Notes,
	}
	if err := h.DB.Create(&client).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create client")
	}

	h.record(billing.Entry{
		Action:     billing.ActionCreated,
		EntityType: "client",
		EntityID:   client.Id,
		EntityName: client.Name,
		UserName:   actor(c),
	})
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *Handlers) GetClients(c *fiber.Ctx) error {
	var clients []models.Client
	if err := h.DB.Order("created_at DESC").Find(&clients).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clients": clients})
}

func (h *Handlers) SearchClients(c *fiber.Ctx) error {
	like := "%" + strings.ToLower(c.Query("q")) + "%"
	var clients []models.Client
	err := h.DB.
		Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", like, like, like).
		Order("created_at DESC").
		Find(&clients).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clients": clients})
}

func (h *Handlers) GetClient(c *fiber.Ctx) error {
	var client models.Client
	if err := h.DB.Where("id = ?", c.Params("id")).First(&client).Error; err != nil {
		return billing.ErrNotFound
	}
	return c.JSON(client)
}

func (h *Handlers) UpdateClient(c *fiber.Ctx) error {
	var in ClientUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return h.GetClient(c)
	}

	res := h.DB.Model(&models.Client{}).Where("id = ?", c.Params("id")).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrNotFound
	}

	h.record(billing.Entry{
		Action:     billing.ActionUpdated,
		EntityType: "client",
		EntityID:   c.Params("id"),
		UserName:   actor(c),
		Details:    map[string]any{"changes": keysOf(updates)},
	})
	return h.GetClient(c)
}

// DeleteClient removes the client record only. Billing documents keep their
// contact snapshot and stay readable.
func (h *Handlers) DeleteClient(c *fiber.Ctx) error {
	var client models.Client
	if err := h.DB.Where("id = ?", c.Params("id")).First(&client).Error; err != nil {
		return billing.ErrNotFound
	}
	if err := h.DB.Delete(&client).Error; err != nil {
		return err
	}

	h.record(billing.Entry{
		Action:     billing.ActionDeleted,
		EntityType: "client",
		EntityID:   client.Id,
		EntityName: client.Name,
		UserName:   actor(c),
	})
	return c.JSON(fiber.Map{"message": "success"})
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
