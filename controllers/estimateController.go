package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"handyman-backend/billing"
	"handyman-backend/middlewares"
	"handyman-backend/models"
)

func (h *Handlers) CreateEstimate(c *fiber.Ctx) error {
	var in billing.CreateEstimateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	cfg := h.settings()
	if in.TaxRate == nil {
		in.TaxRate = &cfg.DefaultTaxRate
	}
	if in.ValidUntil == nil && cfg.EstimateDueDays > 0 {
		until := time.Now().AddDate(0, 0, cfg.EstimateDueDays)
		in.ValidUntil = &until
	}

	doc, err := h.Estimates.Create(in, actor(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *Handlers) GetEstimates(c *fiber.Ctx) error {
	docs, err := h.Estimates.List(billing.DocumentFilter{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Query:    c.Query("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"estimates": docs})
}

func (h *Handlers) SearchEstimates(c *fiber.Ctx) error {
	docs, err := h.Estimates.Search(c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"estimates": docs})
}

func (h *Handlers) GetEstimate(c *fiber.Ctx) error {
	doc, err := h.Estimates.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *Handlers) UpdateEstimate(c *fiber.Ctx) error {
	var in billing.UpdateEstimateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.Estimates.Update(c.Params("id"), in, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *Handlers) DeleteEstimate(c *fiber.Ctx) error {
	if err := h.Estimates.Delete(c.Params("id"), actor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}

type estimateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handlers) SetEstimateStatus(c *fiber.Ctx) error {
	var in estimateStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.Estimates.SetStatus(c.Params("id"), models.EstimateStatus(in.Status), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}
