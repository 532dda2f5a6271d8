package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"handyman-backend/billing"
	"handyman-backend/middlewares"
	"handyman-backend/models"
)

func (h *Handlers) CreateInvoice(c *fiber.Ctx) error {
	var in billing.CreateInvoiceInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	cfg := h.settings()
	if in.TaxRate == nil {
		in.TaxRate = &cfg.DefaultTaxRate
	}
	if in.DueDate == nil && cfg.InvoiceDueDays > 0 {
		due := time.Now().AddDate(0, 0, cfg.InvoiceDueDays)
		in.DueDate = &due
	}

	doc, err := h.Invoices.Create(in, actor(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *Handlers) GetInvoices(c *fiber.Ctx) error {
	docs, err := h.Invoices.List(billing.DocumentFilter{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Query:    c.Query("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invoices": docs})
}

func (h *Handlers) SearchInvoices(c *fiber.Ctx) error {
	docs, err := h.Invoices.Search(c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invoices": docs})
}

func (h *Handlers) GetInvoice(c *fiber.Ctx) error {
	doc, err := h.Invoices.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *Handlers) UpdateInvoice(c *fiber.Ctx) error {
	var in billing.UpdateInvoiceInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.Invoices.Update(c.Params("id"), in, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *Handlers) DeleteInvoice(c *fiber.Ctx) error {
	if err := h.Invoices.Delete(c.Params("id"), actor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}

type invoiceStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handlers) SetInvoiceStatus(c *fiber.Ctx) error {
	var in invoiceStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.Invoices.SetStatus(c.Params("id"), models.InvoiceStatus(in.Status), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}
