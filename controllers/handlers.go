package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"handyman-backend/billing"
	"handyman-backend/models"
)

// Handlers bundles the dependencies the route handlers need. Wired once in
// main; nothing here reaches for package-level state.
type Handlers struct {
	DB        *gorm.DB
	Estimates *billing.EstimateService
	Invoices  *billing.InvoiceService
	Activity  billing.Recorder
}

// actor returns the display name the auth middleware stashed for attribution.
func actor(c *fiber.Ctx) string {
	if name, ok := c.Locals("userName").(string); ok && name != "" {
		return name
	}
	return "admin"
}

// record writes an audit entry best-effort, same contract as the billing
// services: a dead sink never fails the request.
func (h *Handlers) record(e billing.Entry) {
	if h.Activity == nil {
		return
	}
	if err := h.Activity.Record(e); err != nil {
		log.Warn().Err(err).Str("entity_type", e.EntityType).Msg("activity record failed")
	}
}

// settings loads the single configuration row, falling back to the zero
// value so a missing row never blocks a request.
func (h *Handlers) settings() models.Settings {
	var s models.Settings
	h.DB.First(&s, 1)
	return s
}
