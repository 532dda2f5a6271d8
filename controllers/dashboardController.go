package controllers

import (
	"github.com/gofiber/fiber/v2"

	"handyman-backend/models"
)

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetDashboard aggregates the admin landing numbers: entity counts, bookings
// per status, revenue from paid invoices, outstanding sent invoices, pending
// estimates and the latest activity.
func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	var clients, services, bookings, estimates, invoices int64
	if err := h.DB.Model(&models.Client{}).Count(&clients).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.Service{}).Count(&services).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.Booking{}).Count(&bookings).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.Estimate{}).Count(&estimates).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&models.Invoice{}).Count(&invoices).Error; err != nil {
		return err
	}

	var bookingsByStatus []statusCount
	err := h.DB.Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&bookingsByStatus).Error
	if err != nil {
		return err
	}

	var revenue float64
	err = h.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoicePaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	if err != nil {
		return err
	}

	var outstanding float64
	err = h.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceSent).
		Select("COALESCE(SUM(total), 0)").
		Scan(&outstanding).Error
	if err != nil {
		return err
	}

	var pendingEstimates int64
	err = h.DB.Model(&models.Estimate{}).
		Where("status IN ?", []models.EstimateStatus{models.EstimateDraft, models.EstimateSent}).
		Count(&pendingEstimates).Error
	if err != nil {
		return err
	}

	var recent []models.ActivityLog
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"counts": fiber.Map{
			"clients":   clients,
			"services":  services,
			"bookings":  bookings,
			"estimates": estimates,
			"invoices":  invoices,
		},
		"bookings_by_status": bookingsByStatus,
		"revenue":            revenue,
		"outstanding":        outstanding,
		"pending_estimates":  pendingEstimates,
		"recent_activity":    recent,
	})
}
