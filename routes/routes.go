package routes

import (
	"github.com/gofiber/fiber/v2"

	"handyman-backend/controllers"
	"handyman-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handlers) {
	api := app.Group("/api")

	// All back-office endpoints sit behind the bearer-token boundary.
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating requests.
	protected.Use(middlewares.Idempotency(&middlewares.GormIdempotencyStore{DB: h.DB}))

	// Clients
	protected.Post("/clients", h.CreateClient)
	protected.Get("/clients", h.GetClients)
	protected.Get("/clients/search", h.SearchClients)
	protected.Get("/clients/:id", h.GetClient)
	protected.Put("/clients/:id", h.UpdateClient)
	protected.Delete("/clients/:id", h.DeleteClient)

	// Service catalog
	protected.Post("/services", h.CreateService)
	protected.Get("/services", h.GetServices)
	protected.Get("/services/:id", h.GetService)
	protected.Put("/services/:id", h.UpdateService)
	protected.Delete("/services/:id", h.DeleteService)

	// Bookings
	protected.Post("/bookings", h.CreateBooking)
	protected.Get("/bookings", h.GetBookings)
	protected.Get("/bookings/:id", h.GetBooking)
	protected.Put("/bookings/:id", h.UpdateBooking)
	protected.Put("/bookings/:id/status", h.SetBookingStatus)
	protected.Delete("/bookings/:id", h.DeleteBooking)

	// Estimates
	protected.Post("/estimates", h.CreateEstimate)
	protected.Get("/estimates", h.GetEstimates)
	protected.Get("/estimates/search", h.SearchEstimates)
	protected.Get("/estimates/:id", h.GetEstimate)
	protected.Put("/estimates/:id", h.UpdateEstimate)
	protected.Put("/estimates/:id/status", h.SetEstimateStatus)
	protected.Delete("/estimates/:id", h.DeleteEstimate)

	// Invoices
	protected.Post("/invoices", h.CreateInvoice)
	protected.Get("/invoices", h.GetInvoices)
	protected.Get("/invoices/search", h.SearchInvoices)
	protected.Get("/invoices/:id", h.GetInvoice)
	protected.Put("/invoices/:id", h.UpdateInvoice)
	protected.Put("/invoices/:id/status", h.SetInvoiceStatus)
	protected.Delete("/invoices/:id", h.DeleteInvoice)

	// Settings, dashboard, activity log
	protected.Get("/settings", h.GetSettings)
	protected.Put("/settings", h.UpdateSettings)
	protected.Get("/dashboard", h.GetDashboard)
	protected.Get("/activity", h.GetActivity)
}
