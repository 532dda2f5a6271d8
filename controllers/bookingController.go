package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"handyman-backend/billing"
	"handyman-backend/middlewares"
	"handyman-backend/models"
	"handyman-backend/utils"
)

type BookingInput struct {
	ClientID    string     `json:"client_id" validate:"required"`
	ServiceID   string     `json:"service_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Address     string     `json:"address"`
	Price       float64    `json:"price" validate:"gte=0"`
	Notes       string     `json:"notes"`
}

type BookingUpdateInput struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Address     *string    `json:"address"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	Notes       *string    `json:"notes"`
}

func (h *Handlers) CreateBooking(c *fiber.Ctx) error {
	var in BookingInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var client models.Client
	if err := h.DB.Where("id = ?", in.ClientID).First(&client).Error; err != nil {
		return &billing.ValidationError{Field: "client_id", Reason: "unknown client"}
	}

	var serviceName string
	if in.ServiceID != "" {
		var service models.Service
		if err := h.DB.Where("id = ?", in.ServiceID).First(&service).Error; err != nil {
			return &billing.ValidationError{Field: "service_id", Reason: "unknown service"}
		}
		serviceName = service.Title
	}

	address := strings.TrimSpace(in.Address)
	if address == "" {
		address = client.Address
	}

	booking := models.Booking{
		Code:        h.nextBookingCode(),
		CId:         client.Id,
		ClientName:  client.Name,
		ServiceId:   in.ServiceID,
		ServiceName: serviceName,
		ScheduledAt: in.ScheduledAt,
		Address:     address,
		Price:       utils.Round2(in.Price),
		Status:      models.BookingPending,
		Notes:       in.Notes,
	}
	if err := h.DB.Create(&booking).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create booking")
	}

	h.record(billing.Entry{
		Action:     billing.ActionCreated,
		EntityType: "booking",
		EntityID:   booking.Id,
		EntityName: booking.Code,
		UserName:   actor(c),
		Details:    map[string]any{"client_name": booking.ClientName, "service_name": booking.ServiceName},
	})
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *Handlers) GetBookings(c *fiber.Ctx) error {
	q := h.DB.Model(&models.Booking{})
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	if id := c.Query("client_id"); id != "" {
		q = q.Where("client_id = ?", id)
	}
	var bookings []models.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *Handlers) GetBooking(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.Where("id = ?", c.Params("id")).First(&booking).Error; err != nil {
		return billing.ErrNotFound
	}
	return c.JSON(booking)
}

func (h *Handlers) UpdateBooking(c *fiber.Ctx) error {
	var in BookingUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if in.ScheduledAt != nil {
		updates["scheduled_at"] = in.ScheduledAt
	}
	if len(updates) == 0 {
		return h.GetBooking(c)
	}

	res := h.DB.Model(&models.Booking{}).Where("id = ?", c.Params("id")).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrNotFound
	}
	return h.GetBooking(c)
}

type bookingStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handlers) SetBookingStatus(c *fiber.Ctx) error {
	var in bookingStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	status := models.BookingStatus(in.Status)
	if !status.Valid() {
		return &billing.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown booking status %q", in.Status)}
	}

	res := h.DB.Model(&models.Booking{}).Where("id = ?", c.Params("id")).Updates(map[string]any{"status": status})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrNotFound
	}

	h.record(billing.Entry{
		Action:     billing.ActionUpdated,
		EntityType: "booking",
		EntityID:   c.Params("id"),
		UserName:   actor(c),
		Details:    map[string]any{"changes": []string{"status"}, "status": string(status)},
	})
	return h.GetBooking(c)
}

func (h *Handlers) DeleteBooking(c *fiber.Ctx) error {
	var booking models.Booking
	if err := h.DB.Where("id = ?", c.Params("id")).First(&booking).Error; err != nil {
		return billing.ErrNotFound
	}
	if err := h.DB.Delete(&booking).Error; err != nil {
		return err
	}

	h.record(billing.Entry{
		Action:     billing.ActionDeleted,
		EntityType: "booking",
		EntityID:   booking.Id,
		EntityName: booking.Code,
		UserName:   actor(c),
	})
	return c.JSON(fiber.Map{"message": "success"})
}

// nextBookingCode generates the next BKG- code from the highest stored one.
// Codes are zero-padded, so ORDER BY code finds the max.
func (h *Handlers) nextBookingCode() string {
	var code string
	h.DB.Model(&models.Booking{}).Select("code").Order("code DESC").Limit(1).Scan(&code)
	seq := 0
	if i := strings.LastIndexByte(code, '-'); i >= 0 {
		if n, err := strconv.Atoi(code[i+1:]); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("BKG-%04d", seq+1)
}
