package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"handyman-backend/models"
)

// InvoiceService owns the invoice lifecycle. Same shape as EstimateService;
// invoices link a booking instead of a catalog service and stamp PaidAt on
// the paid transition.
type InvoiceService struct {
	Store    InvoiceStore
	Clients  ClientDirectory
	Bookings BookingDirectory
	Activity Recorder

	Strict bool
}

type CreateInvoiceInput struct {
	// ClientID may be omitted when BookingID is set; the booking's client is
	// used then.
	ClientID  string            `json:"client_id"`
	BookingID string            `json:"booking_id"`
	Items     []models.LineItem `json:"items" validate:"dive"`
	// TaxRate is a percent. Nil means 0; the HTTP layer substitutes the
	// configured default before calling in.
	TaxRate *float64   `json:"tax_rate" validate:"omitempty,gte=0"`
	DueDate *time.Time `json:"due_date"`
	Notes   string     `json:"notes"`
}

type UpdateInvoiceInput struct {
	ClientID  *string            `json:"client_id"`
	BookingID *string            `json:"booking_id"`
	Items     *[]models.LineItem `json:"items" validate:"omitempty,dive"`
	TaxRate   *float64           `json:"tax_rate" validate:"omitempty,gte=0"`
	DueDate   *time.Time         `json:"due_date"`
	Notes     *string            `json:"notes"`
}

// Create builds a draft invoice. The booking link is informational: it never
// feeds the totals, which come from the line items alone.
func (s *InvoiceService) Create(in CreateInvoiceInput, actor string) (*models.Invoice, error) {
	clientID := strings.TrimSpace(in.ClientID)

	if in.BookingID != "" {
		booking, err := s.Bookings.GetBooking(in.BookingID)
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("booking_id", "unknown booking")
		}
		if err != nil {
			return nil, err
		}
		if clientID == "" {
			clientID = booking.CId
		}
	}
	if clientID == "" {
		return nil, invalid("client_id", "required")
	}

	client, err := s.Clients.GetClient(clientID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("client_id", "unknown client")
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(client.Name) == "" || strings.TrimSpace(client.Phone) == "" {
		return nil, invalid("client_id", "client record is missing name or phone")
	}

	items := CommittedItems(in.Items)
	rate := 0.0
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	totals := ComputeTotals(items, rate)

	seq, err := s.Store.NextSeq()
	if err != nil {
		return nil, err
	}

	doc := &models.Invoice{
		Id:            uuid.NewString(),
		Code:          fmt.Sprintf("INV-%04d", seq),
		CId:           client.Id,
		ClientName:    client.Name,
		ClientPhone:   client.Phone,
		ClientEmail:   client.Email,
		ClientAddress: client.Address,
		BookingId:     in.BookingID,
		Items:         datatypes.NewJSONSlice(items),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        models.InvoiceDraft,
		DueDate:       in.DueDate,
		Notes:         in.Notes,
	}
	if err := s.Store.Insert(doc); err != nil {
		return nil, err
	}

	record(s.Activity, Entry{
		Action:     ActionCreated,
		EntityType: "invoice",
		EntityID:   doc.Id,
		EntityName: doc.Code,
		UserName:   actor,
		Details:    map[string]any{"client_name": doc.ClientName, "total": doc.Total},
	})
	return doc, nil
}

// Update applies a partial field merge with the same recompute rules as
// estimates.
func (s *InvoiceService) Update(id string, in UpdateInvoiceInput, actor string) (*models.Invoice, error) {
	existing, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if in.ClientID != nil {
		client, err := s.Clients.GetClient(*in.ClientID)
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("client_id", "unknown client")
		}
		if err != nil {
			return nil, err
		}
		updates["client_id"] = client.Id
		updates["client_name"] = client.Name
		updates["client_phone"] = client.Phone
		updates["client_email"] = client.Email
		updates["client_address"] = client.Address
	}
	if in.BookingID != nil {
		if *in.BookingID == "" {
			updates["booking_id"] = ""
		} else {
			if _, err := s.Bookings.GetBooking(*in.BookingID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, invalid("booking_id", "unknown booking")
				}
				return nil, err
			}
			updates["booking_id"] = *in.BookingID
		}
	}
	if in.DueDate != nil {
		updates["due_date"] = in.DueDate
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	if in.Items != nil || in.TaxRate != nil {
		items := []models.LineItem(existing.Items)
		if in.Items != nil {
			items = CommittedItems(*in.Items)
		}
		rate := effectiveRate(existing.Subtotal, existing.Tax)
		if in.TaxRate != nil {
			rate = *in.TaxRate
		}
		totals := ComputeTotals(items, rate)
		updates["items"] = datatypes.NewJSONSlice(items)
		updates["subtotal"] = totals.Subtotal
		updates["tax"] = totals.Tax
		updates["total"] = totals.Total
	}

	if len(updates) == 0 {
		return existing, nil
	}

	affected, err := s.Store.UpdateByID(id, updates)
	if err != nil {
		return nil, err
	}
	if !affected {
		return nil, ErrNotFound
	}

	record(s.Activity, Entry{
		Action:     ActionUpdated,
		EntityType: "invoice",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
		Details:    map[string]any{"changes": changedFields(updates)},
	})
	return s.Store.Get(id)
}

// Delete hard-removes the invoice. A miss is reported as ErrNotFound.
func (s *InvoiceService) Delete(id, actor string) error {
	existing, err := s.Store.Get(id)
	if err != nil {
		return err
	}
	affected, err := s.Store.DeleteByID(id)
	if err != nil {
		return err
	}
	if !affected {
		return ErrNotFound
	}
	record(s.Activity, Entry{
		Action:     ActionDeleted,
		EntityType: "invoice",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
	})
	return nil
}

// SetStatus overwrites the stored status; the paid transition stamps PaidAt
// once. Works from both sent and the date-derived overdue state.
func (s *InvoiceService) SetStatus(id string, status models.InvoiceStatus, actor string) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown invoice status %q", status))
	}
	existing, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Strict && !InvoiceTransitionAllowed(existing.EffectiveStatus(time.Now()), status) {
		return nil, invalid("status", fmt.Sprintf("transition %s -> %s not allowed", existing.Status, status))
	}

	updates := map[string]any{"status": status}
	if status == models.InvoicePaid && existing.PaidAt == nil {
		now := time.Now()
		updates["paid_at"] = &now
	}

	affected, err := s.Store.UpdateByID(id, updates)
	if err != nil {
		return nil, err
	}
	if !affected {
		return nil, ErrNotFound
	}

	record(s.Activity, Entry{
		Action:     ActionUpdated,
		EntityType: "invoice",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
		Details:    map[string]any{"changes": []string{"status"}, "status": string(status)},
	})
	return s.Store.Get(id)
}

func (s *InvoiceService) Get(id string) (*models.Invoice, error) {
	return s.Store.Get(id)
}

func (s *InvoiceService) List(f DocumentFilter) ([]models.Invoice, error) {
	return s.Store.List(f)
}

// Search matches the query case-insensitively against client name and code.
func (s *InvoiceService) Search(query string) ([]models.Invoice, error) {
	return s.Store.List(DocumentFilter{Query: query})
}
