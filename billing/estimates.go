package billing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"handyman-backend/models"
)

// EstimateService owns the estimate lifecycle: create, partial update,
// delete, status transitions and listing. The store and directories are
// injected; there is no package-level collection.
type EstimateService struct {
	Store    EstimateStore
	Clients  ClientDirectory
	Services ServiceDirectory
	Activity Recorder // optional; failures are swallowed

	// Strict enforces the transition tables in SetStatus. Off by default to
	// match the permissive contract callers rely on.
	Strict bool
}

type CreateEstimateInput struct {
	ClientID  string            `json:"client_id" validate:"required"`
	ServiceID string            `json:"service_id"`
	Items     []models.LineItem `json:"items" validate:"dive"`
	// TaxRate is a percent. Nil means 0; the HTTP layer substitutes the
	// configured default before calling in.
	TaxRate    *float64   `json:"tax_rate" validate:"omitempty,gte=0"`
	ValidUntil *time.Time `json:"valid_until"`
	Notes      string     `json:"notes"`
}

type UpdateEstimateInput struct {
	ClientID   *string            `json:"client_id"`
	ServiceID  *string            `json:"service_id"`
	Items      *[]models.LineItem `json:"items" validate:"omitempty,dive"`
	TaxRate    *float64           `json:"tax_rate" validate:"omitempty,gte=0"`
	ValidUntil *time.Time         `json:"valid_until"`
	Notes      *string            `json:"notes"`
}

// Create builds a draft estimate: snapshots the client, resolves the optional
// service link, drops undescribed items and computes the stored totals.
func (s *EstimateService) Create(in CreateEstimateInput, actor string) (*models.Estimate, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, invalid("client_id", "required")
	}
	client, err := s.Clients.GetClient(in.ClientID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("client_id", "unknown client")
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(client.Name) == "" || strings.TrimSpace(client.Phone) == "" {
		return nil, invalid("client_id", "client record is missing name or phone")
	}

	var serviceName string
	if in.ServiceID != "" {
		svc, err := s.Services.GetService(in.ServiceID)
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("service_id", "unknown service")
		}
		if err != nil {
			return nil, err
		}
		serviceName = svc.Title
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

	doc := &models.Estimate{
		Id:            uuid.NewString(),
		Code:          fmt.Sprintf("EST-%04d", seq),
		CId:           client.Id,
		ClientName:    client.Name,
		ClientPhone:   client.Phone,
		ClientEmail:   client.Email,
		ClientAddress: client.Address,
		ServiceId:     in.ServiceID,
		ServiceName:   serviceName,
		Items:         datatypes.NewJSONSlice(items),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        models.EstimateDraft,
		ValidUntil:    in.ValidUntil,
		Notes:         in.Notes,
	}
	if err := s.Store.Insert(doc); err != nil {
		return nil, err
	}

	record(s.Activity, Entry{
		Action:     ActionCreated,
		EntityType: "estimate",
		EntityID:   doc.Id,
		EntityName: doc.Code,
		UserName:   actor,
		Details:    map[string]any{"client_name": doc.ClientName, "total": doc.Total},
	})
	return doc, nil
}

// Update applies a partial field merge. Touching items or the tax rate
// recomputes the stored totals before anything is written; code and id are
// never part of the update set. When items change without a restated rate,
// the rate is reconstructed from the stored tax/subtotal.
func (s *EstimateService) Update(id string, in UpdateEstimateInput, actor string) (*models.Estimate, error) {
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
	if in.ServiceID != nil {
		if *in.ServiceID == "" {
			updates["service_id"] = ""
			updates["service_name"] = ""
		} else {
			svc, err := s.Services.GetService(*in.ServiceID)
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("service_id", "unknown service")
			}
			if err != nil {
				return nil, err
			}
			updates["service_id"] = svc.Id
			updates["service_name"] = svc.Title
		}
	}
	if in.ValidUntil != nil {
		updates["valid_until"] = in.ValidUntil
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
		EntityType: "estimate",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
		Details:    map[string]any{"changes": changedFields(updates)},
	})
	return s.Store.Get(id)
}

// Delete hard-removes the estimate. A miss is reported as ErrNotFound.
func (s *EstimateService) Delete(id, actor string) error {
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
		EntityType: "estimate",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
	})
	return nil
}

// SetStatus overwrites the stored status. Permissive unless Strict is set;
// either way the status must belong to the estimate vocabulary, so a typo
// can never corrupt the column. Strict mode checks the date-derived status,
// so a sent estimate past its ValidUntil counts as expired and accepts no
// further transitions.
func (s *EstimateService) SetStatus(id string, status models.EstimateStatus, actor string) (*models.Estimate, error) {
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown estimate status %q", status))
	}
	existing, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Strict && !EstimateTransitionAllowed(existing.EffectiveStatus(time.Now()), status) {
		return nil, invalid("status", fmt.Sprintf("transition %s -> %s not allowed", existing.Status, status))
	}

	affected, err := s.Store.UpdateByID(id, map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	if !affected {
		return nil, ErrNotFound
	}

	record(s.Activity, Entry{
		Action:     ActionUpdated,
		EntityType: "estimate",
		EntityID:   id,
		EntityName: existing.Code,
		UserName:   actor,
		Details:    map[string]any{"changes": []string{"status"}, "status": string(status)},
	})
	return s.Store.Get(id)
}

func (s *EstimateService) Get(id string) (*models.Estimate, error) {
	return s.Store.Get(id)
}

func (s *EstimateService) List(f DocumentFilter) ([]models.Estimate, error) {
	return s.Store.List(f)
}

// Search matches the query case-insensitively against client name, code and
// service name.
func (s *EstimateService) Search(query string) ([]models.Estimate, error) {
	return s.Store.List(DocumentFilter{Query: query})
}

func changedFields(updates map[string]any) []string {
	out := make([]string, 0, len(updates))
	for k := range updates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
