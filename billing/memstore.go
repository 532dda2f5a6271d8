package billing

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"handyman-backend/models"
)

// In-memory stores. Used by the test suite and usable as a throwaway backend
// for local runs; same contract as the GORM stores.

type MemoryEstimateStore struct {
	mu   sync.RWMutex
	docs map[string]*models.Estimate
	seq  int
}

func NewMemoryEstimateStore() *MemoryEstimateStore {
	return &MemoryEstimateStore{docs: make(map[string]*models.Estimate)}
}

func (s *MemoryEstimateStore) Insert(e *models.Estimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	cp := *e
	s.docs[e.Id] = &cp
	return nil
}

func (s *MemoryEstimateStore) Get(id string) (*models.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *MemoryEstimateStore) UpdateByID(id string, updates map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	for k, v := range updates {
		applyEstimateField(doc, k, v)
	}
	doc.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryEstimateStore) DeleteByID(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

func (s *MemoryEstimateStore) List(f DocumentFilter) ([]models.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Estimate, 0, len(s.docs))
	for _, doc := range s.docs {
		if f.Status != "" && string(doc.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && doc.CId != f.ClientID {
			continue
		}
		if f.Query != "" && !matchesQuery(f.Query, doc.ClientName, doc.Code, doc.ServiceName) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryEstimateStore) NextSeq() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

type MemoryInvoiceStore struct {
	mu   sync.RWMutex
	docs map[string]*models.Invoice
	seq  int
}

func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{docs: make(map[string]*models.Invoice)}
}

func (s *MemoryInvoiceStore) Insert(inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.Id == "" {
		inv.Id = uuid.NewString()
	}
	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	cp := *inv
	s.docs[inv.Id] = &cp
	return nil
}

func (s *MemoryInvoiceStore) Get(id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *MemoryInvoiceStore) UpdateByID(id string, updates map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	for k, v := range updates {
		applyInvoiceField(doc, k, v)
	}
	doc.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryInvoiceStore) DeleteByID(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

func (s *MemoryInvoiceStore) List(f DocumentFilter) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.docs))
	for _, doc := range s.docs {
		if f.Status != "" && string(doc.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && doc.CId != f.ClientID {
			continue
		}
		if f.Query != "" && !matchesQuery(f.Query, doc.ClientName, doc.Code) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryInvoiceStore) NextSeq() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func matchesQuery(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// applyEstimateField mirrors the column names the services put into an
// updates map. Unknown keys are ignored, matching a DB UPDATE that names no
// such column only in that nothing else is touched.
func applyEstimateField(doc *models.Estimate, key string, val any) {
	switch key {
	case "client_id":
		if v, ok := val.(string); ok {
			doc.CId = v
		}
	case "client_name":
		if v, ok := val.(string); ok {
			doc.ClientName = v
		}
	case "client_phone":
		if v, ok := val.(string); ok {
			doc.ClientPhone = v
		}
	case "client_email":
		if v, ok := val.(string); ok {
			doc.ClientEmail = v
		}
	case "client_address":
		if v, ok := val.(string); ok {
			doc.ClientAddress = v
		}
	case "service_id":
		if v, ok := val.(string); ok {
			doc.ServiceId = v
		}
	case "service_name":
		if v, ok := val.(string); ok {
			doc.ServiceName = v
		}
	case "items":
		if v, ok := val.(datatypes.JSONSlice[models.LineItem]); ok {
			doc.Items = v
		}
	case "subtotal":
		if v, ok := val.(float64); ok {
			doc.Subtotal = v
		}
	case "tax":
		if v, ok := val.(float64); ok {
			doc.Tax = v
		}
	case "total":
		if v, ok := val.(float64); ok {
			doc.Total = v
		}
	case "status":
		if v, ok := val.(models.EstimateStatus); ok {
			doc.Status = v
		}
	case "valid_until":
		if v, ok := val.(*time.Time); ok {
			doc.ValidUntil = v
		}
	case "notes":
		if v, ok := val.(string); ok {
			doc.Notes = v
		}
	}
}

func applyInvoiceField(doc *models.Invoice, key string, val any) {
	switch key {
	case "client_id":
		if v, ok := val.(string); ok {
			doc.CId = v
		}
	case "client_name":
		if v, ok := val.(string); ok {
			doc.ClientName = v
		}
	case "client_phone":
		if v, ok := val.(string); ok {
			doc.ClientPhone = v
		}
	case "client_email":
		if v, ok := val.(string); ok {
			doc.ClientEmail = v
		}
	case "client_address":
		if v, ok := val.(string); ok {
			doc.ClientAddress = v
		}
	case "booking_id":
		if v, ok := val.(string); ok {
			doc.BookingId = v
		}
	case "items":
		if v, ok := val.(datatypes.JSONSlice[models.LineItem]); ok {
			doc.Items = v
		}
	case "subtotal":
		if v, ok := val.(float64); ok {
			doc.Subtotal = v
		}
	case "tax":
		if v, ok := val.(float64); ok {
			doc.Tax = v
		}
	case "total":
		if v, ok := val.(float64); ok {
			doc.Total = v
		}
	case "status":
		if v, ok := val.(models.InvoiceStatus); ok {
			doc.Status = v
		}
	case "due_date":
		if v, ok := val.(*time.Time); ok {
			doc.DueDate = v
		}
	case "paid_at":
		if v, ok := val.(*time.Time); ok {
			doc.PaidAt = v
		}
	case "notes":
		if v, ok := val.(string); ok {
			doc.Notes = v
		}
	}
}
