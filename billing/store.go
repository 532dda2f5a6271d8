package billing

import "handyman-backend/models"

// DocumentFilter narrows a listing. Zero value lists everything.
type DocumentFilter struct {
	Status   string // exact status match
	ClientID string // exact client match
	Query    string // case-insensitive substring over client name, code and (estimates) service name
}

// EstimateStore owns the estimate collection. UpdateByID and DeleteByID are
// atomic and report whether a row was affected, so callers never need a
// lookup-then-mutate pair to learn whether the id resolved.
type EstimateStore interface {
	Insert(e *models.Estimate) error
	Get(id string) (*models.Estimate, error)
	UpdateByID(id string, updates map[string]any) (bool, error)
	DeleteByID(id string) (bool, error)
	List(f DocumentFilter) ([]models.Estimate, error)
	// NextSeq returns the next free number for code generation. Estimate and
	// invoice sequences are independent namespaces.
	NextSeq() (int, error)
}

// InvoiceStore owns the invoice collection. Same contract as EstimateStore.
type InvoiceStore interface {
	Insert(inv *models.Invoice) error
	Get(id string) (*models.Invoice, error)
	UpdateByID(id string, updates map[string]any) (bool, error)
	DeleteByID(id string) (bool, error)
	List(f DocumentFilter) ([]models.Invoice, error)
	NextSeq() (int, error)
}

// ClientDirectory resolves the client snapshot taken at document write time.
type ClientDirectory interface {
	GetClient(id string) (*models.Client, error)
}

// ServiceDirectory resolves the optional catalog link on estimates.
type ServiceDirectory interface {
	GetService(id string) (*models.Service, error)
}

// BookingDirectory resolves the optional booking link on invoices.
type BookingDirectory interface {
	GetBooking(id string) (*models.Booking, error)
}
