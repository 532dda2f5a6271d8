package billing

import (
	"errors"

	"handyman-backend/models"
)

// stubDirectory serves fixed clients/services/bookings to the services under
// test.
type stubDirectory struct {
	clients  map[string]*models.Client
	services map[string]*models.Service
	bookings map[string]*models.Booking
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		clients:  make(map[string]*models.Client),
		services: make(map[string]*models.Service),
		bookings: make(map[string]*models.Booking),
	}
}

func (d *stubDirectory) GetClient(id string) (*models.Client, error) {
	c, ok := d.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (d *stubDirectory) GetService(id string) (*models.Service, error) {
	s, ok := d.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (d *stubDirectory) GetBooking(id string) (*models.Booking, error) {
	b, ok := d.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// captureRecorder collects entries so tests can assert on the audit stream.
type captureRecorder struct {
	entries []Entry
}

func (r *captureRecorder) Record(e Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

// failingRecorder simulates a dead audit sink.
type failingRecorder struct{}

func (failingRecorder) Record(Entry) error {
	return errors.New("sink down")
}

// panickingRecorder simulates a sink that blows up instead of returning an
// error.
type panickingRecorder struct{}

func (panickingRecorder) Record(Entry) error {
	panic("sink panic")
}

func strPtr(s string) *string       { return &s }
func f64Ptr(f float64) *float64     { return &f }
func itemsPtr(items []models.LineItem) *[]models.LineItem { return &items }
