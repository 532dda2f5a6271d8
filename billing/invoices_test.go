package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handyman-backend/models"
)

func newInvoiceFixture() (*InvoiceService, *stubDirectory, *captureRecorder) {
	dir := newStubDirectory()
	dir.clients["c1"] = &models.Client{
		Id: "c1", Name: "Juan Martinez", Phone: "555-0101",
		Email: "juan@example.com", Address: "12 Oak St",
	}
	dir.clients["c2"] = &models.Client{Id: "c2", Name: "Maria Garcia", Phone: "555-0102"}
	dir.bookings["b1"] = &models.Booking{
		Id: "b1", Code: "BKG-0001", CId: "c1", ServiceName: "Plumbing repair", Price: 200,
	}

	rec := &captureRecorder{}
	svc := &InvoiceService{
		Store:    NewMemoryInvoiceStore(),
		Clients:  dir,
		Bookings: dir,
		Activity: rec,
	}
	return svc, dir, rec
}

func TestInvoiceCreate(t *testing.T) {
	svc, _, rec := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{
		ClientID: "c1",
		Items: []models.LineItem{
			{Description: "Faucet replacement", Quantity: 1, UnitPrice: 150},
			{Description: "Labor", Quantity: 2, UnitPrice: 50},
		},
		TaxRate: f64Ptr(8.25),
	}, "amy")
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", doc.Code)
	assert.Equal(t, models.InvoiceDraft, doc.Status)
	assert.Equal(t, "Juan Martinez", doc.ClientName)
	assert.InDelta(t, 270.63, doc.Total, 1e-9)
	assert.Nil(t, doc.PaidAt)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "invoice", rec.entries[0].EntityType)
}

func TestInvoiceCreateFromBooking(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{
		BookingID: "b1",
		Items:     []models.LineItem{{Description: "Labor", Quantity: 1, UnitPrice: 300}},
		TaxRate:   f64Ptr(0),
	}, "amy")
	require.NoError(t, err)

	// Client comes from the booking; totals come from the items, never the
	// booking price.
	assert.Equal(t, "c1", doc.CId)
	assert.Equal(t, "Juan Martinez", doc.ClientName)
	assert.Equal(t, "b1", doc.BookingId)
	assert.InDelta(t, 300.00, doc.Total, 1e-9)
}

func TestInvoiceCreateValidation(t *testing.T) {
	svc, _, _ := newInvoiceFixture()
	var ve *ValidationError

	_, err := svc.Create(CreateInvoiceInput{}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)

	_, err = svc.Create(CreateInvoiceInput{BookingID: "missing"}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "booking_id", ve.Field)

	_, err = svc.Create(CreateInvoiceInput{ClientID: "missing"}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)
}

func TestInvoiceMarkPaidStampsPaidAt(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	doc, err = svc.SetStatus(doc.Id, models.InvoiceSent, "amy")
	require.NoError(t, err)

	doc, err = svc.SetStatus(doc.Id, models.InvoicePaid, "amy")
	require.NoError(t, err)
	require.NotNil(t, doc.PaidAt)
	firstPaidAt := *doc.PaidAt

	// Marking paid again does not move the stamp.
	doc, err = svc.SetStatus(doc.Id, models.InvoicePaid, "amy")
	require.NoError(t, err)
	require.NotNil(t, doc.PaidAt)
	assert.Equal(t, firstPaidAt, *doc.PaidAt)
}

func TestInvoiceOverdueIsDerived(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	past := time.Now().AddDate(0, 0, -7)
	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1", DueDate: &past}, "amy")
	require.NoError(t, err)

	doc, err = svc.SetStatus(doc.Id, models.InvoiceSent, "amy")
	require.NoError(t, err)

	// Stored status stays sent; overdue is a read-time overlay.
	assert.Equal(t, models.InvoiceSent, doc.Status)
	assert.Equal(t, models.InvoiceOverdue, doc.EffectiveStatus(time.Now()))
}

func TestInvoiceStrictModeAllowsOverdueToPaid(t *testing.T) {
	svc, _, _ := newInvoiceFixture()
	svc.Strict = true

	past := time.Now().AddDate(0, 0, -7)
	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1", DueDate: &past}, "amy")
	require.NoError(t, err)

	_, err = svc.SetStatus(doc.Id, models.InvoicePaid, "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve, "draft -> paid skips sent")

	doc, err = svc.SetStatus(doc.Id, models.InvoiceSent, "amy")
	require.NoError(t, err)

	// The stored status is sent but the effective status is overdue; strict
	// mode checks the effective one, so mark-paid still works.
	doc, err = svc.SetStatus(doc.Id, models.InvoicePaid, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, doc.Status)
	assert.NotNil(t, doc.PaidAt)
}

func TestInvoiceUpdateRecomputesTotals(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{
		ClientID: "c1",
		Items:    []models.LineItem{{Description: "Labor", Quantity: 1, UnitPrice: 100}},
		TaxRate:  f64Ptr(8.25),
	}, "amy")
	require.NoError(t, err)

	updated, err := svc.Update(doc.Id, UpdateInvoiceInput{
		Items:   itemsPtr([]models.LineItem{{Description: "Labor", Quantity: 3, UnitPrice: 100}}),
		TaxRate: f64Ptr(8.25),
	}, "amy")
	require.NoError(t, err)

	assert.InDelta(t, 300.00, updated.Subtotal, 1e-9)
	assert.InDelta(t, 24.75, updated.Tax, 1e-9)
	assert.InDelta(t, 324.75, updated.Total, 1e-9)
	assert.Equal(t, doc.Code, updated.Code)
}

func TestInvoiceUpdateUnknownBooking(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	_, err = svc.Update(doc.Id, UpdateInvoiceInput{BookingID: strPtr("missing")}, "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "booking_id", ve.Field)
}

func TestInvoiceDelete(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(doc.Id, "amy"))
	_, err = svc.Get(doc.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(doc.Id, "amy"), ErrNotFound)
}

func TestInvoiceSearch(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	_, err := svc.Create(CreateInvoiceInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)
	_, err = svc.Create(CreateInvoiceInput{ClientID: "c2"}, "amy")
	require.NoError(t, err)

	docs, err := svc.Search("mar")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = svc.Search("inv-0001")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Juan Martinez", docs[0].ClientName)
}

func TestInvoiceAuditBestEffort(t *testing.T) {
	svc, _, _ := newInvoiceFixture()
	svc.Activity = failingRecorder{}

	doc, err := svc.Create(CreateInvoiceInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)
	_, err = svc.SetStatus(doc.Id, models.InvoiceSent, "amy")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(doc.Id, "amy"))
}
