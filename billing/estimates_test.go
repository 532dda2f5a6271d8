package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handyman-backend/models"
)

func newEstimateFixture() (*EstimateService, *stubDirectory, *captureRecorder) {
	dir := newStubDirectory()
	dir.clients["c1"] = &models.Client{
		Id: "c1", Name: "Juan Martinez", Phone: "555-0101",
		Email: "juan@example.com", Address: "12 Oak St",
	}
	dir.clients["c2"] = &models.Client{Id: "c2", Name: "Maria Garcia", Phone: "555-0102"}
	dir.services["s1"] = &models.Service{Id: "s1", Title: "Plumbing repair"}

	rec := &captureRecorder{}
	svc := &EstimateService{
		Store:    NewMemoryEstimateStore(),
		Clients:  dir,
		Services: dir,
		Activity: rec,
	}
	return svc, dir, rec
}

func TestEstimateCreate(t *testing.T) {
	svc, _, rec := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{
		ClientID:  "c1",
		ServiceID: "s1",
		Items: []models.LineItem{
			{Description: "Faucet replacement", Quantity: 1, UnitPrice: 150},
			{Description: "Labor", Quantity: 2, UnitPrice: 50},
		},
		TaxRate: f64Ptr(8.25),
	}, "amy")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Id)
	assert.Equal(t, "EST-0001", doc.Code)
	assert.Equal(t, models.EstimateDraft, doc.Status)

	// Client snapshot
	assert.Equal(t, "c1", doc.CId)
	assert.Equal(t, "Juan Martinez", doc.ClientName)
	assert.Equal(t, "555-0101", doc.ClientPhone)
	assert.Equal(t, "juan@example.com", doc.ClientEmail)
	assert.Equal(t, "12 Oak St", doc.ClientAddress)
	assert.Equal(t, "Plumbing repair", doc.ServiceName)

	// Stored totals
	assert.InDelta(t, 250.00, doc.Subtotal, 1e-9)
	assert.InDelta(t, 20.63, doc.Tax, 1e-9)
	assert.InDelta(t, 270.63, doc.Total, 1e-9)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, ActionCreated, entry.Action)
	assert.Equal(t, "estimate", entry.EntityType)
	assert.Equal(t, doc.Code, entry.EntityName)
	assert.Equal(t, "amy", entry.UserName)
	assert.Equal(t, "Juan Martinez", entry.Details["client_name"])
}

func TestEstimateCreateSequentialCodes(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	first, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)
	second, err := svc.Create(CreateEstimateInput{ClientID: "c2"}, "amy")
	require.NoError(t, err)

	assert.Equal(t, "EST-0001", first.Code)
	assert.Equal(t, "EST-0002", second.Code)
}

func TestEstimateCreateValidation(t *testing.T) {
	svc, dir, _ := newEstimateFixture()

	_, err := svc.Create(CreateEstimateInput{}, "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)

	_, err = svc.Create(CreateEstimateInput{ClientID: "missing"}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)

	_, err = svc.Create(CreateEstimateInput{ClientID: "c1", ServiceID: "missing"}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "service_id", ve.Field)

	// Client record without a phone cannot be billed.
	dir.clients["c3"] = &models.Client{Id: "c3", Name: "No Phone"}
	_, err = svc.Create(CreateEstimateInput{ClientID: "c3"}, "amy")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "client_id", ve.Field)
}

func TestEstimateCreateDropsUndescribedItems(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{
		ClientID: "c1",
		Items: []models.LineItem{
			{Description: "Labor", Quantity: 2, UnitPrice: 50},
			{Description: "", Quantity: 99, UnitPrice: 99},
		},
		TaxRate: f64Ptr(0),
	}, "amy")
	require.NoError(t, err)

	require.Len(t, doc.Items, 1)
	assert.InDelta(t, 100.00, doc.Subtotal, 1e-9)
	assert.InDelta(t, 100.00, doc.Total, 1e-9)
}

func TestEstimateUpdateRecomputesTotals(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{
		ClientID: "c1",
		Items:    []models.LineItem{{Description: "Labor", Quantity: 1, UnitPrice: 100}},
		TaxRate:  f64Ptr(10),
	}, "amy")
	require.NoError(t, err)
	require.InDelta(t, 110.00, doc.Total, 1e-9)

	// Items change without restating the rate: the stored tax/subtotal
	// reconstruct the 10% that was in effect.
	updated, err := svc.Update(doc.Id, UpdateEstimateInput{
		Items: itemsPtr([]models.LineItem{{Description: "Labor", Quantity: 2, UnitPrice: 100}}),
	}, "amy")
	require.NoError(t, err)

	assert.InDelta(t, 200.00, updated.Subtotal, 1e-9)
	assert.InDelta(t, 20.00, updated.Tax, 1e-9)
	assert.InDelta(t, 220.00, updated.Total, 1e-9)

	// Code and id never change on update.
	assert.Equal(t, doc.Id, updated.Id)
	assert.Equal(t, doc.Code, updated.Code)
}

func TestEstimateUpdateResnapshotsClient(t *testing.T) {
	svc, _, rec := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	updated, err := svc.Update(doc.Id, UpdateEstimateInput{ClientID: strPtr("c2")}, "amy")
	require.NoError(t, err)
	assert.Equal(t, "Maria Garcia", updated.ClientName)
	assert.Equal(t, "555-0102", updated.ClientPhone)
	assert.Empty(t, updated.ClientEmail, "snapshot fully replaced, not merged")

	last := rec.entries[len(rec.entries)-1]
	assert.Equal(t, ActionUpdated, last.Action)
	assert.Contains(t, last.Details["changes"], "client_name")
}

func TestEstimateUpdateNotFound(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	_, err := svc.Update("missing", UpdateEstimateInput{Notes: strPtr("x")}, "amy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateUpdateNoFields(t *testing.T) {
	svc, _, rec := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)
	before := len(rec.entries)

	same, err := svc.Update(doc.Id, UpdateEstimateInput{}, "amy")
	require.NoError(t, err)
	assert.Equal(t, doc.Id, same.Id)
	assert.Len(t, rec.entries, before, "no-op update records no activity")
}

func TestEstimateStatusFlow(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{
		ClientID: "c1",
		Items:    []models.LineItem{{Description: "Labor", Quantity: 1, UnitPrice: 250}},
		TaxRate:  f64Ptr(8.25),
	}, "amy")
	require.NoError(t, err)

	doc, err = svc.SetStatus(doc.Id, models.EstimateSent, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.EstimateSent, doc.Status)

	doc, err = svc.SetStatus(doc.Id, models.EstimateAccepted, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.EstimateAccepted, doc.Status)

	// Totals untouched by status transitions.
	assert.InDelta(t, 270.63, doc.Total, 1e-9)
}

func TestEstimateStatusPermissiveByDefault(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	// Skipping sent is accepted in the default mode.
	doc, err = svc.SetStatus(doc.Id, models.EstimateAccepted, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.EstimateAccepted, doc.Status)

	// But a value outside the vocabulary never reaches the store.
	_, err = svc.SetStatus(doc.Id, models.EstimateStatus("paid"), "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	stored, err := svc.Get(doc.Id)
	require.NoError(t, err)
	assert.Equal(t, models.EstimateAccepted, stored.Status)
}

func TestEstimateStatusStrictMode(t *testing.T) {
	svc, _, _ := newEstimateFixture()
	svc.Strict = true

	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	_, err = svc.SetStatus(doc.Id, models.EstimateAccepted, "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve, "draft -> accepted skips sent")

	doc, err = svc.SetStatus(doc.Id, models.EstimateSent, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.EstimateSent, doc.Status)
}

func TestEstimateStrictModeExpiredIsTerminal(t *testing.T) {
	svc, _, _ := newEstimateFixture()
	svc.Strict = true

	past := time.Now().AddDate(0, 0, -7)
	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1", ValidUntil: &past}, "amy")
	require.NoError(t, err)

	doc, err = svc.SetStatus(doc.Id, models.EstimateSent, "amy")
	require.NoError(t, err)
	assert.Equal(t, models.EstimateExpired, doc.EffectiveStatus(time.Now()))

	// The stored status is sent but the deadline has passed; strict mode
	// checks the date-derived status, so acceptance is refused.
	_, err = svc.SetStatus(doc.Id, models.EstimateAccepted, "amy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}

func TestEstimateDelete(t *testing.T) {
	svc, _, rec := newEstimateFixture()

	doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(doc.Id, "amy"))
	_, err = svc.Get(doc.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	last := rec.entries[len(rec.entries)-1]
	assert.Equal(t, ActionDeleted, last.Action)
	assert.Equal(t, doc.Code, last.EntityName)

	assert.ErrorIs(t, svc.Delete("missing", "amy"), ErrNotFound)
}

func TestEstimateAuditBestEffort(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	for _, sink := range []Recorder{failingRecorder{}, panickingRecorder{}, nil} {
		svc.Activity = sink

		doc, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
		require.NoError(t, err, "create must survive a dead audit sink")

		_, err = svc.Update(doc.Id, UpdateEstimateInput{Notes: strPtr("checked")}, "amy")
		require.NoError(t, err)

		_, err = svc.SetStatus(doc.Id, models.EstimateSent, "amy")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(doc.Id, "amy"))
	}
}

func TestEstimateSearch(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	_, err := svc.Create(CreateEstimateInput{ClientID: "c1", ServiceID: "s1"}, "amy")
	require.NoError(t, err)
	_, err = svc.Create(CreateEstimateInput{ClientID: "c2"}, "amy")
	require.NoError(t, err)

	// "mar" hits both Juan Martinez and Maria Garcia, case-insensitively.
	docs, err := svc.Search("mar")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = svc.Search("EST-0002")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Maria Garcia", docs[0].ClientName)

	// Service name is searchable on estimates.
	docs, err = svc.Search("plumb")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Juan Martinez", docs[0].ClientName)

	docs, err = svc.Search("zzz")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEstimateListFilters(t *testing.T) {
	svc, _, _ := newEstimateFixture()

	a, err := svc.Create(CreateEstimateInput{ClientID: "c1"}, "amy")
	require.NoError(t, err)
	_, err = svc.Create(CreateEstimateInput{ClientID: "c2"}, "amy")
	require.NoError(t, err)

	_, err = svc.SetStatus(a.Id, models.EstimateSent, "amy")
	require.NoError(t, err)

	sent, err := svc.List(DocumentFilter{Status: string(models.EstimateSent)})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, a.Id, sent[0].Id)

	byClient, err := svc.List(DocumentFilter{ClientID: "c2"})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, "c2", byClient[0].CId)

	all, err := svc.List(DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
