package billing

import "handyman-backend/models"

// Transition tables used when a service runs in strict mode. The default
// mode matches the observed contract: SetStatus overwrites whatever status is
// asked for, and these tables are only a hardening seam.
//
// Terminal states (accepted, rejected, expired, paid, cancelled) have no
// outgoing transitions except overdue -> paid/cancelled on invoices, where
// "overdue" is the date-derived face of "sent".

var estimateTransitions = map[models.EstimateStatus][]models.EstimateStatus{
	models.EstimateDraft: {models.EstimateSent},
	models.EstimateSent:  {models.EstimateAccepted, models.EstimateRejected, models.EstimateExpired},
}

var invoiceTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceDraft:   {models.InvoiceSent},
	models.InvoiceSent:    {models.InvoicePaid, models.InvoiceCancelled, models.InvoiceOverdue},
	models.InvoiceOverdue: {models.InvoicePaid, models.InvoiceCancelled},
}

// EstimateTransitionAllowed reports whether from -> to is in the estimate
// transition table.
func EstimateTransitionAllowed(from, to models.EstimateStatus) bool {
	for _, next := range estimateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvoiceTransitionAllowed reports whether from -> to is in the invoice
// transition table.
func InvoiceTransitionAllowed(from, to models.InvoiceStatus) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
