package models

// Settings is the single-row business configuration. ID is pinned to 1; the
// row is created on first boot if missing.
type Settings struct {
	ID              uint    `json:"-" gorm:"primaryKey"`
	BusinessName    string  `json:"business_name"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	Address         string  `json:"address"`
	DefaultTaxRate  float64 `json:"default_tax_rate"`  // percent, e.g. 8.25
	EstimateDueDays int     `json:"estimate_due_days"` // default ValidUntil horizon
	InvoiceDueDays  int     `json:"invoice_due_days"`  // default DueDate horizon
}
