package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is a bill for completed work. Shares the estimate's shape: client
// snapshot, JSONB line items, stored totals. Differs in the status vocabulary
// and in linking a booking instead of a catalog service.
type Invoice struct {
	Id   string `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"uniqueIndex;not null"`

	CId           string `json:"client_id" gorm:"column:client_id;index;not null"`
	ClientName    string `json:"client_name" gorm:"not null"`
	ClientPhone   string `json:"client_phone" gorm:"not null"`
	ClientEmail   string `json:"client_email"`
	ClientAddress string `json:"client_address"`

	// Optional link to the booking this invoice bills. Informational only;
	// totals come from the line items, never from the booking price.
	BookingId string `json:"booking_id"`

	Items    datatypes.JSONSlice[LineItem] `json:"items" gorm:"type:jsonb"`
	Subtotal float64                       `json:"subtotal" gorm:"type:numeric(12,2)"`
	Tax      float64                       `json:"tax" gorm:"type:numeric(12,2)"`
	Total    float64                       `json:"total" gorm:"type:numeric(12,2)"`

	Status  InvoiceStatus `json:"status" gorm:"type:varchar(20);index"`
	DueDate *time.Time    `json:"due_date"`
	PaidAt  *time.Time    `json:"paid_at"`
	Notes   string        `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if invoice.Id == "" {
		invoice.Id = uuid.NewString()
	}
	return
}

// EffectiveStatus overlays the date-derived "overdue" state: a sent invoice
// past its DueDate displays as overdue without a stored transition.
func (invoice *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if invoice.Status == InvoiceSent && invoice.DueDate != nil && invoice.DueDate.Before(now) {
		return InvoiceOverdue
	}
	return invoice.Status
}
