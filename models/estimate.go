package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LineItem is one billable row on an estimate or invoice. Items with an empty
// description are dropped before persistence; a row only counts once it is
// described.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// LineTotal is the extended amount of the row, unrounded.
func (li LineItem) LineTotal() float64 {
	return li.Quantity * li.UnitPrice
}

// Estimate is a priced quote for a job.
//
// Client* fields are a snapshot taken from the client record at create/update
// time and are deliberately not kept in sync afterwards. Subtotal/Tax/Total
// are recomputed and stored at every write that touches items or the tax
// rate; the rate itself is not persisted — only the resulting tax amount, so
// the effective rate is reconstructible as tax/subtotal*100.
type Estimate struct {
	Id   string `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"uniqueIndex;not null"`

	CId           string `json:"client_id" gorm:"column:client_id;index;not null"`
	ClientName    string `json:"client_name" gorm:"not null"`
	ClientPhone   string `json:"client_phone" gorm:"not null"`
	ClientEmail   string `json:"client_email"`
	ClientAddress string `json:"client_address"`

	ServiceId   string `json:"service_id"`
	ServiceName string `json:"service_name"`

	Items    datatypes.JSONSlice[LineItem] `json:"items" gorm:"type:jsonb"`
	Subtotal float64                       `json:"subtotal" gorm:"type:numeric(12,2)"`
	Tax      float64                       `json:"tax" gorm:"type:numeric(12,2)"`
	Total    float64                       `json:"total" gorm:"type:numeric(12,2)"`

	Status     EstimateStatus `json:"status" gorm:"type:varchar(20);index"`
	ValidUntil *time.Time     `json:"valid_until"`
	Notes      string         `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (estimate *Estimate) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if estimate.Id == "" {
		estimate.Id = uuid.NewString()
	}
	return
}

// EffectiveStatus overlays the date-derived "expired" state: a sent estimate
// whose ValidUntil has passed displays as expired without a stored
// transition.
func (estimate *Estimate) EffectiveStatus(now time.Time) EstimateStatus {
	if estimate.Status == EstimateSent && estimate.ValidUntil != nil && estimate.ValidUntil.Before(now) {
		return EstimateExpired
	}
	return estimate.Status
}
