package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a catalog entry (e.g. "Faucet replacement"). BasePrice is a
// starting price for the public listing; actual pricing lives on estimate and
// invoice line items.
type Service struct {
	Id          string  `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BasePrice   float64 `json:"base_price" gorm:"type:numeric(12,2)"`
	Active      bool    `json:"active"`
}

func (service *Service) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if service.Id == "" {
		service.Id = uuid.NewString()
	}
	return
}
