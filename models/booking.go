package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is a scheduled job for a client. ClientName and ServiceName are
// snapshots, same policy as on billing documents.
type Booking struct {
	Id   string `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"uniqueIndex;not null"`

	CId        string `json:"client_id" gorm:"column:client_id;index;not null"`
	ClientName string `json:"client_name"`

	ServiceId   string `json:"service_id"`
	ServiceName string `json:"service_name"`

	ScheduledAt *time.Time    `json:"scheduled_at"`
	Address     string        `json:"address"`
	Price       float64       `json:"price" gorm:"type:numeric(12,2)"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(20);index"`
	Notes       string        `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if booking.Id == "" {
		booking.Id = uuid.NewString()
	}
	return
}
