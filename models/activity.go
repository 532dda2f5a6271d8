package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one audit entry describing a mutation. Written best-effort:
// a failed write here never fails the mutation it describes.
type ActivityLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Action     string         `json:"action" gorm:"size:32;index"`
	EntityType string         `json:"entity_type" gorm:"size:32;index"`
	EntityID   string         `json:"entity_id" gorm:"size:64"`
	EntityName string         `json:"entity_name" gorm:"size:128"`
	Details    datatypes.JSON `json:"details" gorm:"type:jsonb"`
	UserName   string         `json:"user_name" gorm:"size:128"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}
