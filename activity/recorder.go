package activity

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"handyman-backend/billing"
	"handyman-backend/models"
)

// GormRecorder persists activity entries to the activity_logs table. The
// billing services treat it as best-effort; errors returned here are logged
// and dropped by the caller.
type GormRecorder struct {
	DB *gorm.DB
}

func (r *GormRecorder) Record(e billing.Entry) error {
	var details datatypes.JSON
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = datatypes.JSON(b)
	}
	entry := models.ActivityLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		Details:    details,
		UserName:   e.UserName,
	}
	return r.DB.Create(&entry).Error
}
