package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/enums"
)

// ActivityLog is an append-only audit entry.
type ActivityLog struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Type        enums.ActivityType `gorm:"column:type;not null"`
	Description string             `gorm:"column:description;not null"`
	CustomerID  *uuid.UUID         `gorm:"column:customer_id;type:uuid"`
	EntityType  *enums.EntityType  `gorm:"column:entity_type"`
	EntityID    *uuid.UUID         `gorm:"column:entity_id;type:uuid"`
	Details     map[string]any     `gorm:"column:details;type:jsonb;serializer:json"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
