package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
)

// ItemDTO is the feed representation of an activity entry.
type ItemDTO struct {
	ID          uuid.UUID          `json:"id"`
	Type        enums.ActivityType `json:"type"`
	Description string             `json:"description"`
	CustomerID  *uuid.UUID         `json:"customerId"`
	EntityType  *enums.EntityType  `json:"entityType"`
	EntityID    *uuid.UUID         `json:"entityId"`
	Details     map[string]any     `json:"details"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func FromModel(m models.ActivityLog) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		Type:        m.Type,
		Description: m.Description,
		CustomerID:  m.CustomerID,
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		Details:     m.Details,
		CreatedAt:   m.CreatedAt,
	}
}
