package activity

import (
	"github.com/google/uuid"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
)

// Entry describes one activity row before it is persisted.
type Entry struct {
	Type        enums.ActivityType
	Description string
	CustomerID  *uuid.UUID
	EntityType  enums.EntityType
	EntityID    uuid.UUID
	Details     map[string]any
}

// Model converts the entry into its persisted form.
func (e Entry) Model() *models.ActivityLog {
	row := &models.ActivityLog{
		Type:        e.Type,
		Description: e.Description,
		CustomerID:  e.CustomerID,
		Details:     e.Details,
	}
	if e.EntityType != "" {
		et := e.EntityType
		row.EntityType = &et
	}
	if e.EntityID != uuid.Nil {
		id := e.EntityID
		row.EntityID = &id
	}
	if row.Details == nil {
		row.Details = map[string]any{}
	}
	return row
}
