package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/enums"
)

// Technician is a field tech whose ZIP coverage drives auto-assignment.
type Technician struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Name      string                 `gorm:"column:name;not null"`
	Email     *string                `gorm:"column:email"`
	Phone     string                 `gorm:"column:phone;not null"`
	Status    enums.TechnicianStatus `gorm:"column:status;not null;default:'available'"`
	Rating    int                    `gorm:"column:rating;not null;default:0"`
	ZipCodes  pq.StringArray         `gorm:"column:zip_codes;type:text[];not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Technician) TableName() string { return "technicians" }

func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.ZipCodes == nil {
		t.ZipCodes = pq.StringArray{}
	}
	return nil
}

// Covers reports whether the technician services the given ZIP code.
func (t Technician) Covers(zip string) bool {
	for _, z := range t.ZipCodes {
		if z == zip {
			return true
		}
	}
	return false
}
