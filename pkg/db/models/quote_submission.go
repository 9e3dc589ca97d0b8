package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/types"
)

// QuoteSubmission is one customer-initiated quote request. Only Status and
// ProcessedAt change after insert.
type QuoteSubmission struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	FirstName         string              `gorm:"column:first_name;not null"`
	LastName          string              `gorm:"column:last_name;not null"`
	MobilePhone       string              `gorm:"column:mobile_phone;not null"`
	Email             string              `gorm:"column:email;not null"`
	Location          string              `gorm:"column:location;not null"`
	ZipCode           string              `gorm:"column:zip_code;not null"`
	Division          enums.Division      `gorm:"column:division;not null"`
	ServiceType       string              `gorm:"column:service_type;not null"`
	VIN               *string             `gorm:"column:vin"`
	VehicleYear       *string             `gorm:"column:vehicle_year"`
	VehicleMake       *string             `gorm:"column:vehicle_make"`
	VehicleModel      *string             `gorm:"column:vehicle_model"`
	SelectedWindows   pq.StringArray      `gorm:"column:selected_windows;type:text[];not null"`
	SelectedWheels    pq.StringArray      `gorm:"column:selected_wheels;type:text[];not null"`
	DamageDescription *string             `gorm:"column:damage_description"`
	UploadedFiles     types.UploadedFiles `gorm:"column:uploaded_files;type:jsonb;serializer:json"`
	Status            enums.QuoteStatus   `gorm:"column:status;not null;default:'submitted'"`
	SubmittedAt       time.Time           `gorm:"column:submitted_at;not null"`
	ProcessedAt       *time.Time          `gorm:"column:processed_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (QuoteSubmission) TableName() string { return "quote_submissions" }

func (q *QuoteSubmission) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.SelectedWindows == nil {
		q.SelectedWindows = pq.StringArray{}
	}
	if q.SelectedWheels == nil {
		q.SelectedWheels = pq.StringArray{}
	}
	if q.SubmittedAt.IsZero() {
		q.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// Selections returns the selection list that applies to the quote's division.
func (q QuoteSubmission) Selections() []string {
	if q.Division == enums.DivisionWheels {
		return []string(q.SelectedWheels)
	}
	return []string(q.SelectedWindows)
}
