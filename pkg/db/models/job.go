package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/types"
)

// Job is the work order ("transaction") produced by converting a quote.
type Job struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID       *uuid.UUID        `gorm:"column:quote_id;type:uuid"`
	CustomerID    *uuid.UUID        `gorm:"column:customer_id;type:uuid"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	CustomerPhone string            `gorm:"column:customer_phone;not null"`
	VehicleYear   *string           `gorm:"column:vehicle_year"`
	VehicleMake   *string           `gorm:"column:vehicle_make"`
	VehicleModel  *string           `gorm:"column:vehicle_model"`
	VIN           *string           `gorm:"column:vin"`
	Division      enums.Division    `gorm:"column:division;not null"`
	ServiceType   string            `gorm:"column:service_type;not null"`
	Status        enums.JobStatus   `gorm:"column:status;not null;default:'pending'"`
	Amount        decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	FormData      types.JobFormData `gorm:"column:form_data;type:jsonb;serializer:json"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Job) TableName() string { return "jobs" }

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
