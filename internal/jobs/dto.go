package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/pagination"
	"github.com/glassops/glassops-backend/pkg/types"
)

// JobDTO is the transport shape for a job.
type JobDTO struct {
	ID            uuid.UUID         `json:"id"`
	QuoteID       *uuid.UUID        `json:"quoteId"`
	CustomerID    *uuid.UUID        `json:"customerId"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	VehicleYear   *string           `json:"vehicleYear"`
	VehicleMake   *string           `json:"vehicleMake"`
	VehicleModel  *string           `json:"vehicleModel"`
	VIN           *string           `json:"vin"`
	Division      enums.Division    `json:"division"`
	ServiceType   string            `json:"serviceType"`
	Status        enums.JobStatus   `json:"status"`
	Amount        decimal.Decimal   `json:"amount"`
	FormData      types.JobFormData `json:"formData"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func FromModel(j *models.Job) *JobDTO {
	if j == nil {
		return nil
	}
	return &JobDTO{
		ID:            j.ID,
		QuoteID:       j.QuoteID,
		CustomerID:    j.CustomerID,
		CustomerName:  j.CustomerName,
		CustomerEmail: j.CustomerEmail,
		CustomerPhone: j.CustomerPhone,
		VehicleYear:   j.VehicleYear,
		VehicleMake:   j.VehicleMake,
		VehicleModel:  j.VehicleModel,
		VIN:           j.VIN,
		Division:      j.Division,
		ServiceType:   j.ServiceType,
		Status:        j.Status,
		Amount:        j.Amount,
		FormData:      j.FormData,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// ConvertResult is returned by the quote-to-job conversion.
type ConvertResult struct {
	Success            bool                      `json:"success"`
	Message            string                    `json:"message"`
	JobID              uuid.UUID                 `json:"jobId"`
	QuoteID            uuid.UUID                 `json:"quoteId"`
	AssignedTechnician *types.AssignedTechnician `json:"assignedTechnician"`
}

// ListParams configures the job listing.
type ListParams struct {
	Status     string
	CustomerID *uuid.UUID
	Page       pagination.Params
}

type ListResult struct {
	Items []JobDTO        `json:"items"`
	Page  pagination.Page `json:"page"`
}

// UpdateStatusInput moves a job through its lifecycle. Amount, when set,
// replaces the job amount before completion totals are rolled up.
type UpdateStatusInput struct {
	Status string           `json:"status" validate:"required"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// jobFromQuote copies the quote's customer, vehicle and selection data onto a
// new job.
func jobFromQuote(q *models.QuoteSubmission) *models.Job {
	name := strings.TrimSpace(q.FirstName + " " + q.LastName)
	return &models.Job{
		QuoteID:       &q.ID,
		CustomerID:    q.CustomerID,
		CustomerName:  name,
		CustomerEmail: q.Email,
		CustomerPhone: q.MobilePhone,
		VehicleYear:   q.VehicleYear,
		VehicleMake:   q.VehicleMake,
		VehicleModel:  q.VehicleModel,
		VIN:           q.VIN,
		Division:      q.Division,
		ServiceType:   q.ServiceType,
		Status:        enums.JobStatusPending,
		Amount:        decimal.Zero,
		FormData: types.JobFormData{
			Division:        q.Division.String(),
			ServiceType:     q.ServiceType,
			Location:        q.Location,
			ZipCode:         q.ZipCode,
			SelectedWindows: append([]string{}, q.SelectedWindows...),
			SelectedWheels:  append([]string{}, q.SelectedWheels...),
			Notes:           q.DamageDescription,
		},
	}
}
