package quotes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glassops/glassops-backend/internal/uploads"
	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/pagination"
	"github.com/glassops/glassops-backend/pkg/types"
)

// SubmitRequest is the public quote form payload.
type SubmitRequest struct {
	FirstName         string               `json:"firstName" validate:"required,max=100"`
	LastName          string               `json:"lastName" validate:"required,max=100"`
	MobilePhone       string               `json:"mobilePhone" validate:"required,min=7,max=32"`
	Email             string               `json:"email" validate:"required,email"`
	Location          string               `json:"location" validate:"required,max=255"`
	ZipCode           string               `json:"zipCode" validate:"required,min=3,max=10"`
	Division          enums.Division       `json:"division" validate:"required,oneof=glass wheels"`
	ServiceType       string               `json:"serviceType" validate:"required,max=100"`
	VIN               *string              `json:"vin,omitempty" validate:"omitempty,max=32"`
	VehicleYear       *string              `json:"vehicleYear,omitempty" validate:"omitempty,max=4"`
	VehicleMake       *string              `json:"vehicleMake,omitempty" validate:"omitempty,max=64"`
	VehicleModel      *string              `json:"vehicleModel,omitempty" validate:"omitempty,max=64"`
	SelectedWindows   []string             `json:"selectedWindows,omitempty" validate:"omitempty,dive,required"`
	SelectedWheels    []string             `json:"selectedWheels,omitempty" validate:"omitempty,dive,required"`
	DamageDescription *string              `json:"damageDescription,omitempty" validate:"omitempty,max=2000"`
	UploadedFiles     []types.UploadedFile `json:"uploadedFiles,omitempty"`
}

func (r SubmitRequest) normalized() SubmitRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.MobilePhone = strings.TrimSpace(r.MobilePhone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Location = strings.TrimSpace(r.Location)
	r.ZipCode = strings.TrimSpace(r.ZipCode)
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	r.Division = enums.Division(strings.ToLower(strings.TrimSpace(string(r.Division))))
	r.VIN = trimmedOrNil(r.VIN)
	r.VehicleYear = trimmedOrNil(r.VehicleYear)
	r.VehicleMake = trimmedOrNil(r.VehicleMake)
	r.VehicleModel = trimmedOrNil(r.VehicleModel)
	r.DamageDescription = trimmedOrNil(r.DamageDescription)
	r.SelectedWindows = compact(r.SelectedWindows)
	r.SelectedWheels = compact(r.SelectedWheels)
	return r
}

// validate enforces the rules struct tags cannot express: required contact
// fields, the division-conditional selection, and attachment limits.
func (r SubmitRequest) validate(limits uploads.Limits) error {
	details := map[string]string{}
	required := map[string]string{
		"firstName":   r.FirstName,
		"lastName":    r.LastName,
		"mobilePhone": r.MobilePhone,
		"email":       r.Email,
		"location":    r.Location,
		"zipCode":     r.ZipCode,
		"serviceType": r.ServiceType,
	}
	for field, value := range required {
		if value == "" {
			details[field] = "is required"
		}
	}

	switch r.Division {
	case enums.DivisionGlass:
		if len(r.SelectedWindows) == 0 {
			details["selectedWindows"] = "select at least one window for glass service"
		}
	case enums.DivisionWheels:
		if len(r.SelectedWheels) == 0 {
			details["selectedWheels"] = "select at least one wheel for wheel service"
		}
	default:
		details["division"] = "must be one of [glass wheels]"
	}

	if len(r.UploadedFiles) > limits.MaxFiles {
		details["uploadedFiles"] = fmt.Sprintf("must be at most %d", limits.MaxFiles)
	}
	for i, f := range r.UploadedFiles {
		key := fmt.Sprintf("uploadedFiles[%d]", i)
		if f.Size > limits.MaxFileBytes {
			details[key+".size"] = fmt.Sprintf("must be at most %d MB", limits.MaxFileBytes>>20)
		}
		if !allowedType(limits.AllowedTypes, f.MimeType) {
			details[key+".mimeType"] = fmt.Sprintf("must be one of [%s]", strings.Join(limits.AllowedTypes, " "))
		}
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// model builds the row to insert. Decoded vehicle fields take precedence over
// form-supplied ones; the selection list for the other division is emptied.
func (r SubmitRequest) model(decoded types.VehicleInfo) *models.QuoteSubmission {
	q := &models.QuoteSubmission{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		MobilePhone:       r.MobilePhone,
		Email:             r.Email,
		Location:          r.Location,
		ZipCode:           r.ZipCode,
		Division:          r.Division,
		ServiceType:       r.ServiceType,
		VehicleYear:       r.VehicleYear,
		VehicleMake:       r.VehicleMake,
		VehicleModel:      r.VehicleModel,
		DamageDescription: r.DamageDescription,
		UploadedFiles:     types.UploadedFiles(r.UploadedFiles),
		Status:            enums.QuoteStatusSubmitted,
	}
	if r.VIN != nil {
		v := strings.ToUpper(*r.VIN)
		q.VIN = &v
	}
	if decoded.Year != "" {
		q.VehicleYear = &decoded.Year
	}
	if decoded.Make != "" {
		q.VehicleMake = &decoded.Make
	}
	if decoded.Model != "" {
		q.VehicleModel = &decoded.Model
	}
	if r.Division == enums.DivisionGlass {
		q.SelectedWindows = r.SelectedWindows
		q.SelectedWheels = []string{}
	} else {
		q.SelectedWheels = r.SelectedWheels
		q.SelectedWindows = []string{}
	}
	if q.UploadedFiles == nil {
		q.UploadedFiles = types.UploadedFiles{}
	}
	return q
}

// SubmitResult is the acknowledgement returned to the public form.
type SubmitResult struct {
	Success      bool               `json:"success"`
	SubmissionID uuid.UUID          `json:"submissionId"`
	CustomerID   uuid.UUID          `json:"customerId"`
	Message      string             `json:"message"`
	VINDecoded   bool               `json:"vinDecoded"`
	VehicleInfo  *types.VehicleInfo `json:"vehicleInfo"`
}

// QuoteDTO is the admin view of a submission.
type QuoteDTO struct {
	ID                uuid.UUID            `json:"id"`
	CustomerID        *uuid.UUID           `json:"customerId"`
	FirstName         string               `json:"firstName"`
	LastName          string               `json:"lastName"`
	MobilePhone       string               `json:"mobilePhone"`
	Email             string               `json:"email"`
	Location          string               `json:"location"`
	ZipCode           string               `json:"zipCode"`
	Division          enums.Division       `json:"division"`
	ServiceType       string               `json:"serviceType"`
	VIN               *string              `json:"vin"`
	VehicleYear       *string              `json:"vehicleYear"`
	VehicleMake       *string              `json:"vehicleMake"`
	VehicleModel      *string              `json:"vehicleModel"`
	SelectedWindows   []string             `json:"selectedWindows"`
	SelectedWheels    []string             `json:"selectedWheels"`
	DamageDescription *string              `json:"damageDescription"`
	UploadedFiles     []types.UploadedFile `json:"uploadedFiles"`
	Status            enums.QuoteStatus    `json:"status"`
	SubmittedAt       time.Time            `json:"submittedAt"`
	ProcessedAt       *time.Time           `json:"processedAt"`
}

func FromModel(q *models.QuoteSubmission) *QuoteDTO {
	if q == nil {
		return nil
	}
	files := []types.UploadedFile(q.UploadedFiles)
	if files == nil {
		files = []types.UploadedFile{}
	}
	return &QuoteDTO{
		ID:                q.ID,
		CustomerID:        q.CustomerID,
		FirstName:         q.FirstName,
		LastName:          q.LastName,
		MobilePhone:       q.MobilePhone,
		Email:             q.Email,
		Location:          q.Location,
		ZipCode:           q.ZipCode,
		Division:          q.Division,
		ServiceType:       q.ServiceType,
		VIN:               q.VIN,
		VehicleYear:       q.VehicleYear,
		VehicleMake:       q.VehicleMake,
		VehicleModel:      q.VehicleModel,
		SelectedWindows:   append([]string{}, q.SelectedWindows...),
		SelectedWheels:    append([]string{}, q.SelectedWheels...),
		DamageDescription: q.DamageDescription,
		UploadedFiles:     files,
		Status:            q.Status,
		SubmittedAt:       q.SubmittedAt,
		ProcessedAt:       q.ProcessedAt,
	}
}

// ListParams configures the admin listing.
type ListParams struct {
	Status string
	Search string
	Page   pagination.Params
}

type ListResult struct {
	Items []QuoteDTO      `json:"items"`
	Page  pagination.Page `json:"page"`
}

// Stats summarises the quote pipeline.
type Stats struct {
	Total       int64                       `json:"total"`
	ByStatus    map[enums.QuoteStatus]int64 `json:"byStatus"`
	Last24Hours int64                       `json:"last24Hours"`
	Last7Days   int64                       `json:"last7Days"`
}

func statsFromRow(row *StatsRow) *Stats {
	return &Stats{
		Total: row.Total,
		ByStatus: map[enums.QuoteStatus]int64{
			enums.QuoteStatusSubmitted: row.Submitted,
			enums.QuoteStatusProcessed: row.Processed,
			enums.QuoteStatusQuoted:    row.Quoted,
			enums.QuoteStatusConverted: row.Converted,
			enums.QuoteStatusArchived:  row.Archived,
		},
		Last24Hours: row.Last24h,
		Last7Days:   row.Last7d,
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func allowedType(allowed []string, mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	for _, a := range allowed {
		if a == mime {
			return true
		}
	}
	return false
}
