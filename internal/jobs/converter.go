package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/pkg/db"
	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
	"github.com/glassops/glassops-backend/pkg/types"
)

const (
	outcomeConverted = "converted"
	outcomeConflict  = "conflict"
	outcomeNotFound  = "not_found"
	outcomeFailed    = "failed"

	matchedFromZip = "zip_code_coverage"
)

type technicianMatcher interface {
	MatchByZip(ctx context.Context, tx *gorm.DB, zip string) (*models.Technician, error)
}

// Converter turns a quote submission into a job and auto-assigns a technician.
type Converter interface {
	Convert(ctx context.Context, quoteID uuid.UUID) (*ConvertResult, error)
}

type ConverterParams struct {
	Tx          txRunner
	Quotes      quotes.Repository
	Jobs        Repository
	Technicians technicianMatcher
	Activity    activity.Recorder
	Metrics     *metrics.QuoteMetrics
	Logger      *logger.Logger
	Now         func() time.Time
}

type converter struct {
	tx          txRunner
	quotes      quotes.Repository
	jobs        Repository
	technicians technicianMatcher
	activity    activity.Recorder
	metrics     *metrics.QuoteMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewConverter(p ConverterParams) (Converter, error) {
	if p.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Quotes == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if p.Jobs == nil {
		return nil, fmt.Errorf("job repository required")
	}
	if p.Technicians == nil {
		return nil, fmt.Errorf("technician matcher required")
	}
	if p.Activity == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &converter{
		tx:          p.Tx,
		quotes:      p.Quotes,
		jobs:        p.Jobs,
		technicians: p.Technicians,
		activity:    p.Activity,
		metrics:     p.Metrics,
		logg:        p.Logger,
		now:         now,
	}, nil
}

// Convert runs every step in one transaction. The quote row is locked first so
// concurrent conversions of the same quote serialize; the unique index on
// jobs.quote_id rejects anything that slips past the status check.
func (c *converter) Convert(ctx context.Context, quoteID uuid.UUID) (*ConvertResult, error) {
	ctx = c.logg.WithQuoteID(ctx, quoteID.String())

	var (
		job      *models.Job
		assigned *types.AssignedTechnician
	)
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		quoteRepo := c.quotes.WithTx(tx)
		jobRepo := c.jobs.WithTx(tx)

		quote, err := quoteRepo.FindByIDForUpdate(ctx, quoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote submission not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote submission")
		}
		if quote.Status == enums.QuoteStatusConverted {
			return pkgerrors.New(pkgerrors.CodeConflict, "quote has already been converted to a job")
		}

		job = jobFromQuote(quote)
		if err := jobRepo.Create(ctx, job); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "quote has already been converted to a job")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job")
		}

		tech, err := c.technicians.MatchByZip(ctx, tx, quote.ZipCode)
		if err != nil {
			return err
		}
		if tech != nil {
			assigned = &types.AssignedTechnician{ID: tech.ID.String(), Name: tech.Name, Phone: tech.Phone}
			job.FormData.AssignedTechnician = assigned
			if err := jobRepo.Save(ctx, job); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign technician")
			}
			if err := c.activity.Record(ctx, tx, activity.Entry{
				Type:        enums.ActivityTechnicianAutoAssigned,
				Description: fmt.Sprintf("%s auto-assigned to job for ZIP %s", tech.Name, quote.ZipCode),
				CustomerID:  quote.CustomerID,
				EntityType:  enums.EntityJob,
				EntityID:    job.ID,
				Details: map[string]any{
					"jobId":          job.ID.String(),
					"technicianId":   tech.ID.String(),
					"technicianName": tech.Name,
					"zipCode":        quote.ZipCode,
					"matched_from":   matchedFromZip,
				},
			}); err != nil {
				return err
			}
		}

		processedAt := c.now().UTC()
		if err := quoteRepo.UpdateStatus(ctx, quote.ID, enums.QuoteStatusConverted, &processedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quote converted")
		}

		return c.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityQuoteConverted,
			Description: fmt.Sprintf("Quote from %s converted to job", job.CustomerName),
			CustomerID:  quote.CustomerID,
			EntityType:  enums.EntityQuote,
			EntityID:    quote.ID,
			Details: map[string]any{
				"quoteId":            quote.ID.String(),
				"jobId":              job.ID.String(),
				"customerId":         uuidString(quote.CustomerID),
				"division":           quote.Division.String(),
				"serviceType":        quote.ServiceType,
				"assignedTechnician": technicianDetail(assigned),
			},
		})
	})
	if err != nil {
		c.metrics.IncConversion(conversionOutcome(err))
		return nil, err
	}

	c.metrics.IncConversion(outcomeConverted)
	c.metrics.IncAssignment(assigned != nil)
	fields := map[string]any{"job_id": job.ID.String(), "technician_assigned": assigned != nil}
	if assigned != nil {
		fields["technician_id"] = assigned.ID
	}
	c.logg.Info(c.logg.WithFields(ctx, fields), "jobs.quote_converted")

	message := "Quote converted to job successfully"
	if assigned != nil {
		message = fmt.Sprintf("Quote converted to job and assigned to %s", assigned.Name)
	}
	return &ConvertResult{
		Success:            true,
		Message:            message,
		JobID:              job.ID,
		QuoteID:            quoteID,
		AssignedTechnician: assigned,
	}, nil
}

func conversionOutcome(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		return outcomeConflict
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return outcomeNotFound
	default:
		return outcomeFailed
	}
}

func technicianDetail(t *types.AssignedTechnician) any {
	if t == nil {
		return nil
	}
	return map[string]any{"id": t.ID, "name": t.Name, "phone": t.Phone}
}

func uuidString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
