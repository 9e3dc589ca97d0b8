package quotes

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/customers"
	"github.com/glassops/glassops-backend/internal/notifications"
	"github.com/glassops/glassops-backend/internal/uploads"
	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
	"github.com/glassops/glassops-backend/pkg/pagination"
	"github.com/glassops/glassops-backend/pkg/types"
	"github.com/glassops/glassops-backend/pkg/vin"
)

const submitMessage = "Thank you! Your quote request has been received. We'll contact you shortly."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, input customers.ResolveInput) (*customers.Resolution, error)
}

type confirmationNotifier interface {
	QuoteReceived(ctx context.Context, c notifications.QuoteConfirmation) int
}

type fileStore interface {
	Save(ctx context.Context, headers []*multipart.FileHeader) (types.UploadedFiles, error)
	Cleanup(files types.UploadedFiles) error
}

// Service handles public quote intake and quote administration.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	// SubmitWithFiles saves the multipart attachments and submits the quote
	// with their metadata. Saved files are removed if the submission fails.
	SubmitWithFiles(ctx context.Context, req SubmitRequest, files []*multipart.FileHeader) (*SubmitResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*QuoteDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*QuoteDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

// ServiceParams packages the quote service dependencies. VIN, Notifier and
// Files are optional.
type ServiceParams struct {
	Repo       Repository
	Tx         txRunner
	Customers  customerResolver
	Activity   activity.Recorder
	VIN        vin.Decoder
	Notifier   confirmationNotifier
	Files      fileStore
	FileLimits uploads.Limits
	Metrics    *metrics.QuoteMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	customers customerResolver
	activity  activity.Recorder
	vin       vin.Decoder
	notifier  confirmationNotifier
	files     fileStore
	limits    uploads.Limits
	metrics   *metrics.QuoteMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Customers == nil {
		return nil, fmt.Errorf("customer resolver required")
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
	return &service{
		repo:      p.Repo,
		tx:        p.Tx,
		customers: p.Customers,
		activity:  p.Activity,
		vin:       p.VIN,
		notifier:  p.Notifier,
		files:     p.Files,
		limits:    p.FileLimits.WithDefaults(),
		metrics:   p.Metrics,
		logg:      p.Logger,
		now:       now,
	}, nil
}

// Submit handles JSON intake. Attachment metadata is descriptive only; storage
// fields are never taken from the client.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	req = req.normalized()
	req.UploadedFiles = types.UploadedFiles(req.UploadedFiles).Described()
	if err := req.validate(s.limits); err != nil {
		return nil, err
	}
	return s.submit(ctx, req)
}

// SubmitWithFiles handles multipart intake. Attachment metadata in the form
// data is ignored; only the uploaded parts are recorded.
func (s *service) SubmitWithFiles(ctx context.Context, req SubmitRequest, headers []*multipart.FileHeader) (*SubmitResult, error) {
	req.UploadedFiles = nil
	if len(headers) == 0 {
		return s.Submit(ctx, req)
	}
	if s.files == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "file uploads are not configured")
	}

	req = req.normalized()
	if len(headers) > s.limits.MaxFiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"files": fmt.Sprintf("must be at most %d", s.limits.MaxFiles)})
	}
	if err := req.validate(s.limits); err != nil {
		return nil, err
	}

	saved, err := s.files.Save(ctx, headers)
	if err != nil {
		return nil, err
	}
	req.UploadedFiles = saved

	result, err := s.submit(ctx, req)
	if err != nil {
		if cleanupErr := s.files.Cleanup(saved); cleanupErr != nil {
			s.logg.Error(ctx, "quotes.upload_cleanup_failed", cleanupErr)
		}
		return nil, err
	}
	return result, nil
}

func (s *service) submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	decoded, ok := s.decodeVIN(ctx, req.VIN)
	quote := req.model(decoded)

	var resolution *customers.Resolution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		resolution, err = s.customers.Resolve(ctx, tx, customers.ResolveInput{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Phone:      req.MobilePhone,
			PostalCode: req.ZipCode,
		})
		if err != nil {
			return err
		}
		quote.CustomerID = &resolution.Customer.ID

		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote submission")
		}
		return s.activity.Record(ctx, tx, submittedEntry(quote, ok))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmitted(quote.Division.String())
	ctx = s.logg.WithQuoteID(ctx, quote.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customer_id":      resolution.Customer.ID.String(),
		"customer_created": resolution.Created,
		"division":         quote.Division.String(),
		"vin_decoded":      ok,
	}), "quotes.submitted")

	if s.notifier != nil {
		s.notifier.QuoteReceived(ctx, notifications.QuoteConfirmation{
			QuoteID:     quote.ID,
			FirstName:   quote.FirstName,
			LastName:    quote.LastName,
			Email:       quote.Email,
			Phone:       quote.MobilePhone,
			Division:    quote.Division,
			ServiceType: quote.ServiceType,
			SMSOptIn:    resolution.Customer.SMSOptIn,
		})
	}

	result := &SubmitResult{
		Success:      true,
		SubmissionID: quote.ID,
		CustomerID:   resolution.Customer.ID,
		Message:      submitMessage,
		VINDecoded:   ok,
	}
	if ok {
		result.VehicleInfo = &decoded
	}
	return result, nil
}

// decodeVIN never fails the submission; upstream problems are logged and the
// form-supplied vehicle fields are kept.
func (s *service) decodeVIN(ctx context.Context, raw *string) (types.VehicleInfo, bool) {
	if raw == nil || s.vin == nil {
		return types.VehicleInfo{}, false
	}
	code := vin.Normalize(*raw)
	if !vin.Valid(code) {
		s.metrics.IncVINDecode("invalid")
		return types.VehicleInfo{}, false
	}

	info, err := s.vin.Decode(ctx, code)
	if err != nil {
		result := "failed"
		if errors.Is(err, vin.ErrNotDecoded) {
			result = "not_found"
		}
		s.metrics.IncVINDecode(result)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"vin":   code,
			"error": err.Error(),
		}), "quotes.vin_decode_failed")
		return types.VehicleInfo{}, false
	}
	if info.IsZero() {
		s.metrics.IncVINDecode("not_found")
		return types.VehicleInfo{}, false
	}
	s.metrics.IncVINDecode("decoded")
	return info, true
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	filter := ListFilter{Search: params.Search, Page: params.Page}
	if raw := strings.TrimSpace(params.Status); raw != "" && raw != "all" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quote submissions")
	}
	items := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Page: pagination.PageFor(params.Page, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(quote), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*QuoteDTO, error) {
	status, err := enums.ParseQuoteStatus(strings.TrimSpace(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]string{"status": fmt.Sprintf("must be one of %v", enums.QuoteStatuses())})
	}
	if status == enums.QuoteStatusConverted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use convert-to-job to convert a quote").
			WithDetails(map[string]string{"status": "converted is set by conversion only"})
	}

	var updated *models.QuoteSubmission
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if quote.Status == enums.QuoteStatusConverted {
			return pkgerrors.New(pkgerrors.CodeConflict, "quote has already been converted to a job")
		}
		previous := quote.Status
		if previous == status {
			updated = quote
			return nil
		}

		var processedAt *time.Time
		if previous == enums.QuoteStatusSubmitted && quote.ProcessedAt == nil {
			at := s.now().UTC()
			processedAt = &at
			quote.ProcessedAt = &at
		}
		if err := repo.UpdateStatus(ctx, quote.ID, status, processedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
		}
		quote.Status = status
		updated = quote

		return s.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityQuoteStatusChanged,
			Description: fmt.Sprintf("Quote status changed from %s to %s", previous, status),
			CustomerID:  quote.CustomerID,
			EntityType:  enums.EntityQuote,
			EntityID:    quote.ID,
			Details: map[string]any{
				"previousStatus": previous.String(),
				"newStatus":      status.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var removed *models.QuoteSubmission
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete quote submission")
		}
		removed = quote
		return s.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityQuoteDeleted,
			Description: fmt.Sprintf("Quote from %s %s deleted", quote.FirstName, quote.LastName),
			CustomerID:  quote.CustomerID,
			EntityType:  enums.EntityQuote,
			EntityID:    quote.ID,
			Details:     map[string]any{"status": quote.Status.String(), "files": len(quote.UploadedFiles)},
		})
	})
	if err != nil {
		return err
	}

	if s.files != nil && len(removed.UploadedFiles) > 0 {
		if err := s.files.Cleanup(removed.UploadedFiles); err != nil {
			s.logg.Error(s.logg.WithQuoteID(ctx, id.String()), "quotes.file_removal_failed", err)
		}
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	row, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute quote stats")
	}
	return statsFromRow(row), nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.QuoteSubmission, error) {
	quote, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote submission")
	}
	return quote, nil
}

func submittedEntry(q *models.QuoteSubmission, vinDecoded bool) activity.Entry {
	return activity.Entry{
		Type:        enums.ActivityQuoteSubmitted,
		Description: fmt.Sprintf("New %s quote submitted by %s %s", q.Division, q.FirstName, q.LastName),
		CustomerID:  q.CustomerID,
		EntityType:  enums.EntityQuote,
		EntityID:    q.ID,
		Details: map[string]any{
			"customerId":    q.CustomerID.String(),
			"division":      q.Division.String(),
			"serviceType":   q.ServiceType,
			"location":      q.Location,
			"vinDecoded":    vinDecoded,
			"windowsCount":  len(q.SelectedWindows),
			"wheelsCount":   len(q.SelectedWheels),
			"uploadedFiles": len(q.UploadedFiles),
		},
	}
}
