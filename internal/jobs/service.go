package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerStats interface {
	RecordCompletedJob(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
}

// Service exposes job listing and lifecycle updates.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*JobDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*JobDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	customers customerStats
	activity  activity.Recorder
}

func NewService(repo Repository, tx txRunner, customers customerStats, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("job repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer stats required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, tx: tx, customers: customers, activity: recorder}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	filter := ListFilter{CustomerID: params.CustomerID, Page: params.Page}
	if raw := strings.TrimSpace(params.Status); raw != "" && raw != "all" {
		status, err := enums.ParseJobStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	items := make([]JobDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Page: pagination.PageFor(params.Page, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*JobDTO, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(job), nil
}

// UpdateStatus applies a lifecycle transition. Completing a job rolls its
// amount into the customer's totals in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*JobDTO, error) {
	status, err := enums.ParseJobStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]string{"status": "must be one of [pending scheduled in_progress completed cancelled]"})
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"amount": "must be at least 0"})
	}

	var out *JobDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		job, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		previous := job.Status
		if previous.IsTerminal() && previous != status {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "job is already %s", previous)
		}
		if input.Amount != nil {
			job.Amount = input.Amount.Round(2)
		}
		job.Status = status
		if err := repo.Save(ctx, job); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update job")
		}
		out = FromModel(job)
		if previous == status {
			return nil
		}

		if status == enums.JobStatusCompleted && job.CustomerID != nil {
			if err := s.customers.RecordCompletedJob(ctx, tx, *job.CustomerID, job.Amount); err != nil {
				return err
			}
		}

		return s.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityJobStatusChanged,
			Description: fmt.Sprintf("Job for %s moved from %s to %s", job.CustomerName, previous, status),
			CustomerID:  job.CustomerID,
			EntityType:  enums.EntityJob,
			EntityID:    job.ID,
			Details: map[string]any{
				"previousStatus": string(previous),
				"newStatus":      string(status),
				"amount":         job.Amount.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
}
