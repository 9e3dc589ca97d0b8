package technicians

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
)

// Service exposes the technician directory and ZIP-based matching.
type Service interface {
	List(ctx context.Context, status *enums.TechnicianStatus) ([]TechnicianDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*TechnicianDTO, error)
	Create(ctx context.Context, input CreateTechnicianInput) (*TechnicianDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateTechnicianInput) (*TechnicianDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MatchByZip returns the technician auto-assignment would pick for zip, or nil.
	// A non-nil tx reads through the caller's transaction.
	MatchByZip(ctx context.Context, tx *gorm.DB, zip string) (*models.Technician, error)
}

type service struct {
	repo Repository
}

// NewService builds the technician directory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("technician repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, status *enums.TechnicianStatus) ([]TechnicianDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid technician status")
	}
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list technicians")
	}
	out := make([]TechnicianDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TechnicianDTO, error) {
	tech, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(tech), nil
}

func (s *service) Create(ctx context.Context, input CreateTechnicianInput) (*TechnicianDTO, error) {
	status := input.Status
	if status == "" {
		status = enums.TechnicianStatusAvailable
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid technician status")
	}
	tech := &models.Technician{
		Name:     strings.TrimSpace(input.Name),
		Email:    input.Email,
		Phone:    strings.TrimSpace(input.Phone),
		Status:   status,
		Rating:   input.Rating,
		ZipCodes: normalizeZips(input.ZipCodes),
	}
	if err := s.repo.Create(ctx, tech); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create technician")
	}
	return FromModel(tech), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateTechnicianInput) (*TechnicianDTO, error) {
	tech, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid technician status")
		}
		tech.Status = *input.Status
	}
	if input.Name != nil {
		tech.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		tech.Email = input.Email
	}
	if input.Phone != nil {
		tech.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Rating != nil {
		tech.Rating = *input.Rating
	}
	if input.ZipCodes != nil {
		tech.ZipCodes = normalizeZips(*input.ZipCodes)
	}
	if err := s.repo.Update(ctx, tech); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update technician")
	}
	return FromModel(tech), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete technician")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "technician not found")
	}
	return nil
}

func (s *service) MatchByZip(ctx context.Context, tx *gorm.DB, zip string) (*models.Technician, error) {
	available := enums.TechnicianStatusAvailable
	rows, err := s.repo.WithTx(tx).List(ctx, &available)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load available technicians")
	}
	return SelectForZip(rows, zip), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	tech, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "technician not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load technician")
	}
	return tech, nil
}
