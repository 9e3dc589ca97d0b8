package technicians

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
)

// Repository exposes persistence helpers for technicians.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tech *models.Technician) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	List(ctx context.Context, status *enums.TechnicianStatus) ([]models.Technician, error)
	Update(ctx context.Context, tech *models.Technician) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a technicians repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, tech *models.Technician) error {
	return r.db.WithContext(ctx).Create(tech).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	var tech models.Technician
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tech).Error; err != nil {
		return nil, err
	}
	return &tech, nil
}

// List returns technicians ordered by rating then id. ZIP coverage is filtered
// in Go by SelectForZip so the query stays portable across drivers.
func (r *repositoryImpl) List(ctx context.Context, status *enums.TechnicianStatus) ([]models.Technician, error) {
	query := r.db.WithContext(ctx).Model(&models.Technician{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.Technician
	if err := query.Order("rating DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, tech *models.Technician) error {
	return r.db.WithContext(ctx).Save(tech).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Technician{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
