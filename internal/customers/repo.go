package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

// Repository exposes persistence helpers for customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByEmailAndPhone(ctx context.Context, email, phone string) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) ([]models.Customer, error)
	FindByPhone(ctx context.Context, phone string) ([]models.Customer, error)
	List(ctx context.Context, search string, page pagination.Params) ([]models.Customer, int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementJobStats(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	QuotesFor(ctx context.Context, id uuid.UUID) ([]models.QuoteSubmission, error)
	JobsFor(ctx context.Context, id uuid.UUID) ([]models.Job, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a customers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmailAndPhone returns the oldest customer matching both identifiers.
func (r *repositoryImpl) FindByEmailAndPhone(ctx context.Context, email, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("lower(email) = ? AND phone = ?", strings.ToLower(email), phone).
		Order("created_at ASC, id ASC").
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("lower(email) = ? OR lower(secondary_email) = ?", strings.ToLower(email), strings.ToLower(email)).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) FindByPhone(ctx context.Context, phone string) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("phone = ? OR secondary_phone = ?", phone, phone).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) List(ctx context.Context, search string, page pagination.Params) ([]models.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR phone LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.Customer
	if err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementJobStats bumps the completed-job rollups in one statement.
func (r *repositoryImpl) IncrementJobStats(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_jobs":     gorm.Expr("total_jobs + 1"),
			"lifetime_value": gorm.Expr("lifetime_value + ?", amount.StringFixed(2)),
		}).Error
}

func (r *repositoryImpl) QuotesFor(ctx context.Context, id uuid.UUID) ([]models.QuoteSubmission, error) {
	var rows []models.QuoteSubmission
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("submitted_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) JobsFor(ctx context.Context, id uuid.UUID) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
