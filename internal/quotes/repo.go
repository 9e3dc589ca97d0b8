package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

// Repository exposes persistence helpers for quote submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.QuoteSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error)
	List(ctx context.Context, filter ListFilter) ([]models.QuoteSubmission, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus, processedAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context, now time.Time) (*StatsRow, error)
	StaleIDs(ctx context.Context, statuses []enums.QuoteStatus, before time.Time, limit int) ([]uuid.UUID, error)
	Archive(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// ListFilter narrows the admin quote listing.
type ListFilter struct {
	Status *enums.QuoteStatus
	Search string
	Page   pagination.Params
}

// StatsRow is the raw aggregate read by Stats.
type StatsRow struct {
	Total     int64 `gorm:"column:total"`
	Submitted int64 `gorm:"column:submitted"`
	Processed int64 `gorm:"column:processed"`
	Quoted    int64 `gorm:"column:quoted"`
	Converted int64 `gorm:"column:converted"`
	Archived  int64 `gorm:"column:archived"`
	Last24h   int64 `gorm:"column:last24h"`
	Last7d    int64 `gorm:"column:last7d"`
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a quotes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, quote *models.QuoteSubmission) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error) {
	var quote models.QuoteSubmission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error) {
	var quote models.QuoteSubmission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.QuoteSubmission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QuoteSubmission{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR mobile_phone LIKE ? OR zip_code LIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.QuoteSubmission
	err := query.
		Order("submitted_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus, processedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}
	res := r.db.WithContext(ctx).Model(&models.QuoteSubmission{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.QuoteSubmission{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Stats computes every counter in one pass over quote_submissions.
func (r *repositoryImpl) Stats(ctx context.Context, now time.Time) (*StatsRow, error) {
	now = now.UTC()
	var row StatsRow
	err := r.db.WithContext(ctx).
		Model(&models.QuoteSubmission{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS submitted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS processed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS quoted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS converted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS archived,
			COALESCE(SUM(CASE WHEN submitted_at >= ? THEN 1 ELSE 0 END), 0) AS last24h,
			COALESCE(SUM(CASE WHEN submitted_at >= ? THEN 1 ELSE 0 END), 0) AS last7d`,
			enums.QuoteStatusSubmitted,
			enums.QuoteStatusProcessed,
			enums.QuoteStatusQuoted,
			enums.QuoteStatusConverted,
			enums.QuoteStatusArchived,
			now.Add(-24*time.Hour),
			now.Add(-7*24*time.Hour),
		).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// StaleIDs returns up to limit quotes in the given statuses submitted before
// the cutoff, oldest first.
func (r *repositoryImpl) StaleIDs(ctx context.Context, statuses []enums.QuoteStatus, before time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.QuoteSubmission{}).
		Where("status IN ?", statuses).
		Where("submitted_at < ?", before.UTC()).
		Order("submitted_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repositoryImpl) Archive(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.QuoteSubmission{}).
		Where("id IN ?", ids).
		Update("status", enums.QuoteStatusArchived)
	return res.RowsAffected, res.Error
}
