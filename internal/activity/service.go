package activity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

// Recorder appends activity entries. A non-nil tx binds the write to the
// caller's transaction so the entry commits or rolls back with it.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Service exposes the activity feed plus recording.
type Service interface {
	Recorder
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
}

// ListResult is one page of the activity feed.
type ListResult struct {
	Items []ItemDTO       `json:"items"`
	Page  pagination.Page `json:"page"`
}

type service struct {
	repo Repository
}

// NewService builds the activity service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if entry.Type == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "activity type required")
	}
	if err := s.repo.WithTx(tx).Create(ctx, entry.Model()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("record %s activity", entry.Type))
	}
	return nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.EntityType != nil && !filter.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid entityType")
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	return &ListResult{Items: items, Page: pagination.PageFor(filter.Page, total)}, nil
}
