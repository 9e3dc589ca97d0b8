package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes customer CRUD, lookup, and identity resolution.
type Service interface {
	List(ctx context.Context, search string, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) (*History, error)
	FindByEmail(ctx context.Context, email string) ([]CustomerDTO, error)
	FindByPhone(ctx context.Context, phone string) ([]CustomerDTO, error)

	// Resolve finds the customer owning email+phone or creates one. It must run
	// inside the caller's transaction.
	Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (*Resolution, error)
	// RecordCompletedJob bumps total_jobs and lifetime_value.
	RecordCompletedJob(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
}

// ResolveInput seeds a new customer from quote contact fields.
type ResolveInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	PostalCode string
}

// Resolution reports the resolved customer and whether it was just created.
type Resolution struct {
	Customer *models.Customer
	Created  bool
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activity.Recorder
}

// NewService builds a customer service.
func NewService(repo Repository, tx txRunner, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, tx: tx, activity: recorder}, nil
}

func (s *service) List(ctx context.Context, search string, page pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return &ListResult{Items: fromModels(rows), Page: pagination.PageFor(page, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	customer := input.toModel()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
		}
		return s.activity.Record(ctx, tx, createdEntry(customer, "admin"))
	})
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	var updated *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		customer, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		changed := input.apply(customer)
		updated = customer
		if len(changed) == 0 {
			return nil
		}
		if err := repo.Update(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
		}
		return s.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityCustomerUpdated,
			Description: fmt.Sprintf("Customer %s updated", customer.FullName()),
			CustomerID:  &customer.ID,
			EntityType:  enums.EntityCustomer,
			EntityID:    customer.ID,
			Details:     map[string]any{"fields": changed},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		customer, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
		}
		return s.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityCustomerDeleted,
			Description: fmt.Sprintf("Customer %s deleted", customer.FullName()),
			EntityType:  enums.EntityCustomer,
			EntityID:    customer.ID,
			Details:     map[string]any{"email": customer.Email, "phone": customer.Phone},
		})
	})
}

func (s *service) History(ctx context.Context, id uuid.UUID) (*History, error) {
	customer, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	quotes, err := s.repo.QuotesFor(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer quotes")
	}
	jobs, err := s.repo.JobsFor(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer jobs")
	}

	history := &History{
		Customer:     *FromModel(customer),
		Quotes:       make([]HistoryQuote, 0, len(quotes)),
		Appointments: []any{},
		Transactions: make([]HistoryJob, 0, len(jobs)),
	}
	for _, q := range quotes {
		history.Quotes = append(history.Quotes, HistoryQuote{
			ID:          q.ID,
			Division:    q.Division,
			ServiceType: q.ServiceType,
			Status:      q.Status,
			ZipCode:     q.ZipCode,
			SubmittedAt: q.SubmittedAt,
		})
	}
	for _, j := range jobs {
		history.Transactions = append(history.Transactions, HistoryJob{
			ID:          j.ID,
			QuoteID:     j.QuoteID,
			Division:    j.Division,
			ServiceType: j.ServiceType,
			Status:      j.Status,
			Amount:      j.Amount,
			CreatedAt:   j.CreatedAt,
		})
	}
	return history, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) ([]CustomerDTO, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	rows, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customers by email")
	}
	return fromModels(rows), nil
}

func (s *service) FindByPhone(ctx context.Context, phone string) ([]CustomerDTO, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	rows, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customers by phone")
	}
	return fromModels(rows), nil
}

func (s *service) Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (*Resolution, error) {
	email := NormalizeEmail(input.Email)
	phone := NormalizePhone(input.Phone)
	if email == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and phone are required to resolve a customer")
	}

	repo := s.repo.WithTx(tx)
	existing, err := repo.FindByEmailAndPhone(ctx, email, phone)
	if err == nil {
		return &Resolution{Customer: existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}

	customer := &models.Customer{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      email,
		Phone:      phone,
		EmailOptIn: true,
	}
	if zip := strings.TrimSpace(input.PostalCode); zip != "" {
		customer.PostalCode = &zip
	}
	if err := repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	if err := s.activity.Record(ctx, tx, createdEntry(customer, "quote_submission")); err != nil {
		return nil, err
	}
	return &Resolution{Customer: customer, Created: true}, nil
}

func (s *service) RecordCompletedJob(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	if err := s.repo.WithTx(tx).IncrementJobStats(ctx, id, amount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer job stats")
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Customer, error) {
	customer, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func createdEntry(c *models.Customer, source string) activity.Entry {
	return activity.Entry{
		Type:        enums.ActivityCustomerCreated,
		Description: fmt.Sprintf("New customer %s", c.FullName()),
		CustomerID:  &c.ID,
		EntityType:  enums.EntityCustomer,
		EntityID:    c.ID,
		Details:     map[string]any{"source": source, "email": c.Email, "phone": c.Phone},
	}
}
