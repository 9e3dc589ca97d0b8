package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

// CustomerDTO is the transport shape for a customer.
type CustomerDTO struct {
	ID             uuid.UUID       `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	SecondaryEmail *string         `json:"secondaryEmail,omitempty"`
	SecondaryPhone *string         `json:"secondaryPhone,omitempty"`
	Address        *string         `json:"address,omitempty"`
	City           *string         `json:"city,omitempty"`
	State          *string         `json:"state,omitempty"`
	PostalCode     *string         `json:"postalCode,omitempty"`
	SMSOptIn       bool            `json:"smsOptIn"`
	EmailOptIn     bool            `json:"emailOptIn"`
	Tags           []string        `json:"tags"`
	TotalJobs      int             `json:"totalJobs"`
	LifetimeValue  decimal.Decimal `json:"lifetimeValue"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		SecondaryEmail: c.SecondaryEmail,
		SecondaryPhone: c.SecondaryPhone,
		Address:        c.Address,
		City:           c.City,
		State:          c.State,
		PostalCode:     c.PostalCode,
		SMSOptIn:       c.SMSOptIn,
		EmailOptIn:     c.EmailOptIn,
		Tags:           append([]string{}, c.Tags...),
		TotalJobs:      c.TotalJobs,
		LifetimeValue:  c.LifetimeValue,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func fromModels(rows []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// CreateCustomerInput is the admin payload for a new customer.
type CreateCustomerInput struct {
	FirstName      string   `json:"firstName" validate:"required,max=100"`
	LastName       string   `json:"lastName" validate:"required,max=100"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone" validate:"required,min=7,max=32"`
	SecondaryEmail *string  `json:"secondaryEmail,omitempty" validate:"omitempty,email"`
	SecondaryPhone *string  `json:"secondaryPhone,omitempty" validate:"omitempty,max=32"`
	Address        *string  `json:"address,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	PostalCode     *string  `json:"postalCode,omitempty"`
	SMSOptIn       bool     `json:"smsOptIn"`
	EmailOptIn     *bool    `json:"emailOptIn,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

func (in CreateCustomerInput) toModel() *models.Customer {
	emailOptIn := true
	if in.EmailOptIn != nil {
		emailOptIn = *in.EmailOptIn
	}
	return &models.Customer{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          NormalizeEmail(in.Email),
		Phone:          NormalizePhone(in.Phone),
		SecondaryEmail: in.SecondaryEmail,
		SecondaryPhone: in.SecondaryPhone,
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		SMSOptIn:       in.SMSOptIn,
		EmailOptIn:     emailOptIn,
		Tags:           in.Tags,
		Notes:          in.Notes,
	}
}

// UpdateCustomerInput carries a partial update; nil fields are left untouched.
type UpdateCustomerInput struct {
	FirstName      *string   `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName       *string   `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email          *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string   `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
	SecondaryEmail *string   `json:"secondaryEmail,omitempty" validate:"omitempty,email"`
	SecondaryPhone *string   `json:"secondaryPhone,omitempty" validate:"omitempty,max=32"`
	Address        *string   `json:"address,omitempty"`
	City           *string   `json:"city,omitempty"`
	State          *string   `json:"state,omitempty"`
	PostalCode     *string   `json:"postalCode,omitempty"`
	SMSOptIn       *bool     `json:"smsOptIn,omitempty"`
	EmailOptIn     *bool     `json:"emailOptIn,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// apply mutates c and returns the names of the fields that changed.
func (in UpdateCustomerInput) apply(c *models.Customer) []string {
	var changed []string
	setString := func(name string, dst *string, src *string, norm func(string) string) {
		if src == nil {
			return
		}
		v := norm(*src)
		if *dst != v {
			*dst = v
			changed = append(changed, name)
		}
	}
	setOptional := func(name string, dst **string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst == nil || **dst != v {
			*dst = &v
			changed = append(changed, name)
		}
	}
	setBool := func(name string, dst *bool, src *bool) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}

	setString("firstName", &c.FirstName, in.FirstName, strings.TrimSpace)
	setString("lastName", &c.LastName, in.LastName, strings.TrimSpace)
	setString("email", &c.Email, in.Email, NormalizeEmail)
	setString("phone", &c.Phone, in.Phone, NormalizePhone)
	setOptional("secondaryEmail", &c.SecondaryEmail, in.SecondaryEmail)
	setOptional("secondaryPhone", &c.SecondaryPhone, in.SecondaryPhone)
	setOptional("address", &c.Address, in.Address)
	setOptional("city", &c.City, in.City)
	setOptional("state", &c.State, in.State)
	setOptional("postalCode", &c.PostalCode, in.PostalCode)
	setOptional("notes", &c.Notes, in.Notes)
	setBool("smsOptIn", &c.SMSOptIn, in.SMSOptIn)
	setBool("emailOptIn", &c.EmailOptIn, in.EmailOptIn)
	if in.Tags != nil {
		c.Tags = append(c.Tags[:0:0], (*in.Tags)...)
		changed = append(changed, "tags")
	}
	return changed
}

// ListResult is one page of customers.
type ListResult struct {
	Items []CustomerDTO   `json:"items"`
	Page  pagination.Page `json:"page"`
}

// HistoryQuote summarizes a quote in a customer's history.
type HistoryQuote struct {
	ID          uuid.UUID         `json:"id"`
	Division    enums.Division    `json:"division"`
	ServiceType string            `json:"serviceType"`
	Status      enums.QuoteStatus `json:"status"`
	ZipCode     string            `json:"zipCode"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// HistoryJob summarizes a job in a customer's history.
type HistoryJob struct {
	ID          uuid.UUID       `json:"id"`
	QuoteID     *uuid.UUID      `json:"quoteId"`
	Division    enums.Division  `json:"division"`
	ServiceType string          `json:"serviceType"`
	Status      enums.JobStatus `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// History rolls up everything attached to a customer. Appointments are not
// modelled; the list is always empty.
type History struct {
	Customer     CustomerDTO    `json:"customer"`
	Quotes       []HistoryQuote `json:"quotes"`
	Appointments []any          `json:"appointments"`
	Transactions []HistoryJob   `json:"transactions"`
}

// NormalizeEmail trims and lowercases an email for identity matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone trims surrounding whitespace. Formatting is preserved.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
