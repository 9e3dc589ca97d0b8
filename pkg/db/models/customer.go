package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is the CRM identity record resolved from quote intake (email + phone).
type Customer struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	FirstName      string          `gorm:"column:first_name;not null"`
	LastName       string          `gorm:"column:last_name;not null"`
	Email          string          `gorm:"column:email;not null"`
	Phone          string          `gorm:"column:phone;not null"`
	SecondaryEmail *string         `gorm:"column:secondary_email"`
	SecondaryPhone *string         `gorm:"column:secondary_phone"`
	Address        *string         `gorm:"column:address"`
	City           *string         `gorm:"column:city"`
	State          *string         `gorm:"column:state"`
	PostalCode     *string         `gorm:"column:postal_code"`
	SMSOptIn       bool            `gorm:"column:sms_opt_in;not null;default:false"`
	EmailOptIn     bool            `gorm:"column:email_opt_in;not null;default:true"`
	Tags           pq.StringArray  `gorm:"column:tags;type:text[]"`
	TotalJobs      int             `gorm:"column:total_jobs;not null;default:0"`
	LifetimeValue  decimal.Decimal `gorm:"column:lifetime_value;type:numeric(12,2);not null;default:0"`
	Notes          *string         `gorm:"column:notes"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }

// BeforeCreate assigns a UUID when the caller did not.
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	return nil
}

// FullName joins first and last names.
func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
