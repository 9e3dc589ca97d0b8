package enums

// ActivityType labels append-only audit entries.
type ActivityType string

const (
	ActivityCustomerCreated        ActivityType = "customer_created"
	ActivityCustomerUpdated        ActivityType = "customer_updated"
	ActivityCustomerDeleted        ActivityType = "customer_deleted"
	ActivityQuoteSubmitted         ActivityType = "quote_submitted"
	ActivityQuoteStatusChanged     ActivityType = "quote_status_changed"
	ActivityQuoteDeleted           ActivityType = "quote_deleted"
	ActivityQuoteConverted         ActivityType = "quote_converted"
	ActivityQuoteArchived          ActivityType = "quote_archived"
	ActivityTechnicianAutoAssigned ActivityType = "technician_auto_assigned"
	ActivityJobStatusChanged       ActivityType = "job_status_changed"
)

// EntityType names the record an activity entry refers to.
type EntityType string

const (
	EntityCustomer   EntityType = "customer"
	EntityQuote      EntityType = "quote_submission"
	EntityJob        EntityType = "job"
	EntityTechnician EntityType = "technician"
)

func (e EntityType) String() string {
	return string(e)
}

// IsValid reports whether e is a known entity type.
func (e EntityType) IsValid() bool {
	switch e {
	case EntityCustomer, EntityQuote, EntityJob, EntityTechnician:
		return true
	default:
		return false
	}
}
