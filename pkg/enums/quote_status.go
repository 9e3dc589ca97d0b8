package enums

import "fmt"

// QuoteStatus tracks a quote submission through intake.
type QuoteStatus string

const (
	QuoteStatusSubmitted QuoteStatus = "submitted"
	QuoteStatusProcessed QuoteStatus = "processed"
	QuoteStatusQuoted    QuoteStatus = "quoted"
	QuoteStatusConverted QuoteStatus = "converted"
	QuoteStatusArchived  QuoteStatus = "archived"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusSubmitted,
	QuoteStatusProcessed,
	QuoteStatusQuoted,
	QuoteStatusConverted,
	QuoteStatusArchived,
}

// QuoteStatuses returns the canonical ordering used by stats and filters.
func QuoteStatuses() []QuoteStatus {
	out := make([]QuoteStatus, len(validQuoteStatuses))
	copy(out, validQuoteStatuses)
	return out
}

func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the status matches the quote_status enum.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
