package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/glassops/glassops-backend/pkg/email"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/sms"
	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// QuoteConfirmation carries what the customer-facing messages need about a
// freshly submitted quote.
type QuoteConfirmation struct {
	QuoteID     uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Division    enums.Division
	ServiceType string
	SMSOptIn    bool
}

type submitter interface {
	Submit(ctx context.Context, task Task) bool
}

type NotifierParams struct {
	Dispatcher  submitter
	Email       email.Sender
	SMS         sms.Sender
	SMSEnabled  bool
	CompanyName string
}

// Notifier turns domain events into delivery tasks.
type Notifier struct {
	dispatch   submitter
	email      email.Sender
	sms        sms.Sender
	smsEnabled bool
	company    string
}

func NewNotifier(p NotifierParams) (*Notifier, error) {
	if p.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if p.Email == nil {
		return nil, fmt.Errorf("email sender required")
	}
	company := strings.TrimSpace(p.CompanyName)
	if company == "" {
		company = "our team"
	}
	return &Notifier{
		dispatch:   p.Dispatcher,
		email:      p.Email,
		sms:        p.SMS,
		smsEnabled: p.SMSEnabled && p.SMS != nil,
		company:    company,
	}, nil
}

// QuoteReceived queues the confirmation email, plus an SMS when the
// customer opted in and SMS is enabled. It returns the number of tasks
// accepted by the dispatcher.
func (n *Notifier) QuoteReceived(ctx context.Context, c QuoteConfirmation) int {
	accepted := 0

	if strings.TrimSpace(c.Email) != "" {
		msg := email.Message{
			To:      c.Email,
			ToName:  strings.TrimSpace(c.FirstName + " " + c.LastName),
			Subject: fmt.Sprintf("We received your %s quote request", divisionLabel(c.Division)),
			Text:    n.emailBody(c),
		}
		if n.dispatch.Submit(ctx, Task{
			Name:    "quote_confirmation_email",
			Channel: ChannelEmail,
			Run: func(ctx context.Context) error {
				return n.email.Send(ctx, msg)
			},
		}) {
			accepted++
		}
	}

	if n.smsEnabled && c.SMSOptIn && strings.TrimSpace(c.Phone) != "" {
		to := c.Phone
		body := fmt.Sprintf("Hi %s, %s received your %s quote request (ref %s). We'll be in touch shortly.",
			firstNonEmpty(c.FirstName, "there"), n.company, divisionLabel(c.Division), shortRef(c.QuoteID))
		if n.dispatch.Submit(ctx, Task{
			Name:    "quote_confirmation_sms",
			Channel: ChannelSMS,
			Run: func(ctx context.Context) error {
				return n.sms.Send(ctx, to, body)
			},
		}) {
			accepted++
		}
	}

	return accepted
}

func (n *Notifier) emailBody(c QuoteConfirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstNonEmpty(c.FirstName, "there"))
	fmt.Fprintf(&b, "Thanks for contacting %s. We received your %s quote request", n.company, divisionLabel(c.Division))
	if c.ServiceType != "" {
		fmt.Fprintf(&b, " for %s", c.ServiceType)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Reference: %s\n\n", shortRef(c.QuoteID))
	b.WriteString("A member of our team will review it and contact you with a quote shortly.\n")
	return b.String()
}

func divisionLabel(d enums.Division) string {
	switch d {
	case enums.DivisionWheels:
		return "wheel repair"
	case enums.DivisionGlass:
		return "auto glass"
	default:
		return "service"
	}
}

func shortRef(id uuid.UUID) string {
	s := id.String()
	return strings.ToUpper(s[:8])
}

func firstNonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
