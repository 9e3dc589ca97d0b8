package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultSendgridHost = "https://api.sendgrid.com"
	sendgridMailPath    = "/v3/mail/send"
)

// SendgridSender delivers plain-text messages through the SendGrid v3 API.
type SendgridSender struct {
	apiKey string
	from   *mail.Email
	host   string
}

type SendgridParams struct {
	APIKey   string
	From     string
	FromName string
	BaseURL  string
}

func NewSendgridSender(p SendgridParams) (*SendgridSender, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	if strings.TrimSpace(p.From) == "" {
		return nil, fmt.Errorf("sendgrid from address required")
	}
	host := strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if host == "" {
		host = defaultSendgridHost
	}
	return &SendgridSender{
		apiKey: p.APIKey,
		from:   mail.NewEmail(p.FromName, p.From),
		host:   host,
	}, nil
}

// Send builds a fresh client per message; sendgrid.Client keeps the body on
// its request and is not safe to share between workers.
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	request := sendgrid.GetRequest(s.apiKey, sendgridMailPath, s.host)
	request.Method = rest.Post
	client := &sendgrid.Client{Request: request}

	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewV3MailInit(s.from, msg.Subject, to, mail.NewContent("text/plain", msg.Text))

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := resp.Body
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(body))
	}
	return nil
}
