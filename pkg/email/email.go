package email

import (
	"context"
	"errors"
	"strings"

	"github.com/glassops/glassops-backend/pkg/logger"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrMissingRecipient = errors.New("email recipient required")

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject required")
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used when
// no SendGrid key is configured.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"email_to":      msg.To,
			"email_subject": msg.Subject,
		})
		s.logg.Info(ctx, "email.logged")
	}
	return nil
}
