package notifications

import (
	"context"
	"testing"

	"github.com/glassops/glassops-backend/pkg/email"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSubmitter struct {
	tasks  []Task
	reject bool
}

func (c *capturingSubmitter) Submit(_ context.Context, task Task) bool {
	if c.reject {
		return false
	}
	c.tasks = append(c.tasks, task)
	return true
}

type stubEmail struct{ sent []email.Message }

func (s *stubEmail) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type stubSMS struct {
	to, body string
}

func (s *stubSMS) Send(_ context.Context, to, body string) error {
	s.to, s.body = to, body
	return nil
}

func confirmation() QuoteConfirmation {
	return QuoteConfirmation{
		QuoteID:     uuid.MustParse("3f2a9c10-0000-4000-8000-000000000001"),
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "+15551234567",
		Division:    enums.DivisionGlass,
		ServiceType: "windshield_replacement",
		SMSOptIn:    true,
	}
}

func TestQuoteReceivedQueuesEmailAndSMS(t *testing.T) {
	sub := &capturingSubmitter{}
	mail := &stubEmail{}
	text := &stubSMS{}
	n, err := NewNotifier(NotifierParams{Dispatcher: sub, Email: mail, SMS: text, SMSEnabled: true, CompanyName: "GlassOps"})
	require.NoError(t, err)

	require.Equal(t, 2, n.QuoteReceived(context.Background(), confirmation()))
	require.Len(t, sub.tasks, 2)
	assert.Equal(t, ChannelEmail, sub.tasks[0].Channel)
	assert.Equal(t, ChannelSMS, sub.tasks[1].Channel)

	for _, task := range sub.tasks {
		require.NoError(t, task.Run(context.Background()))
	}
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "jane@example.com", mail.sent[0].To)
	assert.Equal(t, "Jane Doe", mail.sent[0].ToName)
	assert.Contains(t, mail.sent[0].Subject, "auto glass")
	assert.Contains(t, mail.sent[0].Text, "3F2A9C10")
	assert.Contains(t, mail.sent[0].Text, "windshield_replacement")
	assert.Equal(t, "+15551234567", text.to)
	assert.Contains(t, text.body, "GlassOps")
}

func TestQuoteReceivedSkipsSMSWithoutOptIn(t *testing.T) {
	sub := &capturingSubmitter{}
	n, err := NewNotifier(NotifierParams{Dispatcher: sub, Email: &stubEmail{}, SMS: &stubSMS{}, SMSEnabled: true})
	require.NoError(t, err)

	c := confirmation()
	c.SMSOptIn = false
	assert.Equal(t, 1, n.QuoteReceived(context.Background(), c))
	assert.Equal(t, ChannelEmail, sub.tasks[0].Channel)
}

func TestQuoteReceivedSkipsSMSWhenDisabled(t *testing.T) {
	sub := &capturingSubmitter{}
	n, err := NewNotifier(NotifierParams{Dispatcher: sub, Email: &stubEmail{}, SMS: &stubSMS{}})
	require.NoError(t, err)

	assert.Equal(t, 1, n.QuoteReceived(context.Background(), confirmation()))
}

func TestQuoteReceivedCountsOnlyAcceptedTasks(t *testing.T) {
	n, err := NewNotifier(NotifierParams{Dispatcher: &capturingSubmitter{reject: true}, Email: &stubEmail{}})
	require.NoError(t, err)

	assert.Equal(t, 0, n.QuoteReceived(context.Background(), confirmation()))
}

func TestNewNotifierRequiresDependencies(t *testing.T) {
	_, err := NewNotifier(NotifierParams{Email: &stubEmail{}})
	require.Error(t, err)
	_, err = NewNotifier(NotifierParams{Dispatcher: &capturingSubmitter{}})
	require.Error(t, err)
}
