package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type stubCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (s *stubCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSenderSend(t *testing.T) {
	stub := &stubCreator{}
	sender := &TwilioSender{api: stub, from: "+15550001111"}

	require.NoError(t, sender.Send(context.Background(), " +15552223333 ", "Quote received"))
	require.NotNil(t, stub.params)
	assert.Equal(t, "+15552223333", *stub.params.To)
	assert.Equal(t, "+15550001111", *stub.params.From)
	assert.Equal(t, "Quote received", *stub.params.Body)
}

func TestTwilioSenderWrapsError(t *testing.T) {
	sender := &TwilioSender{api: &stubCreator{err: errors.New("boom")}, from: "+1"}
	err := sender.Send(context.Background(), "+1555", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestTwilioSenderRequiresRecipient(t *testing.T) {
	sender := &TwilioSender{api: &stubCreator{}, from: "+1"}
	require.Error(t, sender.Send(context.Background(), "", "hi"))
}

func TestNewTwilioSenderValidatesCredentials(t *testing.T) {
	_, err := NewTwilioSender("", "token", "+1")
	require.Error(t, err)
	_, err = NewTwilioSender("AC1", "token", "")
	require.Error(t, err)
}

func TestDisabledSender(t *testing.T) {
	require.ErrorIs(t, Disabled{}.Send(context.Background(), "+1", "x"), ErrDisabled)
}
