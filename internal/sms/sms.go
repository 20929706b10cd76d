// internal/sms/sms.go
package sms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("twilio credentials are not configured")
	ErrNoNumber      = errors.New("destination phone number is empty")
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio sends plain-text SMS from a single configured number.
type Twilio struct {
	api  messageCreator
	from string
	log  *zap.Logger
}

func NewTwilio(accountSID, authToken, fromNumber string, log *zap.Logger) (*Twilio, error) {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil, ErrNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilio(client.Api, fromNumber, log), nil
}

func newTwilio(api messageCreator, from string, log *zap.Logger) *Twilio {
	if log == nil {
		log = zap.NewNop()
	}
	return &Twilio{api: api, from: from, log: log.With(zap.String("component", "sms"))}
}

// Send is attempted once; failures are returned, never retried.
func (t *Twilio) Send(body, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoNumber
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		t.log.Error("sms failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("twilio: %w", err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.Info("sms sent", zap.String("to", to), zap.String("sid", sid))
	return nil
}
