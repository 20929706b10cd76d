// internal/mailer/mailer.go
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var (
	ErrNoRecipients  = errors.New("email has no recipients")
	ErrNotConfigured = errors.New("sendgrid api key is not configured")
)

type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Message is either a dynamic template (TemplateID + TemplateData) or inline
// content (Subject + HTML and/or Text).
type Message struct {
	To           []string
	Subject      string
	HTML         string
	Text         string
	TemplateID   string
	TemplateData map[string]any
	Attachments  []Attachment
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid delivers transactional email. Every send is attempted once.
type SendGrid struct {
	client    sendClient
	fromEmail string
	fromName  string
	log       *zap.Logger
}

func NewSendGrid(apiKey, fromEmail, fromName string, log *zap.Logger) (*SendGrid, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return newSendGrid(sendgrid.NewSendClient(apiKey), fromEmail, fromName, log), nil
}

func newSendGrid(client sendClient, fromEmail, fromName string, log *zap.Logger) *SendGrid {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGrid{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log.With(zap.String("component", "mailer")),
	}
}

// Build converts msg into a SendGrid v3 mail body.
func (s *SendGrid) Build(msg Message) (*mail.SGMailV3, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	if msg.TemplateID != "" {
		m.SetTemplateID(msg.TemplateID)
		for k, v := range msg.TemplateData {
			p.SetDynamicTemplateData(k, v)
		}
	} else {
		m.Subject = msg.Subject
		// text/plain has to precede text/html
		if msg.Text != "" {
			m.AddContent(mail.NewContent("text/plain", msg.Text))
		}
		if msg.HTML != "" {
			m.AddContent(mail.NewContent("text/html", msg.HTML))
		}
	}
	m.AddPersonalizations(p)

	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.FileName)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}
	return m, nil
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	m, err := s.Build(msg)
	if err != nil {
		return err
	}
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		s.log.Error("send failed", zap.Strings("to", msg.To), zap.Error(err))
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.log.Error("send rejected", zap.Strings("to", msg.To), zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	s.log.Info("email sent", zap.Strings("to", msg.To), zap.Int("attachments", len(msg.Attachments)))
	return nil
}
