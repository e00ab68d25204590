// Package mailer sends transactional email through Resend.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// Message is one outgoing email with both an HTML and a plaintext body.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// ResendMailer delivers messages with the Resend API.
type ResendMailer struct {
	client *resend.Client
}

// NewResendMailer creates a mailer for the given API key.
func NewResendMailer(apiKey string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}
	return &ResendMailer{client: resend.NewClient(apiKey)}, nil
}

// Send delivers msg and returns the provider's email id.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("send email via resend: %w", err)
	}
	return sent.Id, nil
}

// LogMailer only logs. It stands in for Resend when no API key is configured
// so local checkouts still run end to end.
type LogMailer struct{}

// Send logs the envelope of msg.
func (LogMailer) Send(_ context.Context, msg Message) (string, error) {
	log.Printf("Email not sent (no provider configured): to=%v subject=%q", msg.To, msg.Subject)
	return "", nil
}
