// Package resend implements a Provider that sends emails via the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/sanjanag197/web-portfolio/internal/email"
	"github.com/sanjanag197/web-portfolio/internal/provider"
)

// EmailsAPI is the subset of the Resend client used by the provider.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Provider sends each message of a batch with its own Resend request and
// stops at the first failure.
type Provider struct {
	emails EmailsAPI
}

// New creates a Provider for the given API key.
func New(apiKey string) *Provider {
	return &Provider{emails: resend.NewClient(apiKey).Emails}
}

// NewWithClient creates a Provider with a custom client, used for testing.
func NewWithClient(emails EmailsAPI) *Provider {
	return &Provider{emails: emails}
}

// Send implements provider.Provider.
func (p *Provider) Send(ctx context.Context, msgs []*email.Email) (*provider.Receipt, error) {
	receipt := &provider.Receipt{}
	responses := make([]*resend.SendEmailResponse, 0, len(msgs))

	for i, msg := range msgs {
		resp, err := p.emails.SendWithContext(ctx, buildRequest(msg))
		if err != nil {
			return nil, fmt.Errorf("resend: failed to send message %d of %d: %w", i+1, len(msgs), err)
		}
		if resp == nil {
			return nil, &provider.UnexpectedResponseError{Provider: p.Name()}
		}
		responses = append(responses, resp)
		receipt.MessageIDs = append(receipt.MessageIDs, resp.Id)
	}

	receipt.Raw = responses
	return receipt, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "resend"
}

func buildRequest(msg *email.Email) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    msg.From.String(),
		To:      email.Formatted(msg.To),
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}
	if len(msg.Cc) > 0 {
		req.Cc = email.Formatted(msg.Cc)
	}
	if msg.ReplyTo != nil {
		req.ReplyTo = msg.ReplyTo.String()
	}
	if msg.CustomID != "" {
		req.Headers = map[string]string{"X-Entity-Ref-ID": msg.CustomID}
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}
	return req
}
