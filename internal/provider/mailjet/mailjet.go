// Package mailjet implements a Provider that sends emails via the Mailjet Send API v3.1.
package mailjet

import (
	"context"
	"fmt"
	"log/slog"

	mj "github.com/mailjet/mailjet-apiv3-go/v4"

	"github.com/sanjanag197/web-portfolio/internal/email"
	"github.com/sanjanag197/web-portfolio/internal/provider"
)

// Config holds the credentials for creating a Provider.
type Config struct {
	APIKey    string
	APISecret string
}

// SendAPI is the subset of the Mailjet client used by the provider.
// Used for testing with fake implementations.
type SendAPI interface {
	SendMailV31(data *mj.MessagesV31) (*mj.ResultsV31, error)
}

// Provider sends all messages of a batch in a single Send API v3.1 request,
// so the batch either succeeds or fails as a whole.
type Provider struct {
	client SendAPI
}

// New creates a Provider backed by the official Mailjet client.
func New(cfg Config) *Provider {
	return &Provider{client: clientAdapter{mj.NewMailjetClient(cfg.APIKey, cfg.APISecret)}}
}

// NewWithClient creates a Provider with a custom client, used for testing.
func NewWithClient(client SendAPI) *Provider {
	return &Provider{client: client}
}

type clientAdapter struct {
	c *mj.Client
}

func (a clientAdapter) SendMailV31(data *mj.MessagesV31) (*mj.ResultsV31, error) {
	return a.c.SendMailV31(data)
}

// Send delivers msgs through one Mailjet request.
// The Mailjet client has no context support; ctx is only checked before the call.
func (p *Provider) Send(ctx context.Context, msgs []*email.Email) (*provider.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := buildMessages(msgs)
	res, err := p.client.SendMailV31(payload)
	if err != nil {
		return nil, fmt.Errorf("mailjet: %w", err)
	}

	if res == nil || res.ResultsV31 == nil {
		slog.Warn("mailjet response carried no messages")
		unexpected := &provider.UnexpectedResponseError{Provider: p.Name()}
		if res != nil {
			unexpected.Response = res
		}
		return nil, unexpected
	}

	receipt := &provider.Receipt{Raw: res}
	for _, r := range res.ResultsV31 {
		for _, to := range r.To {
			receipt.MessageIDs = append(receipt.MessageIDs, to.MessageUUID)
		}
	}
	return receipt, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mailjet"
}

func buildMessages(msgs []*email.Email) *mj.MessagesV31 {
	info := make([]mj.InfoMessagesV31, 0, len(msgs))
	for _, msg := range msgs {
		m := mj.InfoMessagesV31{
			From:     recipient(msg.From),
			To:       recipients(msg.To),
			Subject:  msg.Subject,
			TextPart: msg.TextBody,
			HTMLPart: msg.HTMLBody,
			CustomID: msg.CustomID,
		}
		if msg.ReplyTo != nil {
			m.ReplyTo = recipient(*msg.ReplyTo)
		}
		if len(msg.Cc) > 0 {
			m.Cc = recipients(msg.Cc)
		}
		if len(msg.Attachments) > 0 {
			atts := make(mj.AttachmentsV31, 0, len(msg.Attachments))
			for _, a := range msg.Attachments {
				atts = append(atts, mj.AttachmentV31{
					ContentType:   a.ContentType,
					Filename:      a.Filename,
					Base64Content: a.Base64(),
				})
			}
			m.Attachments = &atts
		}
		info = append(info, m)
	}
	return &mj.MessagesV31{Info: info}
}

func recipient(a email.Address) *mj.RecipientV31 {
	return &mj.RecipientV31{Email: a.Email, Name: a.Name}
}

func recipients(list []email.Address) *mj.RecipientsV31 {
	out := make(mj.RecipientsV31, 0, len(list))
	for _, a := range list {
		out = append(out, mj.RecipientV31{Email: a.Email, Name: a.Name})
	}
	return &out
}
