// Package ses implements a Provider that sends emails via AWS SES v2.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/sanjanag197/web-portfolio/internal/email"
	"github.com/sanjanag197/web-portfolio/internal/provider"
)

// maxRetries is the maximum number of retry attempts for transient failures.
const maxRetries = 3

// baseRetryDelay is the initial delay for exponential backoff.
const baseRetryDelay = 1 * time.Second

// SESProviderConfig holds the configuration for creating a SESProvider.
type SESProviderConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESProvider sends emails via the AWS SES v2 API, one SendEmail call per message.
type SESProvider struct {
	client SendEmailAPI
}

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// New creates a new SESProvider with the given configuration.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies.
func New(ctx context.Context, cfg SESProviderConfig) (*SESProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESProvider{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// NewWithClient creates a SESProvider with a custom client, used for testing.
func NewWithClient(client SendEmailAPI) *SESProvider {
	return &SESProvider{client: client}
}

// Send delivers each message in order and fails on the first message that
// cannot be sent after retries. Messages with attachments go out as raw MIME.
func (s *SESProvider) Send(ctx context.Context, msgs []*email.Email) (*provider.Receipt, error) {
	receipt := &provider.Receipt{}
	outputs := make([]*sesv2.SendEmailOutput, 0, len(msgs))

	for _, msg := range msgs {
		input, err := buildInput(msg)
		if err != nil {
			return nil, err
		}

		out, err := s.sendWithRetry(ctx, input)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, &provider.UnexpectedResponseError{Provider: s.Name()}
		}
		outputs = append(outputs, out)
		receipt.MessageIDs = append(receipt.MessageIDs, aws.ToString(out.MessageId))
	}

	receipt.Raw = outputs
	return receipt, nil
}

// Name returns the provider name.
func (s *SESProvider) Name() string {
	return "ses"
}

func (s *SESProvider) sendWithRetry(ctx context.Context, input *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying SES API request",
				"attempt", attempt,
				"max_retries", maxRetries,
			)
			if err := sleepWithContext(ctx, backoffDelay(attempt)); err != nil {
				return nil, fmt.Errorf("context cancelled during retry wait: %w", err)
			}
		}

		out, err := s.client.SendEmail(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err
		slog.Warn("SES API error",
			"attempt", attempt,
			"error", err,
		)
	}

	return nil, fmt.Errorf("SES API request failed after %d retries: %w", maxRetries, lastErr)
}

func buildInput(msg *email.Email) (*sesv2.SendEmailInput, error) {
	if err := msg.ValidateHeaders(); err != nil {
		return nil, fmt.Errorf("ses: %w", err)
	}
	if len(msg.Attachments) == 0 {
		return buildSimpleInput(msg), nil
	}

	raw, err := buildRawMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to build raw message: %w", err)
	}
	return &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}, nil
}

// buildSimpleInput creates a SES SendEmailInput for emails without attachments.
func buildSimpleInput(msg *email.Email) *sesv2.SendEmailInput {
	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = utf8Content(msg.HTMLBody)
	}
	if msg.TextBody != "" {
		body.Text = utf8Content(msg.TextBody)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From.String()),
		Destination: &types.Destination{
			ToAddresses: email.Formatted(msg.To),
			CcAddresses: email.Formatted(msg.Cc),
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8Content(msg.Subject),
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != nil {
		input.ReplyToAddresses = []string{msg.ReplyTo.String()}
	}
	return input
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

// buildRawMessage constructs a multipart/mixed MIME message whose first part
// is a multipart/alternative body followed by the attachments.
func buildRawMessage(msg *email.Email) ([]byte, error) {
	if err := msg.ValidateHeaders(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", msg.From.String())
	if len(msg.To) > 0 {
		fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(email.Formatted(msg.To), ", "))
	}
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(email.Formatted(msg.Cc), ", "))
	}
	if msg.ReplyTo != nil {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", msg.ReplyTo.String())
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	if msg.CustomID != "" {
		fmt.Fprintf(&buf, "X-Entity-Ref-ID: %s\r\n", msg.CustomID)
	}
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	mixed := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	if err := writeAlternative(mixed, msg); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		attHeader := make(textproto.MIMEHeader)
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", mime.QEncoding.Encode("UTF-8", att.Filename)))

		part, err := mixed.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write([]byte(wrapLines(att.Base64(), 76))); err != nil {
			return nil, fmt.Errorf("failed to write attachment part: %w", err)
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAlternative(mixed *multipart.Writer, msg *email.Email) error {
	var inner bytes.Buffer
	alt := multipart.NewWriter(&inner)

	bodies := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	}
	for _, b := range bodies {
		if b.content == "" {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Type", b.contentType)
		part, err := alt.CreatePart(h)
		if err != nil {
			return fmt.Errorf("failed to create body part: %w", err)
		}
		if _, err := part.Write([]byte(b.content)); err != nil {
			return fmt.Errorf("failed to write body part: %w", err)
		}
	}
	if err := alt.Close(); err != nil {
		return fmt.Errorf("failed to close body writer: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary()))
	part, err := mixed.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create alternative part: %w", err)
	}
	_, err = part.Write(inner.Bytes())
	return err
}

// wrapLines splits s into CRLF-separated lines of at most n characters (RFC 2045).
func wrapLines(s string, n int) string {
	var lines []string
	for len(s) > n {
		lines = append(lines, s[:n])
		s = s[n:]
	}
	lines = append(lines, s)
	return strings.Join(lines, "\r\n")
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(attempt int) time.Duration {
	return baseRetryDelay << attempt
}

// sleepWithContext waits for the specified duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
