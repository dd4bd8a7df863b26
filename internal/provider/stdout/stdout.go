// Package stdout implements a Provider that prints emails to standard output.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sanjanag197/web-portfolio/internal/email"
	"github.com/sanjanag197/web-portfolio/internal/provider"
)

const separator = "========================================\n"

// Provider prints outbound messages in a human-readable format. It is meant
// for local development where no delivery account is available.
type Provider struct {
	writer io.Writer
}

// New creates a stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a stdout Provider that writes to w.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints every message of the batch. Receipt IDs are the message
// CustomIDs, or a positional placeholder when none is set.
func (p *Provider) Send(ctx context.Context, msgs []*email.Email) (*provider.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &provider.Receipt{}
	for i, msg := range msgs {
		if _, err := io.WriteString(p.writer, render(msg)); err != nil {
			return nil, fmt.Errorf("stdout: failed to write message %d: %w", i+1, err)
		}
		id := msg.CustomID
		if id == "" {
			id = fmt.Sprintf("stdout-%d", i+1)
		}
		receipt.MessageIDs = append(receipt.MessageIDs, id)
	}
	return receipt, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

func render(msg *email.Email) string {
	var b strings.Builder

	b.WriteString(separator)
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(email.Formatted(msg.To), ", "))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\n", strings.Join(email.Formatted(msg.Cc), ", "))
	}
	if msg.ReplyTo != nil {
		fmt.Fprintf(&b, "Reply-To: %s\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("Body:\n")

	body := msg.TextBody
	if body == "" {
		body = msg.HTMLBody
	}
	b.WriteString(body + "\n")

	if len(msg.Attachments) > 0 {
		attachments := make([]string, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			attachments = append(attachments, fmt.Sprintf("%s (%s)", att.Filename, formatSize(len(att.Content))))
		}
		fmt.Fprintf(&b, "Attachments: %s\n", strings.Join(attachments, ", "))
	}

	b.WriteString(separator)
	return b.String()
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
