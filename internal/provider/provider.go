// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"
	"fmt"

	"github.com/sanjanag197/web-portfolio/internal/email"
)

// Provider is the interface that email delivery backends must implement.
type Provider interface {
	// Send delivers a batch of messages as one delivery call. It returns an
	// *UnexpectedResponseError when the backend answered without a record of
	// sent messages.
	Send(ctx context.Context, msgs []*email.Email) (*Receipt, error)

	// Name returns the short identifier of this provider.
	Name() string
}

// Receipt records what the backend accepted.
type Receipt struct {
	// MessageIDs holds backend message identifiers, one per accepted message
	// when the backend reports them.
	MessageIDs []string
	// Raw is the decoded backend response, kept for diagnostics.
	Raw any
}

// UnexpectedResponseError reports a backend response that did not confirm
// delivery. Response holds whatever the backend returned, possibly nil.
type UnexpectedResponseError struct {
	Provider string
	Response any
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("%s: unexpected response", e.Provider)
}

// DisplayName maps a provider identifier to the label used in user-facing messages.
func DisplayName(name string) string {
	switch name {
	case "mailjet":
		return "Mailjet"
	case "resend":
		return "Resend"
	case "ses":
		return "Amazon SES"
	case "msgraph", "graph":
		return "Microsoft Graph"
	case "stdout":
		return "stdout"
	default:
		return name
	}
}
