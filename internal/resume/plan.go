package resume

import (
	"fmt"
	"strings"

	"github.com/sanjanag197/web-portfolio/internal/email"
)

// Policy selects how a request fans out into outbound messages.
type Policy int

const (
	// OwnerOnlyWithCc sends one message to the owner and copies the requester.
	OwnerOnlyWithCc Policy = iota + 1
	// OwnerAndRequesterSeparate notifies the owner and sends the requester a
	// thank-you message carrying the attachment.
	OwnerAndRequesterSeparate
)

func (p Policy) String() string {
	switch p {
	case OwnerOnlyWithCc:
		return "cc"
	case OwnerAndRequesterSeparate:
		return "separate"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cc", "owner-only", "owner_only_with_cc":
		return OwnerOnlyWithCc, nil
	case "separate", "fanout", "owner_and_requester_separate":
		return OwnerAndRequesterSeparate, nil
	default:
		return 0, fmt.Errorf("unknown delivery policy %q", s)
	}
}

// Plan builds the messages for one request under the given policy. A nil
// attachment produces messages without attachments.
func (c *Composer) Plan(policy Policy, req Request, att *email.Attachment) []*email.Email {
	switch policy {
	case OwnerAndRequesterSeparate:
		owner := c.OwnerNotification(req)
		thanks := c.RequesterThankYou(req)
		if att != nil {
			thanks.Attachments = []email.Attachment{*att}
		}
		return []*email.Email{owner, thanks}

	default:
		msg := c.OwnerNotification(req)
		if strings.Contains(req.Email, "@") {
			msg.Cc = []email.Address{{Email: req.Email, Name: req.Name}}
		}
		if att != nil {
			msg.Attachments = []email.Attachment{*att}
		}
		return []*email.Email{msg}
	}
}
