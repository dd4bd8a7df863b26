package resume

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sanjanag197/web-portfolio/internal/email"
)

// Identity names the sender account and the site owner.
type Identity struct {
	SenderEmail string
	SenderName  string
	// OwnerEmail receives resume request notifications.
	OwnerEmail string
	// OwnerName is the short name shown on the notification recipient.
	OwnerName string
	// OwnerFullName signs the thank-you message and titles its subject.
	OwnerFullName string
	// OwnerContact is printed under the thank-you signature.
	OwnerContact string
}

// Composer renders the notification and thank-you templates.
type Composer struct {
	id     Identity
	policy *bluemonday.Policy
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithHTMLSanitizer strips markup from user fields before they are
// interpolated into HTML bodies. Text bodies are never altered.
func WithHTMLSanitizer() ComposerOption {
	return func(c *Composer) {
		c.policy = bluemonday.StrictPolicy()
	}
}

// NewComposer returns a Composer for the given identity. User input is
// interpolated into HTML as-is unless WithHTMLSanitizer is passed.
func NewComposer(id Identity, opts ...ComposerOption) *Composer {
	if id.OwnerContact == "" {
		id.OwnerContact = id.OwnerEmail
	}
	c := &Composer{id: id}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the identity the composer was built with.
func (c *Composer) Identity() Identity {
	return c.id
}

// OwnerNotification builds the message telling the owner about a request.
// Replies go to the requester.
func (c *Composer) OwnerNotification(req Request) *email.Email {
	return &email.Email{
		From:     c.sender(),
		To:       []email.Address{{Email: c.id.OwnerEmail, Name: c.id.OwnerName}},
		ReplyTo:  &email.Address{Email: req.Email, Name: req.Name},
		Subject:  notificationSubject(req),
		TextBody: notificationText(req),
		HTMLBody: c.notificationHTML(req),
	}
}

// RequesterThankYou builds the message sent back to the requester.
func (c *Composer) RequesterThankYou(req Request) *email.Email {
	text := fmt.Sprintf("Hi %s,\n\nThank you for your interest in my resume!\n\n"+
		"Please find my resume attached to this email.\n\n"+
		"Best regards,\n%s\n%s",
		req.Name, c.id.OwnerFullName, c.id.OwnerContact)

	html := fmt.Sprintf("<p>Hi %s,</p><p>Thank you for your interest in my resume!</p>"+
		"<p>Please find my resume attached to this email.</p>"+
		"<p>Best regards,<br/>%s<br/>%s</p>",
		c.html(req.Name), c.id.OwnerFullName, c.id.OwnerContact)

	return &email.Email{
		From:     c.sender(),
		To:       []email.Address{{Email: req.Email, Name: req.Name}},
		Subject:  "Your Resume Request - " + c.id.OwnerFullName,
		TextBody: text,
		HTMLBody: html,
	}
}

func (c *Composer) sender() email.Address {
	return email.Address{Email: c.id.SenderEmail, Name: c.id.SenderName}
}

func notificationSubject(req Request) string {
	subject := "Resume request from " + req.Name
	if req.Company != "" {
		subject += " at " + req.Company
	}
	return subject
}

func notificationText(req Request) string {
	return fmt.Sprintf("Resume request\n\nName: %s\nEmail: %s\nCompany: %s\n\nMessage:\n%s",
		req.Name, req.Email, req.Company, req.Message)
}

func (c *Composer) notificationHTML(req Request) string {
	var b strings.Builder
	b.WriteString("<p>Resume request</p><ul>")
	fmt.Fprintf(&b, "<li><strong>Name:</strong> %s</li>", c.html(req.Name))
	fmt.Fprintf(&b, "<li><strong>Email:</strong> %s</li>", c.html(req.Email))
	fmt.Fprintf(&b, "<li><strong>Company:</strong> %s</li>", c.html(req.Company))
	b.WriteString("</ul><p><strong>Message:</strong></p>")
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(c.html(req.Message), "\n", "<br/>"))
	return b.String()
}

// html prepares a user field for HTML interpolation.
func (c *Composer) html(s string) string {
	if c.policy == nil {
		return s
	}
	return c.policy.Sanitize(s)
}
