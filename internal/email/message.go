// Package email defines the outbound message model handed to delivery providers.
package email

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrHeaderInjection is returned when a header value would break out of its
// header line.
var ErrHeaderInjection = errors.New("header value contains a line break")

// Email is a fully composed outbound message.
type Email struct {
	From        Address
	To          []Address
	Cc          []Address
	ReplyTo     *Address
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
	// CustomID correlates the message with the submission that produced it.
	CustomID string
}

// Address is a mailbox with an optional display name.
type Address struct {
	Email string
	Name  string
}

// String renders the address in RFC 5322 form, e.g. `"Jane" <jane@example.com>`.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// ValidateHeaders rejects messages whose addresses or header values contain
// CR or LF.
func (e *Email) ValidateHeaders() error {
	if err := checkAddresses("from", e.From); err != nil {
		return err
	}
	if err := checkAddresses("to", e.To...); err != nil {
		return err
	}
	if err := checkAddresses("cc", e.Cc...); err != nil {
		return err
	}
	if e.ReplyTo != nil {
		if err := checkAddresses("reply-to", *e.ReplyTo); err != nil {
			return err
		}
	}
	if err := checkHeader("subject", e.Subject); err != nil {
		return err
	}
	return checkHeader("custom id", e.CustomID)
}

func checkAddresses(field string, list ...Address) error {
	for _, a := range list {
		if err := checkHeader(field, a.Email); err != nil {
			return err
		}
		if err := checkHeader(field+" name", a.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkHeader(field, v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%s %q: %w", field, v, ErrHeaderInjection)
	}
	return nil
}

// Attachment represents a file attached to an email message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Base64 returns the attachment content in standard base64 without line breaks.
func (a Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Content)
}

// Addresses returns the bare email addresses of the given mailboxes.
func Addresses(list []Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Email)
	}
	return out
}

// Formatted returns the RFC 5322 form of each mailbox.
func Formatted(list []Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.String())
	}
	return out
}
