// Package graph implements a Provider that sends emails via the Microsoft Graph API.
package graph

import (
	"github.com/sanjanag197/web-portfolio/internal/email"
)

// sendMailRequest is the top-level request body for the Graph API sendMail endpoint.
type sendMailRequest struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

type sendMailMessage struct {
	Subject      string            `json:"subject"`
	Body         messageBody       `json:"body"`
	ToRecipients []recipient       `json:"toRecipients"`
	CcRecipients []recipient       `json:"ccRecipients,omitempty"`
	ReplyTo      []recipient       `json:"replyTo,omitempty"`
	Attachments  []graphAttachment `json:"attachments,omitempty"`
}

type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

// graphErrorResponse represents an error response from the Graph API.
type graphErrorResponse struct {
	Error graphError `json:"error"`
}

type graphError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// buildSendMailRequest converts an email.Email into a Graph API sendMail
// request body. Graph carries a single body, so HTML wins over text.
func buildSendMailRequest(msg *email.Email) *sendMailRequest {
	body := messageBody{ContentType: "text", Content: msg.TextBody}
	if msg.HTMLBody != "" {
		body = messageBody{ContentType: "html", Content: msg.HTMLBody}
	}

	out := sendMailMessage{
		Subject:      msg.Subject,
		Body:         body,
		ToRecipients: recipients(msg.To),
		CcRecipients: recipients(msg.Cc),
	}
	if msg.ReplyTo != nil {
		out.ReplyTo = recipients([]email.Address{*msg.ReplyTo})
	}
	for _, att := range msg.Attachments {
		out.Attachments = append(out.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         att.Filename,
			ContentType:  att.ContentType,
			ContentBytes: att.Base64(),
		})
	}

	return &sendMailRequest{Message: out}
}

func recipients(list []email.Address) []recipient {
	if len(list) == 0 {
		return nil
	}
	out := make([]recipient, 0, len(list))
	for _, a := range list {
		out = append(out, recipient{EmailAddress: emailAddress{Address: a.Email, Name: a.Name}})
	}
	return out
}
