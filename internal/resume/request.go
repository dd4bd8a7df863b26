// Package resume turns a resume-request form submission into outbound email
// messages.
package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrTrailingData is returned when the body holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON body")

// Request is a single form submission. Absent fields decode to "".
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// DecodeRequest reads a JSON request body. An empty body, null, or any
// non-object value yields the zero Request, which then fails validation.
// Non-string field values are rendered as text; null, false and zero count as
// absent.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if r == nil {
		return req, nil
	}

	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrTrailingData
		}
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return req, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	req.Name = fieldText(fields["name"])
	req.Email = fieldText(fields["email"])
	req.Company = fieldText(fields["company"])
	req.Message = fieldText(fields["message"])
	return req, nil
}

// fieldText renders a JSON value as the text interpolated into templates.
func fieldText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case 'n', 'f':
		return ""
	case 't':
		return "true"
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return ""
		}
		return buf.String()
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil || f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// Validate reports ErrMissingFields when name or email is empty.
func (r Request) Validate() error {
	if r.Name == "" || r.Email == "" {
		return ErrMissingFields
	}
	return nil
}
