package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjanag197/web-portfolio/internal/email"
)

func pdf() *email.Attachment {
	return &email.Attachment{Filename: "Resume.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}
}

func TestPlan_OwnerOnlyWithCc(t *testing.T) {
	t.Parallel()

	msgs := NewComposer(testIdentity()).Plan(OwnerOnlyWithCc, janeRequest(), pdf())

	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "owner@example.com", msg.To[0].Email)
	assert.Equal(t, []email.Address{{Email: "jane@example.com", Name: "Jane Doe"}}, msg.Cc)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Resume.pdf", msg.Attachments[0].Filename)
}

func TestPlan_CcRequiresAtSign(t *testing.T) {
	t.Parallel()

	c := NewComposer(testIdentity())
	for _, addr := range []string{"jane", "jane.example.com", "@"} {
		req := janeRequest()
		req.Email = addr
		msgs := c.Plan(OwnerOnlyWithCc, req, nil)
		require.Len(t, msgs, 1)
		if addr == "@" {
			assert.Len(t, msgs[0].Cc, 1, "email %q contains @", addr)
		} else {
			assert.Empty(t, msgs[0].Cc, "email %q has no @", addr)
		}
	}
}

func TestPlan_OwnerOnlyWithoutAttachment(t *testing.T) {
	t.Parallel()

	msgs := NewComposer(testIdentity()).Plan(OwnerOnlyWithCc, janeRequest(), nil)
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Attachments)
}

func TestPlan_OwnerAndRequesterSeparate(t *testing.T) {
	t.Parallel()

	msgs := NewComposer(testIdentity()).Plan(OwnerAndRequesterSeparate, janeRequest(), pdf())

	require.Len(t, msgs, 2)
	owner, thanks := msgs[0], msgs[1]

	assert.Equal(t, "owner@example.com", owner.To[0].Email)
	assert.Empty(t, owner.Cc)
	assert.Empty(t, owner.Attachments, "owner notification carries no attachment")

	assert.Equal(t, "jane@example.com", thanks.To[0].Email)
	assert.Equal(t, "Your Resume Request - Sanjana Gangishetty", thanks.Subject)
	require.Len(t, thanks.Attachments, 1)
	assert.Equal(t, "application/pdf", thanks.Attachments[0].ContentType)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "cc", want: OwnerOnlyWithCc},
		{in: " CC ", want: OwnerOnlyWithCc},
		{in: "owner-only", want: OwnerOnlyWithCc},
		{in: "separate", want: OwnerAndRequesterSeparate},
		{in: "fanout", want: OwnerAndRequesterSeparate},
		{in: "", wantErr: true},
		{in: "both", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotEmpty(t, got.String())
	}
}
