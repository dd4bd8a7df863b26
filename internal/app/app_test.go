package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjanag197/web-portfolio/internal/config"
	"github.com/sanjanag197/web-portfolio/internal/provider/graph"
	"github.com/sanjanag197/web-portfolio/internal/provider/mailjet"
	"github.com/sanjanag197/web-portfolio/internal/provider/resend"
	"github.com/sanjanag197/web-portfolio/internal/provider/ses"
	"github.com/sanjanag197/web-portfolio/internal/provider/stdout"
)

func TestSelectProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.Config
		wantType any
	}{
		{name: "mailjet", cfg: config.Config{Provider: "mailjet", Mailjet: config.MailjetConfig{APIKey: "k", APISecret: "s"}}, wantType: &mailjet.Provider{}},
		{name: "resend", cfg: config.Config{Provider: "resend", Resend: config.ResendConfig{APIKey: "re_1"}}, wantType: &resend.Provider{}},
		{name: "ses", cfg: config.Config{Provider: "ses", SES: config.SESConfig{Region: "us-east-1", AccessKeyID: "a", SecretAccessKey: "b"}}, wantType: &ses.SESProvider{}},
		{name: "graph", cfg: config.Config{Provider: "msgraph", Graph: config.GraphConfig{TenantID: "t", ClientID: "c", ClientSecret: "s", Sender: "me@example.com"}}, wantType: &graph.GraphProvider{}},
		{name: "stdout", cfg: config.Config{Provider: "stdout"}, wantType: &stdout.Provider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := SelectProvider(context.Background(), &tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestSelectProvider_MissingCredentials(t *testing.T) {
	t.Parallel()

	p, err := SelectProvider(context.Background(), &config.Config{Provider: "mailjet"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewHandler_RejectsUnknownPolicy(t *testing.T) {
	t.Parallel()

	_, err := NewHandler(context.Background(), &config.Config{Provider: "stdout", DeliveryPolicy: "both"}, Deps{})
	assert.Error(t, err)
}

func TestNewHandler_EndToEndWithoutCredentials(t *testing.T) {
	t.Setenv("MAILJET_API_KEY", "")
	t.Setenv("MAILJET_API_SECRET", "")
	t.Setenv("PROVIDER", "")
	t.Setenv("DELIVERY_POLICY", "")

	cfg, err := config.Load(config.WithDeliveryPolicy("separate"))
	require.NoError(t, err)

	h, err := NewHandler(context.Background(), cfg, Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/send-resume",
		strings.NewReader(`{"name":"Jane","email":"jane@example.com"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"ok":true,"simulated":true,"message":"Mailjet credentials not set; simulated send."}`,
		rec.Body.String())
}
