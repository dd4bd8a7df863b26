package config

import (
	"os"
	"path/filepath"
	"testing"
)

var allEnvVars = []string{
	"PROVIDER", "DELIVERY_POLICY",
	"PORT", "STATIC_DIR", "METRICS_ENABLED",
	"MAILJET_SENDER_EMAIL", "SENDER_EMAIL", "MAILJET_SENDER_NAME", "SENDER_NAME",
	"MAILJET_RECIPIENT", "RECIPIENT", "OWNER_NAME", "OWNER_FULL_NAME",
	"RESUME_PATH", "SANITIZE_HTML",
	"MAILJET_API_KEY", "MAILJET_API_SECRET", "RESEND_API_KEY",
	"SES_REGION", "SES_ACCESS_KEY_ID", "SES_SECRET_ACCESS_KEY",
	"GRAPH_TENANT_ID", "GRAPH_CLIENT_ID", "GRAPH_CLIENT_SECRET", "GRAPH_SENDER",
	"LOG_LEVEL", "SENTRY_DSN", "SENTRY_ENVIRONMENT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range allEnvVars {
		t.Setenv(env, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Provider", cfg.Provider, "mailjet"},
		{"DeliveryPolicy", cfg.DeliveryPolicy, ""},
		{"Server.Port", cfg.Server.Port, "5173"},
		{"Mail.SenderEmail", cfg.Mail.SenderEmail, "no-reply@example.com"},
		{"Mail.SenderName", cfg.Mail.SenderName, "Portfolio"},
		{"Mail.Recipient", cfg.Mail.Recipient, "sanjana2003g@gmail.com"},
		{"Mail.OwnerName", cfg.Mail.OwnerName, "Sanjana"},
		{"Mail.OwnerFullName", cfg.Mail.OwnerFullName, "Sanjana Gangishetty"},
		{"Mail.ResumePath", cfg.Mail.ResumePath, DefaultResumePath},
		{"Logging.Level", cfg.Logging.Level, "info"},
		{"Sentry.Environment", cfg.Sentry.Environment, "production"},
		{"Mailjet.APIKey", cfg.Mailjet.APIKey, ""},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.field, c.got, c.want)
		}
	}
	if cfg.Server.MetricsEnabled {
		t.Error("Server.MetricsEnabled: got true, want false")
	}
	if cfg.Mail.SanitizeHTML {
		t.Error("Mail.SanitizeHTML: got true, want false")
	}
	if cfg.DeliveryConfigured() {
		t.Error("DeliveryConfigured: got true without credentials")
	}
	if cfg.Addr() != ":5173" {
		t.Errorf("Addr: got %q, want %q", cfg.Addr(), ":5173")
	}
}

func TestLoad_Options(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(WithResumePath(ServerlessResumePath), WithDeliveryPolicy("cc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail.ResumePath != ServerlessResumePath {
		t.Errorf("Mail.ResumePath: got %q, want %q", cfg.Mail.ResumePath, ServerlessResumePath)
	}
	if cfg.DeliveryPolicy != "cc" {
		t.Errorf("DeliveryPolicy: got %q, want %q", cfg.DeliveryPolicy, "cc")
	}

	t.Setenv("RESUME_PATH", "/srv/resume.pdf")
	t.Setenv("DELIVERY_POLICY", "separate")
	cfg, err = Load(WithResumePath(ServerlessResumePath), WithDeliveryPolicy("cc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail.ResumePath != "/srv/resume.pdf" {
		t.Errorf("Mail.ResumePath: got %q, want env value", cfg.Mail.ResumePath)
	}
	if cfg.DeliveryPolicy != "separate" {
		t.Errorf("DeliveryPolicy: got %q, want env value", cfg.DeliveryPolicy)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "Resend")
	t.Setenv("PORT", "8080")
	t.Setenv("STATIC_DIR", "./public")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("MAILJET_SENDER_EMAIL", "site@example.com")
	t.Setenv("MAILJET_SENDER_NAME", "Site")
	t.Setenv("MAILJET_RECIPIENT", "me@example.com")
	t.Setenv("SANITIZE_HTML", "1")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example.com/1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != "resend" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "resend")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.StaticDir != "./public" {
		t.Errorf("Server.StaticDir: got %q", cfg.Server.StaticDir)
	}
	if !cfg.Server.MetricsEnabled {
		t.Error("Server.MetricsEnabled: got false, want true")
	}
	if cfg.Mail.SenderEmail != "site@example.com" || cfg.Mail.SenderName != "Site" {
		t.Errorf("Mail sender: got %q / %q", cfg.Mail.SenderEmail, cfg.Mail.SenderName)
	}
	if cfg.Mail.Recipient != "me@example.com" {
		t.Errorf("Mail.Recipient: got %q", cfg.Mail.Recipient)
	}
	if !cfg.Mail.SanitizeHTML {
		t.Error("Mail.SanitizeHTML: got false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Sentry.DSN == "" {
		t.Error("Sentry.DSN: got empty")
	}
	if !cfg.DeliveryConfigured() {
		t.Error("DeliveryConfigured: got false with RESEND_API_KEY set")
	}
}

func TestLoad_SenderAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENDER_EMAIL", "alias@example.com")
	t.Setenv("RECIPIENT", "alias-owner@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail.SenderEmail != "alias@example.com" {
		t.Errorf("Mail.SenderEmail: got %q", cfg.Mail.SenderEmail)
	}
	if cfg.Mail.Recipient != "alias-owner@example.com" {
		t.Errorf("Mail.Recipient: got %q", cfg.Mail.Recipient)
	}

	t.Setenv("MAILJET_SENDER_EMAIL", "primary@example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail.SenderEmail != "primary@example.com" {
		t.Errorf("Mail.SenderEmail: got %q, want the MAILJET_ variable to win", cfg.Mail.SenderEmail)
	}
}

func TestLoad_InvalidBoolIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.MetricsEnabled {
		t.Error("Server.MetricsEnabled: invalid value should leave the default")
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "pigeon")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown provider, got nil")
	}
}

func TestDeliveryConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		expect bool
	}{
		{name: "mailjet complete", cfg: Config{Provider: "mailjet", Mailjet: MailjetConfig{APIKey: "k", APISecret: "s"}}, expect: true},
		{name: "mailjet missing secret", cfg: Config{Provider: "mailjet", Mailjet: MailjetConfig{APIKey: "k"}}, expect: false},
		{name: "resend", cfg: Config{Provider: "resend", Resend: ResendConfig{APIKey: "re"}}, expect: true},
		{name: "resend missing key", cfg: Config{Provider: "resend"}, expect: false},
		{name: "ses region only", cfg: Config{Provider: "ses", SES: SESConfig{Region: "us-east-1"}}, expect: true},
		{name: "ses missing region", cfg: Config{Provider: "ses", SES: SESConfig{AccessKeyID: "a"}}, expect: false},
		{name: "graph with sender fallback", cfg: Config{
			Provider: "msgraph",
			Graph:    GraphConfig{TenantID: "t", ClientID: "c", ClientSecret: "s"},
			Mail:     MailConfig{SenderEmail: "site@example.com"},
		}, expect: true},
		{name: "graph missing secret", cfg: Config{
			Provider: "graph",
			Graph:    GraphConfig{TenantID: "t", ClientID: "c", Sender: "s@example.com"},
		}, expect: false},
		{name: "stdout", cfg: Config{Provider: "stdout"}, expect: true},
		{name: "unknown", cfg: Config{Provider: "pigeon"}, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.DeliveryConfigured(); got != tt.expect {
				t.Errorf("DeliveryConfigured(): got %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestGraphSender(t *testing.T) {
	t.Parallel()

	cfg := Config{Mail: MailConfig{SenderEmail: "site@example.com"}}
	if got := cfg.GraphSender(); got != "site@example.com" {
		t.Errorf("GraphSender(): got %q, want fallback to sender email", got)
	}
	cfg.Graph.Sender = "mailbox@example.com"
	if got := cfg.GraphSender(); got != "mailbox@example.com" {
		t.Errorf("GraphSender(): got %q, want explicit sender", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	yamlContent := `
provider: ses
delivery_policy: cc
server:
  port: "3000"
  metrics_enabled: true
mail:
  sender_email: "yaml@example.com"
  recipient: "owner@example.com"
  resume_path: "/yaml/resume.pdf"
ses:
  region: "eu-west-1"
logging:
  level: "warn"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != "ses" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "ses")
	}
	if cfg.DeliveryPolicy != "cc" {
		t.Errorf("DeliveryPolicy: got %q, want %q", cfg.DeliveryPolicy, "cc")
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Server.Port: got %q, want %q", cfg.Server.Port, "3000")
	}
	if !cfg.Server.MetricsEnabled {
		t.Error("Server.MetricsEnabled: got false, want true")
	}
	if cfg.Mail.SenderEmail != "yaml@example.com" {
		t.Errorf("Mail.SenderEmail: got %q", cfg.Mail.SenderEmail)
	}
	if cfg.Mail.SenderName != "Portfolio" {
		t.Errorf("Mail.SenderName: got %q, want default to survive", cfg.Mail.SenderName)
	}
	if cfg.Mail.ResumePath != "/yaml/resume.pdf" {
		t.Errorf("Mail.ResumePath: got %q", cfg.Mail.ResumePath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "warn")
	}
	if !cfg.DeliveryConfigured() {
		t.Error("DeliveryConfigured: got false with SES region set")
	}
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	yamlContent := `
server:
  port: "3000"
mail:
  sender_name: "YAML Name"
logging:
  level: "warn"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Server.Port: got %q, want %q (env should override YAML)", cfg.Server.Port, "9000")
	}
	// Empty env var should NOT override YAML value
	if cfg.Mail.SenderName != "YAML Name" {
		t.Errorf("Mail.SenderName: got %q, want %q (empty env should not override YAML)", cfg.Mail.SenderName, "YAML Name")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level: got %q, want %q (env should override YAML)", cfg.Logging.Level, "error")
	}
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{{invalid yaml"), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWNER_NAME", "Preset")
	// godotenv never overrides a variable that is set, even to "".
	os.Unsetenv("OWNER_FULL_NAME")

	envPath := filepath.Join(t.TempDir(), ".env")
	content := "OWNER_FULL_NAME=Dotenv Person\nOWNER_NAME=FromFile\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), envPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail.OwnerFullName != "Dotenv Person" {
		t.Errorf("Mail.OwnerFullName: got %q, want value from .env", cfg.Mail.OwnerFullName)
	}
	if cfg.Mail.OwnerName != "Preset" {
		t.Errorf("Mail.OwnerName: got %q, want existing env to win over .env", cfg.Mail.OwnerName)
	}
}
