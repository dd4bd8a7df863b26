// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the resume relay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultProvider      = "mailjet"
	defaultPort          = "5173"
	defaultSenderEmail   = "no-reply@example.com"
	defaultSenderName    = "Portfolio"
	defaultRecipient     = "sanjana2003g@gmail.com"
	defaultOwnerName     = "Sanjana"
	defaultOwnerFullName = "Sanjana Gangishetty"

	// DefaultResumePath is where the standalone server finds the resume PDF.
	DefaultResumePath = "src/assets/resume/Sanjana_Gangishetty_Resume.pdf"
	// ServerlessResumePath is where the serverless bundle ships the resume PDF.
	ServerlessResumePath = "assets/resume/Sanjana_Gangishetty_Resume.pdf"
)

// Config holds the complete application configuration.
type Config struct {
	// Provider selects the delivery backend: mailjet, resend, ses, msgraph or stdout.
	Provider string `yaml:"provider"`
	// DeliveryPolicy is "cc" or "separate"; empty means the entry point decides.
	DeliveryPolicy string `yaml:"delivery_policy"`

	Server  ServerConfig  `yaml:"server"`
	Mail    MailConfig    `yaml:"mail"`
	Mailjet MailjetConfig `yaml:"mailjet"`
	Resend  ResendConfig  `yaml:"resend"`
	SES     SESConfig     `yaml:"ses"`
	Graph   GraphConfig   `yaml:"graph"`
	Logging LoggingConfig `yaml:"logging"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Port           string `yaml:"port"`
	StaticDir      string `yaml:"static_dir"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// MailConfig holds the sender identity and the message content settings.
type MailConfig struct {
	SenderEmail   string `yaml:"sender_email"`
	SenderName    string `yaml:"sender_name"`
	Recipient     string `yaml:"recipient"`
	OwnerName     string `yaml:"owner_name"`
	OwnerFullName string `yaml:"owner_full_name"`
	ResumePath    string `yaml:"resume_path"`
	SanitizeHTML  bool   `yaml:"sanitize_html"`
}

// MailjetConfig holds Mailjet API credentials.
type MailjetConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// ResendConfig holds Resend API credentials.
type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

// SESConfig holds AWS SES configuration. Keys are optional; the default AWS
// credential chain is used when they are empty.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Sender is the mailbox used in the sendMail URL. Defaults to Mail.SenderEmail.
	Sender string `yaml:"sender"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Option adjusts defaults before the YAML file and environment are applied.
type Option func(*Config)

// WithResumePath sets the default resume path.
func WithResumePath(path string) Option {
	return func(c *Config) { c.Mail.ResumePath = path }
}

// WithDeliveryPolicy sets the default delivery policy.
func WithDeliveryPolicy(policy string) Option {
	return func(c *Config) { c.DeliveryPolicy = policy }
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load(opts ...Option) (*Config, error) {
	cfg := newConfig(opts)
	cfg.applyEnvVars()
	return cfg, cfg.Validate()
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string, opts ...Option) (*Config, error) {
	cfg := newConfig(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()

	return cfg, cfg.Validate()
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Variables already set are not overwritten and missing files
// are ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// Validate checks that the provider name is known.
func (c *Config) Validate() error {
	switch c.Provider {
	case "mailjet", "resend", "ses", "msgraph", "graph", "stdout":
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// DeliveryConfigured reports whether the selected provider has the
// credentials it needs to send mail.
func (c *Config) DeliveryConfigured() bool {
	switch c.Provider {
	case "mailjet":
		return c.Mailjet.APIKey != "" && c.Mailjet.APISecret != ""
	case "resend":
		return c.Resend.APIKey != ""
	case "ses":
		return c.SES.Region != ""
	case "msgraph", "graph":
		return c.GraphConfigured()
	case "stdout":
		return true
	default:
		return false
	}
}

// GraphConfigured returns true if all Graph API credentials and a sender are set.
func (c *Config) GraphConfigured() bool {
	return c.Graph.TenantID != "" &&
		c.Graph.ClientID != "" &&
		c.Graph.ClientSecret != "" &&
		c.GraphSender() != ""
}

// GraphSender returns the mailbox Graph sends from.
func (c *Config) GraphSender() string {
	if c.Graph.Sender != "" {
		return c.Graph.Sender
	}
	return c.Mail.SenderEmail
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func newConfig(opts []Option) *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Provider = defaultProvider
	c.Server.Port = defaultPort
	c.Mail.SenderEmail = defaultSenderEmail
	c.Mail.SenderName = defaultSenderName
	c.Mail.Recipient = defaultRecipient
	c.Mail.OwnerName = defaultOwnerName
	c.Mail.OwnerFullName = defaultOwnerFullName
	c.Mail.ResumePath = DefaultResumePath
	c.Logging.Level = "info"
	c.Sentry.Environment = "production"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	setString(&c.Provider, "PROVIDER")
	if c.Provider != "" {
		c.Provider = strings.ToLower(c.Provider)
	}
	setString(&c.DeliveryPolicy, "DELIVERY_POLICY")

	setString(&c.Server.Port, "PORT")
	setString(&c.Server.StaticDir, "STATIC_DIR")
	setBool(&c.Server.MetricsEnabled, "METRICS_ENABLED")

	setString(&c.Mail.SenderEmail, "MAILJET_SENDER_EMAIL", "SENDER_EMAIL")
	setString(&c.Mail.SenderName, "MAILJET_SENDER_NAME", "SENDER_NAME")
	setString(&c.Mail.Recipient, "MAILJET_RECIPIENT", "RECIPIENT")
	setString(&c.Mail.OwnerName, "OWNER_NAME")
	setString(&c.Mail.OwnerFullName, "OWNER_FULL_NAME")
	setString(&c.Mail.ResumePath, "RESUME_PATH")
	setBool(&c.Mail.SanitizeHTML, "SANITIZE_HTML")

	setString(&c.Mailjet.APIKey, "MAILJET_API_KEY")
	setString(&c.Mailjet.APISecret, "MAILJET_API_SECRET")

	setString(&c.Resend.APIKey, "RESEND_API_KEY")

	setString(&c.SES.Region, "SES_REGION")
	setString(&c.SES.AccessKeyID, "SES_ACCESS_KEY_ID")
	setString(&c.SES.SecretAccessKey, "SES_SECRET_ACCESS_KEY")

	setString(&c.Graph.TenantID, "GRAPH_TENANT_ID")
	setString(&c.Graph.ClientID, "GRAPH_CLIENT_ID")
	setString(&c.Graph.ClientSecret, "GRAPH_CLIENT_SECRET")
	setString(&c.Graph.Sender, "GRAPH_SENDER")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	setString(&c.Sentry.DSN, "SENTRY_DSN")
	setString(&c.Sentry.Environment, "SENTRY_ENVIRONMENT")
}

// setString assigns the first non-empty variable among keys.
func setString(dst *string, keys ...string) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

// setBool assigns a parsable boolean variable; invalid values are ignored.
func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
