// Package app wires configuration into a ready-to-serve resume handler.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sanjanag197/web-portfolio/internal/config"
	"github.com/sanjanag197/web-portfolio/internal/httpapi"
	"github.com/sanjanag197/web-portfolio/internal/metrics"
	"github.com/sanjanag197/web-portfolio/internal/provider"
	"github.com/sanjanag197/web-portfolio/internal/provider/graph"
	"github.com/sanjanag197/web-portfolio/internal/provider/mailjet"
	"github.com/sanjanag197/web-portfolio/internal/provider/resend"
	"github.com/sanjanag197/web-portfolio/internal/provider/ses"
	"github.com/sanjanag197/web-portfolio/internal/provider/stdout"
	"github.com/sanjanag197/web-portfolio/internal/resume"
)

// SelectProvider builds the delivery backend named by cfg.Provider. It
// returns a nil Provider without error when the backend's credentials are
// missing, leaving the missing-credentials behavior to the handler.
func SelectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if !cfg.DeliveryConfigured() {
		slog.Warn("delivery credentials not set, email sending is disabled",
			"provider", cfg.Provider,
		)
		return nil, nil
	}

	switch cfg.Provider {
	case "mailjet":
		slog.Info("using Mailjet provider", "sender", cfg.Mail.SenderEmail)
		return mailjet.New(mailjet.Config{
			APIKey:    cfg.Mailjet.APIKey,
			APISecret: cfg.Mailjet.APISecret,
		}), nil

	case "resend":
		slog.Info("using Resend provider", "sender", cfg.Mail.SenderEmail)
		return resend.New(cfg.Resend.APIKey), nil

	case "ses":
		slog.Info("using AWS SES provider", "region", cfg.SES.Region)
		p, err := ses.New(ctx, ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SES provider: %w", err)
		}
		return p, nil

	case "msgraph", "graph":
		slog.Info("using Microsoft Graph provider", "sender", cfg.GraphSender())
		return graph.New(graph.GraphProviderConfig{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			Sender:       cfg.GraphSender(),
		}), nil

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Deps are the process-wide collaborators of a handler.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewHandler builds the resume handler for cfg. cfg.DeliveryPolicy must be
// set, either from configuration or from the entry point's default.
func NewHandler(ctx context.Context, cfg *config.Config, deps Deps) (*httpapi.Handler, error) {
	policy, err := resume.ParsePolicy(cfg.DeliveryPolicy)
	if err != nil {
		return nil, err
	}

	prov, err := SelectProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []resume.ComposerOption
	if cfg.Mail.SanitizeHTML {
		opts = append(opts, resume.WithHTMLSanitizer())
	}
	composer := resume.NewComposer(resume.Identity{
		SenderEmail:   cfg.Mail.SenderEmail,
		SenderName:    cfg.Mail.SenderName,
		OwnerEmail:    cfg.Mail.Recipient,
		OwnerName:     cfg.Mail.OwnerName,
		OwnerFullName: cfg.Mail.OwnerFullName,
	}, opts...)

	hopts := httpapi.Options{
		Policy:       policy,
		ProviderName: cfg.Provider,
		Composer:     composer,
		Attachments:  resume.NewAttachmentLoader(cfg.Mail.ResumePath),
		Logger:       deps.Logger,
		Metrics:      deps.Metrics,
	}
	if prov != nil {
		hopts.Provider = prov
	}
	return httpapi.NewHandler(hopts), nil
}
