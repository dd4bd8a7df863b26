// Package httpapi serves the resume request endpoint.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sanjanag197/web-portfolio/internal/email"
	"github.com/sanjanag197/web-portfolio/internal/metrics"
	"github.com/sanjanag197/web-portfolio/internal/provider"
	"github.com/sanjanag197/web-portfolio/internal/resume"
)

// DefaultMaxBodyBytes caps the JSON request body.
const DefaultMaxBodyBytes = 1 << 20

const (
	msgMethodNotAllowed = "Method not allowed"
	msgMissingFields    = "Name and email are required."
	msgTooLarge         = "Request body too large"
	msgServerError      = "Server error"
	msgNotConfigured    = "Email service not configured. Please contact the administrator."
	msgSent             = "Email sent successfully."
	msgUnexpected       = "Unexpected email service response"
)

// Options configures a Handler.
type Options struct {
	Policy resume.Policy
	// Provider is nil when delivery credentials are missing.
	Provider provider.Provider
	// ProviderName labels messages and metrics; it defaults to Provider.Name().
	ProviderName string
	Composer     *resume.Composer
	Attachments  *resume.AttachmentLoader
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
	// NewID generates submission IDs. Defaults to uuid.NewString.
	NewID func() string
}

// Handler handles resume requests under a single delivery policy.
type Handler struct {
	policy       resume.Policy
	provider     provider.Provider
	providerName string
	composer     *resume.Composer
	attachments  *resume.AttachmentLoader
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
	newID        func() string
}

// NewHandler creates a Handler from opts.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		policy:       opts.Policy,
		provider:     opts.Provider,
		providerName: opts.ProviderName,
		composer:     opts.Composer,
		attachments:  opts.Attachments,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		maxBodyBytes: opts.MaxBodyBytes,
		newID:        opts.NewID,
	}
	if h.policy == 0 {
		h.policy = resume.OwnerOnlyWithCc
	}
	if h.providerName == "" && h.provider != nil {
		h.providerName = h.provider.Name()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = DefaultMaxBodyBytes
	}
	if h.newID == nil {
		h.newID = uuid.NewString
	}
	return h
}

// result is the outcome of one request before it is written.
type result struct {
	status  int
	body    Response
	outcome string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.write(w, result{
			status:  http.StatusMethodNotAllowed,
			body:    Response{Message: msgMethodNotAllowed},
			outcome: metrics.OutcomeNotAllowed,
		})
		return
	}

	id := h.newID()
	logger := h.logger.With(
		"submission_id", id,
		"policy", h.policy.String(),
	)
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	res := h.serve(w, r, logger, id)
	h.write(w, res)
}

// serve runs the request pipeline and converts a panic into a server error.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, logger *slog.Logger, id string) (res result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while handling resume request", "panic", rec)
			res = serverError(fmt.Errorf("%v", rec))
		}
	}()

	req, err := resume.DecodeRequest(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", "limit", tooLarge.Limit)
			return result{
				status:  http.StatusRequestEntityTooLarge,
				body:    Response{Message: msgTooLarge},
				outcome: metrics.OutcomeTooLarge,
			}
		}
		logger.Error("failed to decode resume request", "error", err)
		return serverError(err)
	}

	if err := req.Validate(); err != nil {
		return result{
			status:  http.StatusBadRequest,
			body:    Response{Message: msgMissingFields},
			outcome: metrics.OutcomeInvalid,
		}
	}

	msgs := h.composer.Plan(h.policy, req, h.loadAttachment(logger))
	for _, m := range msgs {
		m.CustomID = id
	}

	if h.provider == nil {
		return h.unconfigured(logger)
	}

	return h.deliver(r.Context(), logger, msgs)
}

func (h *Handler) loadAttachment(logger *slog.Logger) *email.Attachment {
	res := h.attachments.Load()
	h.metrics.ObserveAttachment(res.Status.String())

	switch res.Status {
	case resume.AttachmentLoaded:
		return res.Attachment
	case resume.AttachmentFailed:
		logger.Warn("could not read resume file, sending without attachment",
			"path", h.attachments.Path(),
			"error", res.Err,
		)
	default:
		logger.Debug("resume file not found, sending without attachment",
			"path", h.attachments.Path(),
		)
	}
	return nil
}

// unconfigured answers when no provider is available. The two policies
// deliberately differ here.
func (h *Handler) unconfigured(logger *slog.Logger) result {
	if h.policy == resume.OwnerAndRequesterSeparate {
		logger.Warn("delivery credentials not set, simulating send", "provider", h.providerName)
		return result{
			status: http.StatusOK,
			body: Response{
				OK:        true,
				Simulated: true,
				Message:   fmt.Sprintf("%s credentials not set; simulated send.", provider.DisplayName(h.providerName)),
			},
			outcome: metrics.OutcomeSimulated,
		}
	}

	logger.Warn("delivery credentials not set", "provider", h.providerName)
	return result{
		status:  http.StatusInternalServerError,
		body:    Response{Message: msgNotConfigured},
		outcome: metrics.OutcomeUnconfigured,
	}
}

func (h *Handler) deliver(ctx context.Context, logger *slog.Logger, msgs []*email.Email) result {
	start := time.Now()
	receipt, err := h.provider.Send(ctx, msgs)
	h.metrics.ObserveDelivery(h.providerName, time.Since(start))

	var unexpected *provider.UnexpectedResponseError
	switch {
	case errors.As(err, &unexpected):
		logger.Error("unexpected delivery response", "provider", h.providerName)
		body := Response{Message: msgUnexpected}
		if h.policy == resume.OwnerAndRequesterSeparate {
			body = Response{
				Message: fmt.Sprintf("Unexpected %s response", provider.DisplayName(h.providerName)),
				Detail:  unexpected.Response,
			}
		}
		return result{status: http.StatusInternalServerError, body: body, outcome: metrics.OutcomeUnexpected}

	case err != nil:
		logger.Error("failed to deliver resume request", "provider", h.providerName, "error", err)
		return serverError(err)
	}

	logger.Info("resume request delivered",
		"provider", h.providerName,
		"messages", len(msgs),
		"message_ids", receipt.MessageIDs,
	)

	message := msgSent
	if h.policy == resume.OwnerAndRequesterSeparate {
		message = fmt.Sprintf("Email sent via %s.", provider.DisplayName(h.providerName))
	}
	return result{
		status:  http.StatusOK,
		body:    Response{OK: true, Message: message},
		outcome: metrics.OutcomeSent,
	}
}

func (h *Handler) write(w http.ResponseWriter, res result) {
	h.metrics.ObserveRequest(h.policy.String(), res.outcome)
	writeJSON(w, res.status, res.body)
}

func serverError(err error) result {
	return result{
		status:  http.StatusInternalServerError,
		body:    Response{Message: msgServerError, Error: err.Error()},
		outcome: metrics.OutcomeError,
	}
}

// Unavailable answers the endpoint when the handler could not be built.
// Preflight and method checks still apply; POST gets a server error.
func Unavailable() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			writeJSON(w, http.StatusInternalServerError, Response{Message: msgServerError})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, Response{Message: msgMethodNotAllowed})
		}
	})
}
