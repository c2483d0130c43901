package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"recordgate/internal/platform/middleware"
	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	dErrors "recordgate/pkg/domain-errors"
	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/platform/sentinel"
)

// Service defines the gateway operations exposed over HTTP.
type Service interface {
	Resolve(ctx context.Context, recordID id.RecordID) (models.Outcome, error)
	ClearStore(ctx context.Context) error
	ListGroup(ctx context.Context) ([]*models.Record, error)
	CurrentAge(ctx context.Context) (int, error)
}

// Handler serves the record endpoints.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
	timeout    time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithAdminToken protects DELETE /records with an X-Admin-Token check.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

// WithTimeout bounds each request's context.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// New creates a record Handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the record routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/records", func(r chi.Router) {
		r.Use(timeoutMiddleware(h.timeout))
		r.Get("/group", h.handleListGroup)
		r.Get("/age", h.handleCurrentAge)
		r.Get("/{id}", h.handleResolve)
		r.With(middleware.RequireAdminToken(h.adminToken, h.logger)).Delete("/", h.handleClear)
	})
}

type resolveResponse struct {
	RecordID id.RecordID    `json:"record_id"`
	Outcome  models.Outcome `json:"outcome"`
	Message  string         `json:"message"`
}

type groupResponse struct {
	Records []*models.Record `json:"records"`
}

type ageResponse struct {
	Age int `json:"age"`
}

// handleResolve reports the outcome for a record ID. All three outcomes are
// 200 responses; only propagated failures become errors.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Resolve(ctx, recordID)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve failed",
			"record_id", recordID,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, translate(err, "failed to resolve record"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resolveResponse{
		RecordID: recordID,
		Outcome:  outcome,
		Message:  outcome.Message(),
	})
}

func (h *Handler) handleListGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.service.ListGroup(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list group failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, translate(err, "failed to list group"))
		return
	}
	if records == nil {
		records = []*models.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, groupResponse{Records: records})
}

func (h *Handler) handleCurrentAge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	age, err := h.service.CurrentAge(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "age lookup failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, translate(err, "failed to read age"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ageResponse{Age: age})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.ClearStore(ctx); err != nil {
		h.logger.ErrorContext(ctx, "clear failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, translate(err, "failed to clear store"))
		return
	}
	h.logger.InfoContext(ctx, "record store cleared via API",
		"request_id", middleware.GetRequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// translate converts store and context errors into coded errors for the
// transport.
func translate(err error, msg string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	case sentinel.IsStoreFailure(err):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "record store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
