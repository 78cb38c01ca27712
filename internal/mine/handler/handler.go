// Package handler exposes the mine registry over HTTP. Route gating (auth,
// admin role) is applied by the router; handlers assume it already happened.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"minetrack/internal/enrichment"
	"minetrack/internal/mine"
	"minetrack/internal/mine/service"
	"minetrack/internal/transport/http/shared"
	dErrors "minetrack/pkg/domain-errors"
	"minetrack/pkg/requestcontext"
)

// Handler handles mine registry endpoints.
type Handler struct {
	mines    *service.Service
	enricher *enrichment.Service
	logger   *slog.Logger
}

func New(mines *service.Service, enricher *enrichment.Service, logger *slog.Logger) *Handler {
	return &Handler{mines: mines, enricher: enricher, logger: logger}
}

// HandleCreate accepts a mine submission from an authenticated user.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createMineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid mine submission body",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.mines.Create(ctx, req.toInput())
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create mine")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

// HandleList returns mines matching the query filters. With enrich=true each
// record carries a fresh environmental snapshot.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r.URL.Query())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	mines, err := h.mines.List(ctx, f)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list mines")
		return
	}

	if h.enricher != nil && r.URL.Query().Get("enrich") == "true" {
		mines = h.enricher.EnrichMany(ctx, mines)
	}
	shared.WriteJSON(w, http.StatusOK, mines)
}

// HandleGet returns one mine, always enriched when a provider is configured.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := h.mines.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to fetch mine")
		return
	}

	if h.enricher != nil {
		m = h.enricher.Enrich(ctx, m)
	}
	shared.WriteJSON(w, http.StatusOK, m)
}

// HandleUpdate applies an admin edit to the descriptive fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateMineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	in, err := req.toInput()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.mines.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update mine")
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a mine record.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.mines.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, "failed to delete mine")
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "mine deleted",
	})
}

// HandleSetVerification flips the verification flag.
func (h *Handler) HandleSetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Verified == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "verified field is required"))
		return
	}

	updated, err := h.mines.SetVerified(ctx, chi.URLParam(r, "id"), *req.Verified)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to set verification")
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

// HandleSetLicense moves the license along its lifecycle.
func (h *Handler) HandleSetLicense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	license, err := mine.ParseLicense(req.License)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.mines.SetLicense(ctx, chi.URLParam(r, "id"), license)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to set license")
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

// writeServiceError logs according to error class and writes the envelope.
// Client-caused failures are warnings; everything else is an internal error.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"error", err.Error(),
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}
