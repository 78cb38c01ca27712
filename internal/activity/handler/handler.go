// Package handler serves the admin activity feed.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"minetrack/internal/activity"
	"minetrack/internal/transport/http/shared"
	dErrors "minetrack/pkg/domain-errors"
	"minetrack/pkg/requestcontext"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Handler struct {
	store  activity.Store
	logger *slog.Logger
}

func New(store activity.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// HandleListRecent returns the newest admin actions, most recent first.
func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = n
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	entries, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list activity",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity"))
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
