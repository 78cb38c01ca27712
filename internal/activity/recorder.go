package activity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"minetrack/pkg/requestcontext"
)

// Recorder appends entries to the store and fans them out to an optional
// publisher. A nil *Recorder is valid and records nothing, so callers never
// need to guard.
type Recorder struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithPublisher attaches an external sink.
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) {
		r.publisher = p
	}
}

func NewRecorder(store Store, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{store: store, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record captures an admin action, attributing it to the authenticated caller
// in ctx. Persistence failures are logged and swallowed; the admin action
// itself already succeeded and must not be rolled back over bookkeeping.
func (r *Recorder) Record(ctx context.Context, action Action, targetType, targetID, details string) {
	if r == nil {
		return
	}

	e := Entry{
		ID:         uuid.NewString(),
		AdminID:    requestcontext.UserID(ctx),
		AdminName:  requestcontext.UserName(ctx),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		Timestamp:  requestcontext.Now(ctx),
	}

	if err := r.store.Append(ctx, e); err != nil {
		r.logger.ErrorContext(ctx, "failed to append activity entry",
			"error", err,
			"action", string(action),
			"target_id", targetID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if r.publisher != nil {
		r.publisher.Publish(ctx, e)
	}
}
