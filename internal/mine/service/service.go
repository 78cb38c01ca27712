// Package service orchestrates the mine record lifecycle: submission,
// filtered listing, partial updates, and the admin-controlled verification
// and license transitions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"minetrack/internal/activity"
	"minetrack/internal/mine"
	"minetrack/internal/platform/metrics"
	dErrors "minetrack/pkg/domain-errors"
	"minetrack/pkg/requestcontext"
	"minetrack/pkg/sentinel"
)

// Service coordinates mine persistence with governance rules.
type Service struct {
	mines    mine.Store
	activity *activity.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithActivity(r *activity.Recorder) Option {
	return func(s *Service) { s.activity = r }
}

func New(mines mine.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{mines: mines, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a submission, applies governance defaults, and persists it.
// Verified and license values are never client-supplied; every new mine starts
// unverified with a pending license.
func (s *Service) Create(ctx context.Context, in mine.CreateInput) (*mine.Mine, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	m := &mine.Mine{
		Name:        in.Name,
		Type:        in.Type,
		Coordinates: in.Coordinates,
		Description: in.Description,
		Verified:    false,
		License:     mine.LicensePending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.mines.Insert(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save mine")
	}

	if s.metrics != nil {
		s.metrics.MinesCreated.Inc()
	}
	return m, nil
}

// Get fetches one mine. A malformed identifier is a validation error; a
// well-formed identifier that matches nothing is not found.
func (s *Service) Get(ctx context.Context, id string) (*mine.Mine, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	m, err := s.mines.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return m, nil
}

// List returns every mine matching the filter, in insertion order.
func (s *Service) List(ctx context.Context, f mine.Filter) ([]*mine.Mine, error) {
	mines, err := s.mines.Find(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mines")
	}
	return mines, nil
}

// UpdateInput is the admin-editable subset of a mine record. Coordinates are
// immutable and governance fields go through their dedicated transitions.
type UpdateInput struct {
	Name        *string
	Type        *mine.Type
	Description *string
}

func (in UpdateInput) validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name must not be empty")
	}
	if in.Description != nil {
		if l := len(strings.TrimSpace(*in.Description)); l < 10 || l > 500 {
			return dErrors.New(dErrors.CodeValidation, "description must be between 10 and 500 characters")
		}
	}
	return nil
}

// Update applies a partial edit. The write is compare-and-set on the version
// read here; losing the race surfaces a conflict instead of silently applying
// last-write-wins.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*mine.Mine, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.mines.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	updated, err := s.mines.Update(ctx, id, mine.Update{
		Name:            in.Name,
		Type:            in.Type,
		Description:     in.Description,
		UpdatedAt:       requestcontext.Now(ctx),
		ExpectedVersion: current.Version,
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.activity.Record(ctx, activity.ActionEdit, "mine", id, "mine details updated")
	return updated, nil
}

// Delete removes a mine record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.mines.Delete(ctx, id); err != nil {
		return translateStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.MinesDeleted.Inc()
	}
	s.activity.Record(ctx, activity.ActionDelete, "mine", id, "mine record deleted")
	return nil
}

// SetVerified sets the verification flag in either direction. Re-applying the
// current state succeeds and still advances UpdatedAt.
func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*mine.Mine, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	current, err := s.mines.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	updated, err := s.mines.Update(ctx, id, mine.Update{
		Verified:        &verified,
		UpdatedAt:       requestcontext.Now(ctx),
		ExpectedVersion: current.Version,
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.Verifications.Inc()
	}
	action := activity.ActionApprove
	details := "mine verified"
	if !verified {
		action = activity.ActionWarn
		details = "mine verification withdrawn"
	}
	s.activity.Record(ctx, action, "mine", id, details)
	return updated, nil
}

// SetLicense moves the license along its lifecycle. Non-adjacent jumps are
// rejected; re-applying the current state is an idempotent success.
func (s *Service) SetLicense(ctx context.Context, id string, license mine.License) (*mine.Mine, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	current, err := s.mines.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	if !current.License.CanTransitionTo(license) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("license cannot move from %s to %s", current.License, license))
	}

	updated, err := s.mines.Update(ctx, id, mine.Update{
		License:         &license,
		UpdatedAt:       requestcontext.Now(ctx),
		ExpectedVersion: current.Version,
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.metrics.IncrementLicenseTransition(string(license))
	s.activity.Record(ctx, activity.ActionEdit, "mine", id,
		fmt.Sprintf("license set to %s", license))
	return updated, nil
}

func requireID(id string) error {
	if !mine.ValidID(id) {
		return dErrors.New(dErrors.CodeValidation, "invalid mine id")
	}
	return nil
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "mine not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "mine was modified concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "mine store failure")
	}
}
