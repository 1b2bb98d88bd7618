package list

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/sharedlist/internal/repository"
	"github.com/google/uuid"
)

// Service handles list operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new list service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines list creation inputs.
type CreateRequest struct {
	Name         string
	Description  string
	Location     string
	ScheduledFor *time.Time
}

// UpdateRequest describes a partial metadata update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Name         *string
	Description  *string
	Location     *string
	ScheduledFor *time.Time
	Status       *Status
}

// Create creates a new list and mints its capability token.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*List, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	l := &List{
		ID:           uuid.NewString(),
		Token:        NewToken(),
		Name:         name,
		Description:  req.Description,
		Location:     req.Location,
		ScheduledFor: req.ScheduledFor,
		Status:       StatusActive,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}
	s.logger.Info("list created", "list_id", l.ID)
	return l, nil
}

// Get fetches a list by ID.
func (s *Service) Get(ctx context.Context, id string) (*List, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("getting list: %w", err)
	}
	return l, nil
}

// Resolve fetches a list by its capability token.
func (s *Service) Resolve(ctx context.Context, token string) (*List, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrListNotFound
	}
	l, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("resolving list: %w", err)
	}
	return l, nil
}

// Update applies a partial metadata update and validates status changes.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*List, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Location != nil {
		updated.Location = *req.Location
	}
	if req.ScheduledFor != nil {
		when := *req.ScheduledFor
		updated.ScheduledFor = &when
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, ErrInvalidInput
		}
		if err := ValidateTransition(current.Status, *req.Status); err != nil {
			return nil, err
		}
		updated.Status = *req.Status
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("updating list: %w", err)
	}
	if updated.Status != current.Status {
		s.logger.Info("list status changed", "list_id", id, "from", current.Status, "to", updated.Status)
	}
	return &updated, nil
}

// NewToken mints an opaque capability token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
