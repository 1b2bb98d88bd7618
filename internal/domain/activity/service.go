package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultLimit bounds recent-activity queries that do not set a limit.
const DefaultLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// LogActivity appends an entry, stamping the current time if missing.
func (s *Service) LogActivity(ctx context.Context, entry *Entry) error {
	if entry == nil || strings.TrimSpace(entry.ListID) == "" || !entry.Kind.Valid() {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists entries newest first. A zero limit falls back to
// DefaultLimit.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if strings.TrimSpace(opts.ListID) == "" || opts.Limit < 0 || opts.Offset < 0 {
		return nil, ErrInvalidInput
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	s.logger.Debug("recent activity loaded", "list_id", opts.ListID, "count", len(entries))
	return entries, nil
}
