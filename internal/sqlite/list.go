package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/repository"
)

var (
	_ list.Repository     = (*ListRepository)(nil)
	_ item.ListRepository = (*ListRepository)(nil)
)

// ListRepository implements list.Repository for SQLite
type ListRepository struct {
	db *DB
}

// NewListRepository creates a new ListRepository
func NewListRepository(db *DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `id, token, name, description, location, scheduled_for, status, revision, created_at`

// Create inserts a new list
func (r *ListRepository) Create(ctx context.Context, l *list.List) error {
	query := `
		INSERT INTO lists (` + listColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		l.ID,
		l.Token,
		l.Name,
		l.Description,
		l.Location,
		l.ScheduledFor,
		l.Status,
		l.Revision,
		l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// Get retrieves a list by ID
func (r *ListRepository) Get(ctx context.Context, id string) (*list.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByToken retrieves a list by its capability token
func (r *ListRepository) GetByToken(ctx context.Context, token string) (*list.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE token = ?`
	return r.getOne(ctx, query, token)
}

func (r *ListRepository) getOne(ctx context.Context, query string, arg string) (*list.List, error) {
	var l list.List
	err := r.db.conn(ctx).QueryRowContext(ctx, query, arg).Scan(
		&l.ID,
		&l.Token,
		&l.Name,
		&l.Description,
		&l.Location,
		&l.ScheduledFor,
		&l.Status,
		&l.Revision,
		&l.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &l, nil
}

// Update writes list metadata and status. The revision is owned by
// IncrementRevision and is not touched here.
func (r *ListRepository) Update(ctx context.Context, l *list.List) error {
	query := `
		UPDATE lists
		SET name = ?, description = ?, location = ?, scheduled_for = ?, status = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		l.Name,
		l.Description,
		l.Location,
		l.ScheduledFor,
		l.Status,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementRevision atomically bumps the list revision and returns the new
// value. It joins the caller's transaction when there is one.
func (r *ListRepository) IncrementRevision(ctx context.Context, id string) (int64, error) {
	var revision int64
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`UPDATE lists SET revision = revision + 1 WHERE id = ? RETURNING revision`, id,
	).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment revision: %w", err)
	}
	return revision, nil
}
