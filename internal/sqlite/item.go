package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/repository"
)

var _ item.Repository = (*ItemRepository)(nil)

// ItemRepository implements item.Repository for SQLite
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, list_id, name, quantity, position, claimant, parent_id, revision, created_at, modified_at`

// Create inserts a new item
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		it.ID,
		it.ListID,
		it.Name,
		it.Quantity,
		it.Position,
		it.Claimant,
		it.ParentID,
		it.Revision,
		it.CreatedAt,
		it.ModifiedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// Get retrieves an item scoped to its list
func (r *ItemRepository) Get(ctx context.Context, listID, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND list_id = ?`

	it, err := scanItem(r.db.conn(ctx).QueryRowContext(ctx, query, id, listID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return it, nil
}

// Update writes name, quantity, claimant and revision
func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET name = ?, quantity = ?, claimant = ?, revision = ?, modified_at = ?
		WHERE id = ? AND list_id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		it.Name,
		it.Quantity,
		it.Claimant,
		it.Revision,
		it.ModifiedAt,
		it.ID,
		it.ListID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
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

// Delete removes an item. Remainders pointing at it become root items
// through ON DELETE SET NULL.
func (r *ItemRepository) Delete(ctx context.Context, listID, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM items WHERE id = ? AND list_id = ?`, id, listID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
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

// List returns all items on a list in display order
func (r *ItemRepository) List(ctx context.Context, listID string) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE list_id = ? ORDER BY position ASC, created_at ASC`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// NextPosition returns the position after the last item on the list
func (r *ItemRepository) NextPosition(ctx context.Context, listID string) (int, error) {
	var position int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM items WHERE list_id = ?`, listID,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to get next position: %w", err)
	}
	return position, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*item.Item, error) {
	var it item.Item
	if err := row.Scan(
		&it.ID,
		&it.ListID,
		&it.Name,
		&it.Quantity,
		&it.Position,
		&it.Claimant,
		&it.ParentID,
		&it.Revision,
		&it.CreatedAt,
		&it.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}
