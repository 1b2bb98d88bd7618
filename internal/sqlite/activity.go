package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
)

var (
	_ activity.Repository     = (*ActivityRepository)(nil)
	_ item.ActivityRepository = (*ActivityRepository)(nil)
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (
			list_id, item_id, kind, item_name, actor, quantity, created_at, revision
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		entry.ListID,
		entry.ItemID,
		entry.Kind,
		entry.ItemName,
		entry.Actor,
		entry.Quantity,
		createdAt,
		entry.Revision,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first.
// Insertion order is authoritative; timestamps from different writers may tie.
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT
			id, list_id, item_id, kind, item_name, actor, quantity, created_at, revision
		FROM activity_log
		WHERE list_id = ?
	`

	args := []any{opts.ListID}
	var conditions []string

	if opts.ItemID != nil {
		conditions = append(conditions, "item_id = ?")
		args = append(args, *opts.ItemID)
	}
	if opts.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *opts.Kind)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.ListID,
			&entry.ItemID,
			&entry.Kind,
			&entry.ItemName,
			&entry.Actor,
			&entry.Quantity,
			&entry.CreatedAt,
			&entry.Revision,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
