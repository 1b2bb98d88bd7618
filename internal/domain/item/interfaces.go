package item

import (
	"context"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/list"
)

// Repository provides persistence for items.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Get(ctx context.Context, listID, id string) (*Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, listID, id string) error
	List(ctx context.Context, listID string) ([]Item, error)
	NextPosition(ctx context.Context, listID string) (int, error)
}

// ListRepository provides the list lookups and revision bumps items need.
type ListRepository interface {
	Get(ctx context.Context, id string) (*list.List, error)
	IncrementRevision(ctx context.Context, id string) (int64, error)
}

// ActivityRepository logs item activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Transactor runs fn as one unit of work. Repository calls made with the
// context fn receives commit or roll back together.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactorFunc adapts a function to Transactor.
type TransactorFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f TransactorFunc) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

func runDirect(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
