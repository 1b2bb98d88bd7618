package list

import "context"

// Repository provides persistence for lists.
type Repository interface {
	Create(ctx context.Context, l *List) error
	Get(ctx context.Context, id string) (*List, error)
	GetByToken(ctx context.Context, token string) (*List, error)
	Update(ctx context.Context, l *List) error
	IncrementRevision(ctx context.Context, id string) (int64, error)
}
