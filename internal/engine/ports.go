package engine

import (
	"context"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
)

// Snapshot is a full read of a list and its items.
type Snapshot struct {
	List  list.List   `json:"list"`
	Items []item.Item `json:"items"`
}

// Patch carries the fields of an item update. Nil fields are left alone;
// an empty Claimant clears the claim.
type Patch struct {
	Name     *string
	Quantity *int
	Claimant *string
}

// Store is the authoritative item store for one list. Implementations are
// bound to the list's token.
type Store interface {
	FetchList(ctx context.Context) (*Snapshot, error)
	FetchActivity(ctx context.Context, limit int) ([]activity.Entry, error)
	CreateItem(ctx context.Context, name string, quantity int) (*item.Item, error)
	UpdateItem(ctx context.Context, id string, patch Patch) (*item.UpdateResult, error)
	DeleteItem(ctx context.Context, id string) error
}

// Notifier receives errors that were absorbed by a rollback.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err error)

// Notify calls f(err).
func (f NotifierFunc) Notify(err error) {
	f(err)
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the
	// callback already fired or the timer was stopped.
	Stop() bool
}

// Clock abstracts time so the deletion grace period can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
