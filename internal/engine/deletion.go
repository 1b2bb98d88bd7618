package engine

import (
	"errors"
	"slices"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/feed"
)

type deletionState int

const (
	deletionPending deletionState = iota
	deletionCommitting
	deletionCancelled
)

type pendingDeletion struct {
	item  item.Item
	entry string
	timer Timer
	state deletionState
}

// deletionBuffer tracks removals inside their grace period. Callers hold
// the engine mutex.
type deletionBuffer struct {
	grace   time.Duration
	clock   Clock
	pending map[string]*pendingDeletion
}

func newDeletionBuffer(grace time.Duration, clock Clock) *deletionBuffer {
	return &deletionBuffer{
		grace:   grace,
		clock:   clock,
		pending: make(map[string]*pendingDeletion),
	}
}

// hidden reports whether id is pending or committing.
func (b *deletionBuffer) hidden(id string) bool {
	_, ok := b.pending[id]
	return ok
}

func (b *deletionBuffer) schedule(d *pendingDeletion, fire func()) {
	d.state = deletionPending
	b.pending[d.item.ID] = d
	d.timer = b.clock.AfterFunc(b.grace, fire)
}

// cancel undoes a pending deletion. It fails once the commit has started.
func (b *deletionBuffer) cancel(id string) (*pendingDeletion, bool) {
	d, ok := b.pending[id]
	if !ok || d.state != deletionPending {
		return nil, false
	}
	d.timer.Stop()
	d.state = deletionCancelled
	delete(b.pending, id)
	return d, true
}

// begin moves d to committing. A timer that lost the race against cancel
// or drain finds d no longer pending.
func (b *deletionBuffer) begin(d *pendingDeletion) bool {
	if b.pending[d.item.ID] != d || d.state != deletionPending {
		return false
	}
	d.state = deletionCommitting
	return true
}

func (b *deletionBuffer) finish(d *pendingDeletion) {
	if b.pending[d.item.ID] == d {
		delete(b.pending, d.item.ID)
	}
}

// drain cancels every deletion that has not started committing.
func (b *deletionBuffer) drain() []*pendingDeletion {
	var out []*pendingDeletion
	for id, d := range b.pending {
		if d.state != deletionPending {
			continue
		}
		d.timer.Stop()
		d.state = deletionCancelled
		delete(b.pending, id)
		out = append(out, d)
	}
	slices.SortFunc(out, func(x, y *pendingDeletion) int { return x.item.Position - y.item.Position })
	return out
}

// RemoveItem hides an item and deletes it from the store once the grace
// period elapses. Removing an item that is already pending does nothing.
func (e *Engine) RemoveItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deletions.hidden(id) {
		return nil
	}
	idx, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err := e.writable(); err != nil {
		return err
	}
	it := e.items[idx]
	e.items = slices.Delete(e.items, idx, idx+1)
	d := &pendingDeletion{
		item:  it,
		entry: e.feed.Echo(activity.KindRemoved, it.Name, e.actor(), nil),
	}
	e.wg.Add(1)
	e.deletions.schedule(d, func() { e.commitDeletion(d) })
	return nil
}

// UndoRemove restores an item whose deletion is still inside its grace
// period. It reports false when there is nothing to undo or the delete
// request has already been sent.
func (e *Engine) UndoRemove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.deletions.cancel(id)
	if !ok {
		return false
	}
	e.reinsert(d.item)
	e.feed.Retract(d.entry)
	e.wg.Done()
	return true
}

// PendingRemovals returns the ids still inside their grace period.
func (e *Engine) PendingRemovals() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []string
	for id, d := range e.deletions.pending {
		if d.state == deletionPending {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (e *Engine) commitDeletion(d *pendingDeletion) {
	e.mu.Lock()
	if !e.deletions.begin(d) {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	defer e.wg.Done()

	err := e.store.DeleteItem(e.ctx, d.item.ID)
	if errors.Is(err, item.ErrItemNotFound) {
		// Someone else deleted it first.
		err = nil
	}

	e.mu.Lock()
	e.deletions.finish(d)
	if err != nil {
		e.reinsert(d.item)
		e.feed.Retract(d.entry)
		e.mu.Unlock()
		e.notify(&StoreError{Op: OpDelete, ItemID: d.item.ID, Err: err})
		return
	}
	e.feed.Confirm(d.entry, feed.Ref{ItemID: d.item.ID})
	promoted := len(item.RemaindersOf(e.items, d.item.ID)) > 0
	e.mu.Unlock()

	if promoted {
		e.resync()
	}
}

// reinsert puts it back at its sort position. Caller holds mu.
func (e *Engine) reinsert(it item.Item) {
	if e.index(it.ID) >= 0 {
		return
	}
	idx := slices.IndexFunc(e.items, func(other item.Item) bool {
		if other.Position != it.Position {
			return other.Position > it.Position
		}
		return other.CreatedAt.After(it.CreatedAt)
	})
	if idx < 0 {
		idx = len(e.items)
	}
	e.items = slices.Insert(e.items, idx, it)
}
