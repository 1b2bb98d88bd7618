package engine_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/engine"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeStore is an in-memory item store applying the split rule. hook runs
// before every call outside the lock and can block or fail it; written
// runs after a successful write, before the answer is returned.
type fakeStore struct {
	mu       sync.Mutex
	list     list.List
	items    []item.Item
	log      []activity.Entry
	nextID   int
	revision int64
	deletes  []string
	actor    string
	hook     func(op, id string, patch engine.Patch) error
	written  func(op, id string)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		list: list.List{ID: "L1", Token: "tok", Name: "Picnic", Status: list.StatusActive, CreatedAt: epoch},
	}
}

// seed adds an item directly, bypassing the activity log.
func (s *fakeStore) seed(name string, quantity int, claimant string) item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.insert(name, quantity, nil)
	if claimant != "" {
		s.items[len(s.items)-1].Claimant = &claimant
		it.Claimant = &claimant
	}
	return it
}

func (s *fakeStore) setHook(h func(op, id string, patch engine.Patch) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

func (s *fakeStore) setWritten(f func(op, id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = f
}

func (s *fakeStore) afterWrite(op, id string) {
	s.mu.Lock()
	f := s.written
	s.mu.Unlock()
	if f != nil {
		f(op, id)
	}
}

func (s *fakeStore) call(op, id string, patch engine.Patch) error {
	s.mu.Lock()
	h := s.hook
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(op, id, patch)
}

func (s *fakeStore) FetchList(ctx context.Context) (*engine.Snapshot, error) {
	if err := s.call("fetch", "", engine.Patch{}); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]item.Item, len(s.items))
	for i, it := range s.items {
		items[i] = it.Clone()
	}
	return &engine.Snapshot{List: s.list, Items: items}, nil
}

func (s *fakeStore) FetchActivity(ctx context.Context, limit int) ([]activity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.log)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) CreateItem(ctx context.Context, name string, quantity int) (*item.Item, error) {
	if err := s.call("create", name, engine.Patch{}); err != nil {
		return nil, err
	}
	s.mu.Lock()
	it := s.insert(name, quantity, nil)
	s.record(it, activity.KindAdded, s.actorPtr(), nil)
	s.mu.Unlock()
	s.afterWrite("create", it.ID)
	return &it, nil
}

func (s *fakeStore) UpdateItem(ctx context.Context, id string, patch engine.Patch) (*item.UpdateResult, error) {
	if err := s.call("update", id, patch); err != nil {
		return nil, err
	}
	res, err := s.update(id, patch)
	if err != nil {
		return nil, err
	}
	s.afterWrite("update", id)
	return res, nil
}

func (s *fakeStore) update(id string, patch engine.Patch) (*item.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(it item.Item) bool { return it.ID == id })
	if idx < 0 {
		return nil, item.ErrItemNotFound
	}
	cur := s.items[idx].Clone()
	s.revision++
	cur.Revision = s.revision
	res := &item.UpdateResult{Outcome: item.OutcomeUpdated}

	if patch.Name != nil {
		cur.Name = *patch.Name
		s.record(cur, activity.KindEdited, s.actorPtr(), nil)
	}
	if patch.Quantity != nil {
		effect, err := item.ClassifyQuantityChange(cur, *patch.Quantity)
		if err != nil {
			return nil, err
		}
		if effect == item.QuantitySplit {
			delta := *patch.Quantity - cur.Quantity
			root := item.RootID(cur)
			rem := s.insert(cur.Name, delta, &root)
			s.record(rem, activity.KindAdded, s.actorPtr(), &delta)
			res.Outcome = item.OutcomeSplit
			res.Remainder = &rem
			res.Delta = delta
		} else {
			q := *patch.Quantity
			cur.Quantity = q
			s.record(cur, activity.KindEdited, s.actorPtr(), &q)
		}
	}
	if patch.Claimant != nil {
		if *patch.Claimant == "" {
			cur = item.ApplyUnclaim(cur)
			s.record(cur, activity.KindUnclaimed, s.actorPtr(), nil)
		} else {
			claimant := *patch.Claimant
			cur.Claimant = &claimant
			s.record(cur, activity.KindClaimed, &claimant, nil)
		}
	}
	s.items[idx] = cur
	res.Item = cur.Clone()
	return res, nil
}

func (s *fakeStore) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, id)
	s.mu.Unlock()
	if err := s.call("delete", id, engine.Patch{}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(it item.Item) bool { return it.ID == id })
	if idx < 0 {
		return item.ErrItemNotFound
	}
	gone := s.items[idx]
	s.items = slices.Delete(s.items, idx, idx+1)
	for i := range s.items {
		if s.items[i].ParentID != nil && *s.items[i].ParentID == id {
			s.items[i].ParentID = nil
		}
	}
	s.record(gone, activity.KindRemoved, s.actorPtr(), nil)
	return nil
}

func (s *fakeStore) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deletes)
}

func (s *fakeStore) insert(name string, quantity int, parent *string) item.Item {
	s.nextID++
	s.revision++
	it := item.Item{
		ID:         fmt.Sprintf("i%d", s.nextID),
		ListID:     s.list.ID,
		Name:       name,
		Quantity:   quantity,
		Position:   len(s.items),
		ParentID:   parent,
		Revision:   s.revision,
		CreatedAt:  epoch,
		ModifiedAt: epoch,
	}
	s.items = append(s.items, it)
	return it.Clone()
}

func (s *fakeStore) record(it item.Item, kind activity.Kind, actor *string, quantity *int) {
	if kind == activity.KindAdded && quantity != nil && *quantity == 1 {
		quantity = nil
	}
	id := it.ID
	s.log = append(s.log, activity.Entry{
		ID:        int64(len(s.log) + 1),
		ListID:    s.list.ID,
		ItemID:    &id,
		Revision:  it.Revision,
		Kind:      kind,
		ItemName:  it.Name,
		Actor:     actor,
		Quantity:  quantity,
		CreatedAt: epoch,
	})
}

func (s *fakeStore) actorPtr() *string {
	if s.actor == "" {
		return nil
	}
	a := s.actor
	return &a
}

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) engine.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due callbacks on the caller's
// goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// recorder collects notifications.
type recorder struct {
	mu   sync.Mutex
	errs []error
	ch   chan error
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan error, 32)}
}

func (r *recorder) Notify(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.ch <- err
}

func (r *recorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}
