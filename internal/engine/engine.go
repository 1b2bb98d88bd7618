// Package engine keeps a participant's local view of a shared list
// consistent with the item store. Every intent is applied optimistically,
// echoed to the activity feed and sent to the store in the background; the
// store's answer is then accepted or the intent is rolled back.
package engine

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/feed"
)

// DefaultGracePeriod is how long a removal can be undone.
const DefaultGracePeriod = 5 * time.Second

const provisionalPrefix = "tmp-"

// IsProvisional reports whether id was assigned locally to an item the
// store has not created yet.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// Options configures an Engine.
type Options struct {
	// Participant is recorded as the actor on echoed activity.
	Participant string
	GracePeriod time.Duration
	FeedWindow  int
	Clock       Clock
	Notifier    Notifier
	Logger      *slog.Logger
}

type field uint8

const (
	fieldName field = iota
	fieldQuantity
	fieldClaimant
)

type fieldKey struct {
	id    string
	field field
}

// pendingField tracks the unsettled intents on one field of one item.
// base holds the field as the store last confirmed it. Once the newest
// intent has failed the view follows base.
type pendingField struct {
	latest       uint64
	pending      int
	base         item.Item
	latestFailed bool
}

func copyField(f field, dst *item.Item, src item.Item) {
	switch f {
	case fieldName:
		dst.Name = src.Name
	case fieldQuantity:
		dst.Quantity = src.Quantity
	case fieldClaimant:
		dst.Claimant = src.Clone().Claimant
	}
}

// Engine is the reconciliation engine for one list and one participant.
type Engine struct {
	store       Store
	clock       Clock
	notifier    Notifier
	logger      *slog.Logger
	participant string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	list      list.List
	items     []item.Item
	seq       uint64
	inflight  map[fieldKey]*pendingField
	feed      *feed.Projector
	deletions *deletionBuffer
}

// New creates an engine on top of store. Call Refresh to load the list.
func New(store Store, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:       store,
		clock:       opts.Clock,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		participant: strings.TrimSpace(opts.Participant),
		ctx:         ctx,
		cancel:      cancel,
		inflight:    make(map[fieldKey]*pendingField),
		feed:        feed.NewProjector(opts.FeedWindow, opts.Clock.Now),
		deletions:   newDeletionBuffer(opts.GracePeriod, opts.Clock),
	}
}

// Refresh re-reads the list, its items and recent activity from the store.
// Items with a pending deletion stay hidden, provisional items are kept and
// fields with an unsettled intent keep their local value.
func (e *Engine) Refresh(ctx context.Context) error {
	snap, err := e.store.FetchList(ctx)
	if err != nil {
		return err
	}
	entries, err := e.store.FetchActivity(ctx, e.feed.Window())
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.list = snap.List
	e.items = e.merge(snap.Items)
	e.feed.Reload(entries)
	return nil
}

// AddItem appends a provisional item and asks the store to create it. The
// returned id is the provisional one.
func (e *Engine) AddItem(name string) (string, error) {
	name = item.NormalizeName(name)
	if name == "" {
		return "", ErrEmptyName
	}

	e.mu.Lock()
	if err := e.writable(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	now := e.clock.Now()
	provisional := item.Item{
		ID:         provisionalPrefix + uuid.NewString(),
		ListID:     e.list.ID,
		Name:       name,
		Quantity:   1,
		Position:   e.nextPosition(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	e.items = append(e.items, provisional)
	entry := e.feed.Echo(activity.KindAdded, name, e.actor(), nil)
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		created, err := e.store.CreateItem(e.ctx, name, 1)

		e.mu.Lock()
		if err != nil {
			e.items = slices.DeleteFunc(e.items, func(it item.Item) bool { return it.ID == provisional.ID })
			e.feed.Retract(entry)
			e.mu.Unlock()
			e.notify(&StoreError{Op: OpCreate, ItemID: provisional.ID, Err: err})
			return
		}
		e.settleCreate(provisional.ID, *created)
		e.feed.Confirm(entry, feed.Ref{ItemID: created.ID, Revision: created.Revision})
		e.mu.Unlock()
	}()
	return provisional.ID, nil
}

// RenameItem renames an item. Empty names and unchanged names are ignored.
func (e *Engine) RenameItem(id, name string) error {
	name = item.NormalizeName(name)

	e.mu.Lock()
	idx, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if name == "" || name == e.items[idx].Name {
		e.mu.Unlock()
		return nil
	}
	if err := e.writable(); err != nil {
		e.mu.Unlock()
		return err
	}
	seq := e.begin(e.items[idx], fieldName)
	e.items[idx].Name = name
	entry := e.feed.Echo(activity.KindEdited, name, e.actor(), nil)
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		res, err := e.store.UpdateItem(e.ctx, id, Patch{Name: &name})
		e.settleUpdate(update{
			op:    OpRename,
			id:    id,
			field: fieldName,
			seq:   seq,
			entry: entry,
		}, res, err)
	}()
	return nil
}

// ChangeQuantity sets an item's quantity. Raising the quantity of a claimed
// item is answered by the store with a split; the claimed quantity is then
// restored locally and the list is re-read to pick up the remainder.
func (e *Engine) ChangeQuantity(id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	e.mu.Lock()
	idx, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if quantity == e.items[idx].Quantity {
		e.mu.Unlock()
		return nil
	}
	if err := e.writable(); err != nil {
		e.mu.Unlock()
		return err
	}
	seq := e.begin(e.items[idx], fieldQuantity)
	e.items[idx].Quantity = quantity
	entry := e.feed.Echo(activity.KindEdited, e.items[idx].Name, e.actor(), &quantity)
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		res, err := e.store.UpdateItem(e.ctx, id, Patch{Quantity: &quantity})
		e.settleUpdate(update{
			op:      OpQuantity,
			id:      id,
			field:   fieldQuantity,
			seq:     seq,
			entry:   entry,
			retract: true,
		}, res, err)
	}()
	return nil
}

// Claim assigns an item to claimant.
func (e *Engine) Claim(id, claimant string) error {
	claimant = item.NormalizeName(claimant)
	if claimant == "" {
		return ErrEmptyClaimant
	}

	e.mu.Lock()
	idx, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	cur := e.items[idx]
	if cur.Claimant != nil && *cur.Claimant == claimant {
		e.mu.Unlock()
		return nil
	}
	if err := e.writable(); err != nil {
		e.mu.Unlock()
		return err
	}
	claimed, err := item.ApplyClaim(cur, claimant)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	seq := e.begin(cur, fieldClaimant)
	e.items[idx].Claimant = claimed.Claimant
	entry := e.feed.Echo(activity.KindClaimed, cur.Name, &claimant, nil)
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		res, err := e.store.UpdateItem(e.ctx, id, Patch{Claimant: &claimant})
		e.settleUpdate(update{
			op:      OpClaim,
			id:      id,
			field:   fieldClaimant,
			seq:     seq,
			entry:   entry,
			retract: true,
		}, res, err)
	}()
	return nil
}

// Unclaim releases an item. Unclaiming an unclaimed item does nothing.
func (e *Engine) Unclaim(id string) error {
	e.mu.Lock()
	idx, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	cur := e.items[idx]
	if !cur.Claimed() {
		e.mu.Unlock()
		return nil
	}
	if err := e.writable(); err != nil {
		e.mu.Unlock()
		return err
	}
	seq := e.begin(cur, fieldClaimant)
	e.items[idx] = item.ApplyUnclaim(cur)
	entry := e.feed.Echo(activity.KindUnclaimed, cur.Name, e.actor(), nil)
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		none := ""
		res, err := e.store.UpdateItem(e.ctx, id, Patch{Claimant: &none})
		e.settleUpdate(update{
			op:    OpUnclaim,
			id:    id,
			field: fieldClaimant,
			seq:   seq,
			entry: entry,
		}, res, err)
	}()
	return nil
}

// Items returns a copy of the local view.
func (e *Engine) Items() []item.Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]item.Item, len(e.items))
	for i, it := range e.items {
		out[i] = it.Clone()
	}
	return out
}

// Item returns the item with id from the local view.
func (e *Engine) Item(id string) (item.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.index(id); idx >= 0 {
		return e.items[idx].Clone(), true
	}
	return item.Item{}, false
}

// List returns the list as last read from the store.
func (e *Engine) List() list.List {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list
}

// Summary counts the local view.
func (e *Engine) Summary() item.Summary {
	return item.Summarize(e.Items())
}

// Feed yields the recent activity window, newest first.
func (e *Engine) Feed() iter.Seq[feed.Entry] {
	return e.feed.Recent()
}

// FeedLines renders Feed as strings.
func (e *Engine) FeedLines() []string {
	return e.feed.Lines()
}

// Wait blocks until every issued store request has settled, including
// deletions still inside their grace period.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close discards pending deletions, reporting ErrOrphanedTimer for each,
// and waits for in-flight requests. Further intents fail with ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	orphaned := e.deletions.drain()
	for range orphaned {
		e.wg.Done()
	}
	e.mu.Unlock()

	var errs []error
	for _, d := range orphaned {
		err := &StoreError{Op: OpDelete, ItemID: d.item.ID, Err: ErrOrphanedTimer}
		e.notify(err)
		errs = append(errs, err)
	}
	e.wg.Wait()
	e.cancel()
	return errors.Join(errs...)
}

// update describes how to settle one field intent.
type update struct {
	op      string
	id      string
	field   field
	seq     uint64
	entry   string
	retract bool
}

// settleUpdate accepts or rolls back one field intent. A failed intent
// restores the store-confirmed value only when it is the newest one on
// the field; an older failure leaves the newer local value alone.
func (e *Engine) settleUpdate(u update, res *item.UpdateResult, err error) {
	e.mu.Lock()
	p := e.finish(u.id, u.field)
	if err != nil {
		if u.seq == p.latest {
			p.latestFailed = true
		}
		if it := e.viewItem(u.id); it != nil && p.latestFailed {
			copyField(u.field, it, p.base)
		}
		if u.retract {
			e.feed.Retract(u.entry)
		} else {
			e.feed.Confirm(u.entry, feed.Ref{})
		}
		e.mu.Unlock()
		e.notify(&StoreError{Op: u.op, ItemID: u.id, Err: err})
		return
	}

	copyField(u.field, &p.base, res.Item)
	e.feed.Confirm(u.entry, feed.Ref{ItemID: u.id, Revision: res.Item.Revision})
	if it := e.viewItem(u.id); it != nil {
		*it = e.overlay(res.Item, *it)
		if p.latestFailed {
			copyField(u.field, it, p.base)
		}
	}
	split := res.Split()
	if split && res.Remainder != nil && e.index(res.Remainder.ID) < 0 {
		e.items = append(e.items, res.Remainder.Clone())
	}
	e.mu.Unlock()

	if split {
		e.logger.Debug("quantity increase split", "item", u.id, "delta", res.Delta)
		e.resync()
	}
}

func (e *Engine) settleCreate(provisionalID string, created item.Item) {
	idx := e.index(provisionalID)
	if e.index(created.ID) >= 0 {
		// A refresh already brought the stored item in.
		if idx >= 0 {
			e.items = slices.Delete(e.items, idx, idx+1)
		}
		return
	}
	if idx < 0 {
		e.items = append(e.items, created)
		return
	}
	e.items[idx] = created
}

func (e *Engine) resync() {
	if err := e.Refresh(e.ctx); err != nil {
		e.notify(&StoreError{Op: OpRefresh, Err: err})
	}
}

// merge builds the view from a fresh read. Caller holds mu.
func (e *Engine) merge(fetched []item.Item) []item.Item {
	local := make(map[string]item.Item, len(e.items))
	for _, it := range e.items {
		local[it.ID] = it
	}
	out := make([]item.Item, 0, len(fetched)+1)
	for _, it := range fetched {
		e.rebase(it)
		if e.deletions.hidden(it.ID) {
			continue
		}
		if cur, ok := local[it.ID]; ok {
			it = e.overlay(it, cur)
		}
		out = append(out, it)
	}
	for _, it := range e.items {
		if IsProvisional(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// overlay returns auth with the fields that still have an unsettled local
// intent taken from local.
func (e *Engine) overlay(auth, local item.Item) item.Item {
	out := auth.Clone()
	if _, ok := e.inflight[fieldKey{auth.ID, fieldName}]; ok {
		out.Name = local.Name
	}
	if _, ok := e.inflight[fieldKey{auth.ID, fieldQuantity}]; ok {
		out.Quantity = local.Quantity
	}
	if _, ok := e.inflight[fieldKey{auth.ID, fieldClaimant}]; ok {
		out.Claimant = local.Clone().Claimant
	}
	return out
}

// rebase records auth as the confirmed value of its in-flight fields.
// Caller holds mu.
func (e *Engine) rebase(auth item.Item) {
	for _, f := range []field{fieldName, fieldQuantity, fieldClaimant} {
		if p, ok := e.inflight[fieldKey{auth.ID, f}]; ok {
			copyField(f, &p.base, auth)
		}
	}
}

// begin registers an intent on field f of cur, which must still hold the
// value from before the intent.
func (e *Engine) begin(cur item.Item, f field) uint64 {
	e.seq++
	key := fieldKey{cur.ID, f}
	p, ok := e.inflight[key]
	if !ok {
		p = &pendingField{base: cur.Clone()}
		e.inflight[key] = p
	}
	p.latest = e.seq
	p.latestFailed = false
	p.pending++
	return e.seq
}

// finish settles one intent on the field. The tracker is released with the
// last one; the returned value stays usable by the caller.
func (e *Engine) finish(id string, f field) *pendingField {
	key := fieldKey{id, f}
	p := e.inflight[key]
	p.pending--
	if p.pending == 0 {
		delete(e.inflight, key)
	}
	return p
}

// viewItem returns the item with id in the view, or the snapshot held by
// its pending deletion so an undo brings back settled state. Caller holds
// mu.
func (e *Engine) viewItem(id string) *item.Item {
	if idx := e.index(id); idx >= 0 {
		return &e.items[idx]
	}
	if d, ok := e.deletions.pending[id]; ok {
		return &d.item
	}
	return nil
}

func (e *Engine) lookup(id string) (int, error) {
	if e.closed {
		return -1, ErrClosed
	}
	idx := e.index(id)
	if idx < 0 {
		return -1, ErrItemNotFound
	}
	if IsProvisional(id) {
		return -1, ErrItemProvisional
	}
	return idx, nil
}

func (e *Engine) index(id string) int {
	return slices.IndexFunc(e.items, func(it item.Item) bool { return it.ID == id })
}

func (e *Engine) writable() error {
	if e.closed {
		return ErrClosed
	}
	if e.list.Status != "" && !e.list.Active() {
		return list.ErrListNotActive
	}
	return nil
}

func (e *Engine) nextPosition() int {
	next := 0
	for _, it := range e.items {
		if it.Position >= next {
			next = it.Position + 1
		}
	}
	return next
}

func (e *Engine) actor() *string {
	if e.participant == "" {
		return nil
	}
	p := e.participant
	return &p
}

func (e *Engine) notify(err error) {
	e.logger.Warn("store request rolled back", "error", err)
	if e.notifier != nil {
		e.notifier.Notify(err)
	}
}
