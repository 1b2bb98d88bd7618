// Package feed projects optimistic and store-confirmed activity into one
// newest-first, bounded feed.
package feed

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
)

// DefaultWindow is the number of entries Recent yields.
const DefaultWindow = 20

// Entry is one rendered feed line.
type Entry struct {
	ID         string        `json:"id"`
	Kind       activity.Kind `json:"kind"`
	ItemName   string        `json:"item_name"`
	Actor      *string       `json:"actor,omitempty"`
	Quantity   *int          `json:"quantity,omitempty"`
	At         time.Time     `json:"at"`
	Optimistic bool          `json:"optimistic"`

	seq       uint64
	confirmed bool
	ref       Ref
}

// Ref names the log row a store write produced. A zero Revision matches
// any row for the item and kind; a Ref without ItemID matches nothing.
type Ref struct {
	ItemID   string
	Revision int64
}

func (r Ref) matches(kind activity.Kind, e Entry) bool {
	if r.ItemID == "" || e.Kind != kind || e.ref.ItemID != r.ItemID {
		return false
	}
	return r.Revision == 0 || e.ref.Revision == r.Revision
}

// String renders the entry, e.g. "claimed: Milk by Dana".
func (e Entry) String() string {
	return activity.Describe(e.Kind, e.ItemName, e.Actor, e.Quantity)
}

// Projector merges locally echoed entries with the authoritative log.
// It is safe for concurrent use.
type Projector struct {
	mu            sync.Mutex
	window        int
	now           func() time.Time
	seq           uint64
	last          time.Time
	pending       []Entry
	authoritative []Entry
}

// NewProjector creates a projector showing window entries in Recent. A
// non-positive window falls back to DefaultWindow; a nil now uses time.Now.
func NewProjector(window int, now func() time.Time) *Projector {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Projector{window: window, now: now}
}

// Window returns the number of entries Recent yields.
func (p *Projector) Window() int {
	return p.window
}

// Echo appends an optimistic entry and returns its id for Confirm or
// Retract. Timestamps are forced strictly increasing so insertion order
// survives a coarse or skewed clock.
func (p *Projector) Echo(kind activity.Kind, itemName string, actor *string, quantity *int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	at := p.now()
	if !at.After(p.last) {
		at = p.last.Add(time.Nanosecond)
	}
	p.last = at
	p.seq++

	e := Entry{
		ID:         fmt.Sprintf("local-%d", p.seq),
		Kind:       kind,
		ItemName:   itemName,
		Actor:      cloneString(actor),
		Quantity:   cloneInt(quantity),
		At:         at,
		Optimistic: true,
		seq:        p.seq,
	}
	p.pending = append(p.pending, e)
	return e.ID
}

// Retract removes an optimistic entry whose intent was rolled back. It
// reports whether the entry was still present.
func (p *Projector) Retract(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, e := range p.pending {
		if e.ID == id {
			p.pending = slices.Delete(p.pending, i, i+1)
			return true
		}
	}
	return false
}

// Confirm marks an optimistic entry as accepted by the store. It stays
// visible until its authoritative copy is loaded: if a Reload already
// brought in the row ref points at, the entry is dropped right away.
func (p *Projector) Confirm(id string, ref Ref) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.pending {
		if p.pending[i].ID != id {
			continue
		}
		if p.covered(p.pending[i].Kind, ref) {
			p.pending = slices.Delete(p.pending, i, i+1)
			return
		}
		p.pending[i].confirmed = true
		p.pending[i].ref = ref
		return
	}
}

func (p *Projector) covered(kind activity.Kind, ref Ref) bool {
	return slices.ContainsFunc(p.authoritative, func(e Entry) bool { return ref.matches(kind, e) })
}

// Reload replaces the authoritative entries with a fresh fetch, given
// newest first. Confirmed optimistic entries are dropped since the log now
// carries them; unconfirmed ones remain.
func (p *Projector) Reload(entries []activity.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[int64]bool, len(entries))
	auth := make([]Entry, 0, len(entries))
	// Oldest first so later log entries get higher sequence numbers.
	for i := len(entries) - 1; i >= 0; i-- {
		src := entries[i]
		if seen[src.ID] {
			continue
		}
		seen[src.ID] = true
		p.seq++
		ref := Ref{Revision: src.Revision}
		if src.ItemID != nil {
			ref.ItemID = *src.ItemID
		}
		auth = append(auth, Entry{
			ID:       fmt.Sprintf("log-%d", src.ID),
			Kind:     src.Kind,
			ItemName: src.ItemName,
			Actor:    cloneString(src.Actor),
			Quantity: cloneInt(src.Quantity),
			At:       src.CreatedAt,
			seq:      p.seq,
			ref:      ref,
		})
		if src.CreatedAt.After(p.last) {
			p.last = src.CreatedAt
		}
	}
	p.authoritative = auth

	p.pending = slices.DeleteFunc(p.pending, func(e Entry) bool { return e.confirmed })
}

// All yields every entry newest first. Each iteration takes a fresh
// snapshot, so the sequence can be ranged over repeatedly.
func (p *Projector) All() iter.Seq[Entry] {
	return p.take(-1)
}

// Recent yields at most Window entries, newest first.
func (p *Projector) Recent() iter.Seq[Entry] {
	return p.take(p.window)
}

// Lines renders Recent as strings.
func (p *Projector) Lines() []string {
	var lines []string
	for e := range p.Recent() {
		lines = append(lines, e.String())
	}
	return lines
}

func (p *Projector) take(limit int) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i, e := range p.snapshot() {
			if limit >= 0 && i >= limit {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}

func (p *Projector) snapshot() []Entry {
	p.mu.Lock()
	merged := make([]Entry, 0, len(p.pending)+len(p.authoritative))
	merged = append(merged, p.authoritative...)
	merged = append(merged, p.pending...)
	p.mu.Unlock()

	slices.SortStableFunc(merged, func(a, b Entry) int {
		if c := b.At.Compare(a.At); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	return merged
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
