package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// frozenClock never advances, so ordering relies on the monotonic bump.
func frozenClock() time.Time { return base }

func ptr[T any](v T) *T { return &v }

func collect(p *Projector) []string {
	var out []string
	for e := range p.All() {
		out = append(out, e.String())
	}
	return out
}

func TestProjector_NewestFirstByInsertion(t *testing.T) {
	p := NewProjector(0, frozenClock)
	p.Echo(activity.KindAdded, "Milk", nil, nil)
	p.Echo(activity.KindClaimed, "Milk", ptr("Dana"), nil)

	require.Equal(t, []string{"claimed: Milk by Dana", "added: Milk"}, collect(p))
	require.Equal(t, DefaultWindow, p.Window())
}

func TestProjector_Retract(t *testing.T) {
	p := NewProjector(5, frozenClock)
	added := p.Echo(activity.KindAdded, "Milk", nil, nil)
	p.Echo(activity.KindAdded, "Bread", nil, nil)

	require.True(t, p.Retract(added))
	require.False(t, p.Retract(added), "second retract is a no-op")
	require.Equal(t, []string{"added: Bread"}, collect(p))
}

func TestProjector_ReloadDropsConfirmedKeepsPending(t *testing.T) {
	p := NewProjector(5, frozenClock)
	confirmed := p.Echo(activity.KindAdded, "Milk", nil, nil)
	p.Echo(activity.KindAdded, "Bread", nil, nil)
	p.Confirm(confirmed, Ref{ItemID: "i1", Revision: 1})

	p.Reload([]activity.Entry{
		{ID: 1, Kind: activity.KindAdded, ItemName: "Milk", CreatedAt: base.Add(time.Second)},
	})

	var optimistic, logged int
	for e := range p.All() {
		if e.Optimistic {
			optimistic++
		} else {
			logged++
		}
	}
	require.Equal(t, 1, optimistic)
	require.Equal(t, 1, logged)
}

func TestProjector_ConfirmAfterReloadDropsLoggedEntry(t *testing.T) {
	p := NewProjector(5, frozenClock)
	claimed := p.Echo(activity.KindClaimed, "Milk", ptr("Dana"), nil)
	renamed := p.Echo(activity.KindEdited, "Oat milk", nil, nil)

	// The log already carries the claim when the store's answer arrives.
	p.Reload([]activity.Entry{
		{ID: 1, ItemID: ptr("i1"), Kind: activity.KindClaimed, ItemName: "Milk", Actor: ptr("Dana"), CreatedAt: base, Revision: 4},
	})
	require.Equal(t, []string{"edited: Oat milk", "claimed: Milk by Dana", "claimed: Milk by Dana"}, collect(p))

	p.Confirm(claimed, Ref{ItemID: "i1", Revision: 4})
	require.Equal(t, []string{"edited: Oat milk", "claimed: Milk by Dana"}, collect(p))

	// Same item, other revision: not covered yet.
	p.Confirm(renamed, Ref{ItemID: "i1", Revision: 5})
	require.Equal(t, []string{"edited: Oat milk", "claimed: Milk by Dana"}, collect(p))
}

func TestProjector_ConfirmWithoutRefKeepsEntry(t *testing.T) {
	p := NewProjector(5, frozenClock)
	p.Reload([]activity.Entry{
		{ID: 1, ItemID: ptr("i1"), Kind: activity.KindUnclaimed, ItemName: "Milk", CreatedAt: base},
	})
	unclaimed := p.Echo(activity.KindUnclaimed, "Milk", nil, nil)

	p.Confirm(unclaimed, Ref{})
	require.Len(t, collect(p), 2)
}

func TestProjector_ReloadIsCompleteAndDeduplicated(t *testing.T) {
	p := NewProjector(5, frozenClock)
	entries := []activity.Entry{
		{ID: 2, Kind: activity.KindClaimed, ItemName: "Milk", Actor: ptr("Dana"), CreatedAt: base.Add(2 * time.Second)},
		{ID: 2, Kind: activity.KindClaimed, ItemName: "Milk", Actor: ptr("Dana"), CreatedAt: base.Add(2 * time.Second)},
		{ID: 1, Kind: activity.KindAdded, ItemName: "Milk", CreatedAt: base.Add(time.Second)},
	}
	p.Reload(entries)
	p.Reload(entries)

	require.Equal(t, []string{"claimed: Milk by Dana", "added: Milk"}, collect(p))
}

func TestProjector_EchoAfterReloadSortsAbove(t *testing.T) {
	p := NewProjector(5, frozenClock)
	// Server clock ahead of the local one.
	p.Reload([]activity.Entry{
		{ID: 1, Kind: activity.KindAdded, ItemName: "Milk", CreatedAt: base.Add(time.Hour)},
	})
	p.Echo(activity.KindRemoved, "Milk", nil, nil)

	require.Equal(t, []string{"removed: Milk", "added: Milk"}, collect(p))
}

func TestProjector_WindowAndRestartable(t *testing.T) {
	p := NewProjector(3, frozenClock)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		p.Echo(activity.KindAdded, name, nil, nil)
	}

	require.Equal(t, []string{"added: e", "added: d", "added: c"}, p.Lines())
	require.Equal(t, p.Lines(), p.Lines())
	require.Len(t, collect(p), 5)

	// Early break must not disturb the next iteration.
	for range p.Recent() {
		break
	}
	require.Len(t, p.Lines(), 3)
}

func TestProjector_Golden(t *testing.T) {
	p := NewProjector(10, frozenClock)
	p.Reload([]activity.Entry{
		{ID: 3, Kind: activity.KindEdited, ItemName: "Chips", Quantity: ptr(3), Actor: ptr("Sam"), CreatedAt: base.Add(-time.Minute)},
		{ID: 2, Kind: activity.KindClaimed, ItemName: "Chips", Actor: ptr("Dana"), CreatedAt: base.Add(-2 * time.Minute)},
		{ID: 1, Kind: activity.KindAdded, ItemName: "Chips", Actor: ptr("Sam"), CreatedAt: base.Add(-3 * time.Minute)},
	})
	p.Echo(activity.KindAdded, "Lemonade", nil, ptr(2))
	p.Echo(activity.KindUnclaimed, "Chips", nil, nil)
	retracted := p.Echo(activity.KindRemoved, "Napkins", nil, nil)
	p.Retract(retracted)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "feed", []byte(strings.Join(p.Lines(), "\n")+"\n"))
}
