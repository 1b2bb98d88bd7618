package activity

import (
	"fmt"
	"time"
)

// Kind represents the item-level action an entry records
type Kind string

const (
	KindAdded     Kind = "added"
	KindRemoved   Kind = "removed"
	KindClaimed   Kind = "claimed"
	KindUnclaimed Kind = "unclaimed"
	KindEdited    Kind = "edited"
)

// Valid reports whether k is a known activity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAdded, KindRemoved, KindClaimed, KindUnclaimed, KindEdited:
		return true
	}
	return false
}

// Entry represents an immutable fact in a list's activity log
type Entry struct {
	ID        int64     `json:"id"`
	ListID    string    `json:"list_id"`
	ItemID    *string   `json:"item_id,omitempty"`
	Kind      Kind      `json:"kind"`
	ItemName  string    `json:"item_name"`
	Actor     *string   `json:"actor,omitempty"`
	Quantity  *int      `json:"quantity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Revision  int64     `json:"revision"`
}

// String renders the entry the way the feed displays it, e.g.
// "claimed: Milk by Dana" or "edited: Milk (3)".
func (e Entry) String() string {
	return Describe(e.Kind, e.ItemName, e.Actor, e.Quantity)
}

// Describe renders an activity line from its parts.
func Describe(kind Kind, itemName string, actor *string, quantity *int) string {
	line := fmt.Sprintf("%s: %s", kind, itemName)
	if quantity != nil {
		line += fmt.Sprintf(" (%d)", *quantity)
	}
	if actor != nil && *actor != "" {
		line += " by " + *actor
	}
	return line
}
