package item

import "time"

// Item is a single purchasable entry on a shared list. An item with a
// ParentID is a split remainder attributed to that parent.
type Item struct {
	ID         string    `json:"id"`
	ListID     string    `json:"list_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Position   int       `json:"position"`
	Claimant   *string   `json:"claimant,omitempty"`
	ParentID   *string   `json:"parent_id,omitempty"`
	Revision   int64     `json:"revision"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Claimed reports whether a participant has taken the item.
func (it Item) Claimed() bool {
	return it.Claimant != nil
}

// IsRemainder reports whether the item was carved off a claimed parent.
func (it Item) IsRemainder() bool {
	return it.ParentID != nil
}

// Clone returns a copy that shares no pointers with it.
func (it Item) Clone() Item {
	out := it
	if it.Claimant != nil {
		claimant := *it.Claimant
		out.Claimant = &claimant
	}
	if it.ParentID != nil {
		parent := *it.ParentID
		out.ParentID = &parent
	}
	return out
}

// Outcome tags how the store applied an update.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeSplit   Outcome = "updated_with_split"
)

// UpdateResult is the store's tagged response to an update. When Outcome is
// OutcomeSplit, Item carries the untouched claimed quantity and Remainder
// holds the new unclaimed sibling for Delta units.
type UpdateResult struct {
	Outcome   Outcome `json:"outcome"`
	Item      Item    `json:"item"`
	Remainder *Item   `json:"remainder,omitempty"`
	Delta     int     `json:"delta,omitempty"`
}

// Split reports whether the update materialised a split remainder.
func (r UpdateResult) Split() bool {
	return r.Outcome == OutcomeSplit
}
