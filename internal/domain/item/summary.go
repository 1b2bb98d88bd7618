package item

// Summary aggregates a list's items. Split remainders are excluded from
// the main counts and reported separately.
type Summary struct {
	Items             int `json:"items"`
	Claimed           int `json:"claimed"`
	Unclaimed         int `json:"unclaimed"`
	Remainders        int `json:"remainders"`
	RemainderQuantity int `json:"remainder_quantity"`
}

// Summarize computes the aggregate counts for items.
func Summarize(items []Item) Summary {
	var s Summary
	for _, it := range items {
		if it.IsRemainder() {
			s.Remainders++
			s.RemainderQuantity += it.Quantity
			continue
		}
		s.Items++
		if it.Claimed() {
			s.Claimed++
		} else {
			s.Unclaimed++
		}
	}
	return s
}

// RemaindersOf returns the split remainders attributed to parentID, in the
// order they appear in items.
func RemaindersOf(items []Item, parentID string) []Item {
	var out []Item
	for _, it := range items {
		if it.ParentID != nil && *it.ParentID == parentID {
			out = append(out, it)
		}
	}
	return out
}
