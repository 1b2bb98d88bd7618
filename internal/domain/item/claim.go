package item

// QuantityEffect classifies how a quantity change must be applied.
type QuantityEffect int

const (
	// QuantityDirect updates the item in place.
	QuantityDirect QuantityEffect = iota
	// QuantitySplit leaves the claimed quantity alone and materialises the
	// increase as a new unclaimed remainder.
	QuantitySplit
)

// ApplyClaim returns a copy of it claimed by claimant. Claiming a claimed
// item reassigns it. Only a blank claimant is rejected.
func ApplyClaim(it Item, claimant string) (Item, error) {
	name := NormalizeName(claimant)
	if name == "" {
		return it, ErrInvalidClaimant
	}
	out := it.Clone()
	out.Claimant = &name
	return out, nil
}

// ApplyUnclaim returns a copy of it with no claimant. Unclaiming an
// unclaimed item returns an equal copy.
func ApplyUnclaim(it Item) Item {
	out := it.Clone()
	out.Claimant = nil
	return out
}

// ClassifyQuantityChange decides whether changing it to qty is a direct
// update or must spawn a split remainder. Only increases on claimed items
// split; decreasing what a claimant brings never needs a remainder.
func ClassifyQuantityChange(it Item, qty int) (QuantityEffect, error) {
	if qty < 1 {
		return QuantityDirect, ErrInvalidQuantity
	}
	if it.Claimed() && qty > it.Quantity {
		return QuantitySplit, nil
	}
	return QuantityDirect, nil
}

// RootID returns the id remainders of it must reference. Remainders never
// have children, so splitting a claimed remainder attaches the new
// remainder to the same root.
func RootID(it Item) string {
	if it.ParentID != nil {
		return *it.ParentID
	}
	return it.ID
}
