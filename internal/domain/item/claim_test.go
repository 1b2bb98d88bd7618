package item_test

import (
	"testing"

	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestApplyClaim(t *testing.T) {
	it := item.Item{ID: "i1", Name: "Milk", Quantity: 1}

	claimed, err := item.ApplyClaim(it, "  Dana ")
	require.NoError(t, err)
	require.Equal(t, "Dana", *claimed.Claimant)
	require.Nil(t, it.Claimant, "original must not be mutated")

	_, err = item.ApplyClaim(it, "   ")
	require.ErrorIs(t, err, item.ErrInvalidClaimant)

	unclaimed := item.ApplyUnclaim(claimed)
	require.False(t, unclaimed.Claimed())
	require.True(t, claimed.Claimed())

	require.Equal(t, unclaimed, item.ApplyUnclaim(unclaimed))
}

func TestApplyClaim_Reassigns(t *testing.T) {
	it := item.Item{ID: "i1", Name: "Milk", Quantity: 2, Claimant: strPtr("Dana")}

	claimed, err := item.ApplyClaim(it, "Sam")
	require.NoError(t, err)
	require.Equal(t, "Sam", *claimed.Claimant)
	require.Equal(t, "Dana", *it.Claimant)
	require.Equal(t, 2, claimed.Quantity)
}

func TestClassifyQuantityChange(t *testing.T) {
	unclaimed := item.Item{ID: "i1", Quantity: 2}
	claimed := item.Item{ID: "i1", Quantity: 2, Claimant: strPtr("Dana")}

	cases := []struct {
		name   string
		it     item.Item
		qty    int
		effect item.QuantityEffect
	}{
		{"unclaimed increase", unclaimed, 5, item.QuantityDirect},
		{"unclaimed decrease", unclaimed, 1, item.QuantityDirect},
		{"claimed increase splits", claimed, 3, item.QuantitySplit},
		{"claimed decrease is direct", claimed, 1, item.QuantityDirect},
		{"claimed unchanged is direct", claimed, 2, item.QuantityDirect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effect, err := item.ClassifyQuantityChange(tc.it, tc.qty)
			require.NoError(t, err)
			require.Equal(t, tc.effect, effect)
		})
	}

	_, err := item.ClassifyQuantityChange(unclaimed, 0)
	require.ErrorIs(t, err, item.ErrInvalidQuantity)
}

func TestRootID(t *testing.T) {
	require.Equal(t, "i1", item.RootID(item.Item{ID: "i1"}))
	require.Equal(t, "i1", item.RootID(item.Item{ID: "i2", ParentID: strPtr("i1")}))
}

func TestSummarize_ExcludesRemainders(t *testing.T) {
	items := []item.Item{
		{ID: "i1", Quantity: 1, Claimant: strPtr("Dana")},
		{ID: "i2", Quantity: 2, ParentID: strPtr("i1")},
		{ID: "i3", Quantity: 4},
	}

	s := item.Summarize(items)
	require.Equal(t, item.Summary{Items: 2, Claimed: 1, Unclaimed: 1, Remainders: 1, RemainderQuantity: 2}, s)

	rem := item.RemaindersOf(items, "i1")
	require.Len(t, rem, 1)
	require.Equal(t, "i2", rem[0].ID)
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "caf\u00e9", item.NormalizeName(" cafe\u0301 "))
	require.Equal(t, "", item.NormalizeName(" \t "))
}
