package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/repository"
	"github.com/stretchr/testify/require"
)

func newItem(id, listID, name string, qty, pos int) *item.Item {
	now := time.Now()
	return &item.Item{
		ID:         id,
		ListID:     listID,
		Name:       name,
		Quantity:   qty,
		Position:   pos,
		Revision:   1,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func TestItemRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertList(t, db, "l1")
	repo := NewItemRepository(db)

	require.NoError(t, repo.Create(ctx, newItem("i1", "l1", "Milk", 1, 0)))

	got, err := repo.Get(ctx, "l1", "i1")
	require.NoError(t, err)
	require.Equal(t, "Milk", got.Name)
	require.Nil(t, got.Claimant)
	require.Nil(t, got.ParentID)

	dana := "Dana"
	got.Claimant = &dana
	got.Quantity = 2
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, "l1", "i1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Quantity)
	require.NotNil(t, got.Claimant)
	require.Equal(t, "Dana", *got.Claimant)

	_, err = repo.Get(ctx, "other", "i1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "l1", "i1"))
	require.ErrorIs(t, repo.Delete(ctx, "l1", "i1"), repository.ErrNotFound)
}

func TestItemRepository_CreateUnknownList(t *testing.T) {
	db := NewTestDB(t)
	err := NewItemRepository(db).Create(context.Background(), newItem("i1", "missing", "Milk", 1, 0))
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestItemRepository_ListOrderAndNextPosition(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertList(t, db, "l1")
	repo := NewItemRepository(db)

	pos, err := repo.NextPosition(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, 0, pos)

	require.NoError(t, repo.Create(ctx, newItem("b", "l1", "Bread", 1, 1)))
	require.NoError(t, repo.Create(ctx, newItem("a", "l1", "Apples", 3, 0)))

	pos, err = repo.NextPosition(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	items, err := repo.List(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, "b", items[1].ID)
}

func TestItemRepository_DeleteRootPromotesRemainders(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertList(t, db, "l1")
	repo := NewItemRepository(db)

	require.NoError(t, repo.Create(ctx, newItem("root", "l1", "Milk", 1, 0)))
	rem := newItem("rem", "l1", "Milk", 2, 1)
	parent := "root"
	rem.ParentID = &parent
	require.NoError(t, repo.Create(ctx, rem))

	require.NoError(t, repo.Delete(ctx, "l1", "root"))

	got, err := repo.Get(ctx, "l1", "rem")
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
	require.Equal(t, 2, got.Quantity)
}
