package item_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/repository"
	"github.com/ganot/sharedlist/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	items      *mocks.ItemRepository
	lists      *mocks.ListRepository
	activities *mocks.ActivityRepository
	txErrs     []error
	svc        *item.Service
}

func newFixture(status list.Status) *fixture {
	f := &fixture{
		items:      &mocks.ItemRepository{},
		lists:      &mocks.ListRepository{},
		activities: &mocks.ActivityRepository{},
	}
	f.lists.On("Get", mock.Anything, "l1").Return(&list.List{ID: "l1", Status: status}, nil)
	f.lists.On("IncrementRevision", mock.Anything, "l1").Return(int64(7), nil)
	f.activities.On("Log", mock.Anything, mock.Anything).Return(nil)
	tx := item.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		err := fn(ctx)
		f.txErrs = append(f.txErrs, err)
		return err
	})
	f.svc = item.NewService(f.items, f.lists, f.activities, tx, nil)
	return f
}

func loggedKinds(m *mocks.ActivityRepository) []activity.Kind {
	var kinds []activity.Kind
	for _, call := range m.Calls {
		if call.Method == "Log" {
			kinds = append(kinds, call.Arguments.Get(1).(*activity.Entry).Kind)
		}
	}
	return kinds
}

func TestItemService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("NextPosition", ctx, "l1").Return(3, nil)
	f.items.On("Create", ctx, mock.Anything).Return(nil)

	it, err := f.svc.Create(ctx, item.CreateRequest{ListID: "l1", Name: " Milk ", Actor: "Dana"})
	require.NoError(t, err)
	require.NotEmpty(t, it.ID)
	require.Equal(t, "Milk", it.Name)
	require.Equal(t, 1, it.Quantity)
	require.Equal(t, 3, it.Position)
	require.Equal(t, int64(7), it.Revision)
	require.Equal(t, []activity.Kind{activity.KindAdded}, loggedKinds(f.activities))
}

func TestItemService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)

	_, err := f.svc.Create(ctx, item.CreateRequest{ListID: "l1", Name: "   "})
	require.ErrorIs(t, err, item.ErrInvalidName)

	_, err = f.svc.Create(ctx, item.CreateRequest{ListID: "l1", Name: "Milk", Quantity: -2})
	require.ErrorIs(t, err, item.ErrInvalidQuantity)
}

func TestItemService_CreateOnArchivedList(t *testing.T) {
	f := newFixture(list.StatusArchived)
	_, err := f.svc.Create(context.Background(), item.CreateRequest{ListID: "l1", Name: "Milk"})
	require.ErrorIs(t, err, list.ErrListNotActive)
}

func TestItemService_Update_ClaimedIncreaseSplits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i1").Return(&item.Item{ID: "i1", ListID: "l1", Name: "Milk", Quantity: 1, Claimant: strPtr("Dana")}, nil)
	f.items.On("Update", ctx, mock.MatchedBy(func(it *item.Item) bool { return it.ID == "i1" && it.Quantity == 1 })).Return(nil)
	f.items.On("NextPosition", ctx, "l1").Return(2, nil)
	f.items.On("Create", ctx, mock.MatchedBy(func(it *item.Item) bool {
		return it.Quantity == 2 && it.ParentID != nil && *it.ParentID == "i1" && it.Claimant == nil
	})).Return(nil)

	three := 3
	res, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i1", Quantity: &three})
	require.NoError(t, err)
	require.True(t, res.Split())
	require.Equal(t, 2, res.Delta)
	require.Equal(t, 1, res.Item.Quantity)
	require.Equal(t, "Dana", *res.Item.Claimant)
	require.NotNil(t, res.Remainder)
	require.Equal(t, "Milk", res.Remainder.Name)
	f.items.AssertExpectations(t)
	require.Equal(t, []activity.Kind{activity.KindAdded}, loggedKinds(f.activities))
}

func TestItemService_Update_SplitFailureAbortsTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i1").Return(&item.Item{ID: "i1", ListID: "l1", Name: "Milk", Quantity: 1, Claimant: strPtr("Dana")}, nil)
	f.items.On("Update", ctx, mock.Anything).Return(nil)
	f.items.On("NextPosition", ctx, "l1").Return(2, nil)
	f.items.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	three := 3
	res, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i1", Quantity: &three})
	require.Error(t, err)
	require.Nil(t, res)

	// the revision bump and the item write ran in the same transaction
	// that saw the failure
	require.Len(t, f.txErrs, 1)
	require.Error(t, f.txErrs[0])
	f.lists.AssertCalled(t, "IncrementRevision", ctx, "l1")
	f.items.AssertCalled(t, "Update", ctx, mock.Anything)
}

func TestItemService_Update_ClaimedRemainderSplitsToRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i2").Return(&item.Item{ID: "i2", ListID: "l1", Name: "Milk", Quantity: 2, ParentID: strPtr("i1"), Claimant: strPtr("Sam")}, nil)
	f.items.On("Update", ctx, mock.Anything).Return(nil)
	f.items.On("NextPosition", ctx, "l1").Return(4, nil)
	f.items.On("Create", ctx, mock.MatchedBy(func(it *item.Item) bool {
		return it.ParentID != nil && *it.ParentID == "i1"
	})).Return(nil)

	five := 5
	res, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i2", Quantity: &five})
	require.NoError(t, err)
	require.True(t, res.Split())
	require.Equal(t, 3, res.Delta)
}

func TestItemService_Update_ClaimedDecreaseIsDirect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i1").Return(&item.Item{ID: "i1", ListID: "l1", Name: "Milk", Quantity: 3, Claimant: strPtr("Dana")}, nil)
	f.items.On("Update", ctx, mock.MatchedBy(func(it *item.Item) bool { return it.Quantity == 1 })).Return(nil)

	one := 1
	res, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i1", Quantity: &one})
	require.NoError(t, err)
	require.False(t, res.Split())
	require.Nil(t, res.Remainder)
	require.Equal(t, 1, res.Item.Quantity)
	f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestItemService_Update_ClaimAndUnclaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i1").Return(&item.Item{ID: "i1", ListID: "l1", Name: "Milk", Quantity: 1}, nil).Once()
	f.items.On("Update", ctx, mock.Anything).Return(nil)

	res, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i1", Claimant: strPtr("Dana")})
	require.NoError(t, err)
	require.Equal(t, "Dana", *res.Item.Claimant)

	f.items.On("Get", ctx, "l1", "i1").Return(&res.Item, nil).Once()
	res, err = f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "i1", Claimant: strPtr("")})
	require.NoError(t, err)
	require.False(t, res.Item.Claimed())

	require.Equal(t, []activity.Kind{activity.KindClaimed, activity.KindUnclaimed}, loggedKinds(f.activities))
	claimEntry := f.activities.Calls[0].Arguments.Get(1).(*activity.Entry)
	require.Equal(t, "Dana", *claimEntry.Actor)
}

func TestItemService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "missing").Return((*item.Item)(nil), repository.ErrNotFound)

	name := "Bread"
	_, err := f.svc.Update(ctx, item.UpdateRequest{ListID: "l1", ID: "missing", Name: &name})
	require.ErrorIs(t, err, item.ErrItemNotFound)
}

func TestItemService_Update_RequiresAField(t *testing.T) {
	f := newFixture(list.StatusActive)
	_, err := f.svc.Update(context.Background(), item.UpdateRequest{ListID: "l1", ID: "i1"})
	require.ErrorIs(t, err, item.ErrInvalidInput)
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(list.StatusActive)
	f.items.On("Get", ctx, "l1", "i1").Return(&item.Item{ID: "i1", ListID: "l1", Name: "Milk", Quantity: 1}, nil)
	f.items.On("Delete", ctx, "l1", "i1").Return(nil)

	require.NoError(t, f.svc.Delete(ctx, item.DeleteRequest{ListID: "l1", ID: "i1", Actor: "Dana"}))
	require.Equal(t, []activity.Kind{activity.KindRemoved}, loggedKinds(f.activities))
}
