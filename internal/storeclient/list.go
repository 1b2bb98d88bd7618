package storeclient

import (
	"context"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/engine"
	"github.com/ganot/sharedlist/internal/rpc"
)

// ListStore is the item store for one list token.
type ListStore struct {
	client *Client
	token  string
}

var _ engine.Store = (*ListStore)(nil)

// Token returns the list token the store is bound to.
func (s *ListStore) Token() string {
	return s.token
}

func (s *ListStore) call(ctx context.Context, method string, params, out any) error {
	return s.client.call(ctx, s.client.baseURL+"/lists/"+s.token+"/rpc", method, params, out)
}

// Fetch returns the full list state including its summary.
func (s *ListStore) Fetch(ctx context.Context) (*rpc.FetchListResponse, error) {
	var out rpc.FetchListResponse
	if err := s.call(ctx, rpc.MethodFetchList, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchList implements engine.Store.
func (s *ListStore) FetchList(ctx context.Context) (*engine.Snapshot, error) {
	res, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &engine.Snapshot{List: res.List, Items: res.Items}, nil
}

// FetchActivity returns up to limit entries, newest first.
func (s *ListStore) FetchActivity(ctx context.Context, limit int) ([]activity.Entry, error) {
	return s.Activity(ctx, rpc.RecentActivityParams{Limit: limit})
}

// Activity pages through the activity log.
func (s *ListStore) Activity(ctx context.Context, params rpc.RecentActivityParams) ([]activity.Entry, error) {
	var out rpc.RecentActivityResponse
	if err := s.call(ctx, rpc.MethodRecentActivity, params, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// CreateItem implements engine.Store.
func (s *ListStore) CreateItem(ctx context.Context, name string, quantity int) (*item.Item, error) {
	var out item.Item
	if err := s.call(ctx, rpc.MethodCreateItem, rpc.CreateItemParams{Name: name, Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem implements engine.Store.
func (s *ListStore) UpdateItem(ctx context.Context, id string, patch engine.Patch) (*item.UpdateResult, error) {
	params := rpc.UpdateItemParams{
		ID:       id,
		Name:     patch.Name,
		Quantity: patch.Quantity,
		Claimant: patch.Claimant,
	}
	var out item.UpdateResult
	if err := s.call(ctx, rpc.MethodUpdateItem, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem implements engine.Store.
func (s *ListStore) DeleteItem(ctx context.Context, id string) error {
	return s.call(ctx, rpc.MethodDeleteItem, rpc.DeleteItemParams{ID: id}, nil)
}

// UpdateList edits list metadata or status.
func (s *ListStore) UpdateList(ctx context.Context, params rpc.UpdateListParams) (*list.List, error) {
	var out list.List
	if err := s.call(ctx, rpc.MethodUpdateList, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
