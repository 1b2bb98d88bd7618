package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
)

// ListService defines list operations needed by the RPC surface.
type ListService interface {
	Create(ctx context.Context, req list.CreateRequest) (*list.List, error)
	Get(ctx context.Context, id string) (*list.List, error)
	Update(ctx context.Context, id string, req list.UpdateRequest) (*list.List, error)
}

// ItemService defines item operations needed by the RPC surface.
type ItemService interface {
	Create(ctx context.Context, req item.CreateRequest) (*item.Item, error)
	Update(ctx context.Context, req item.UpdateRequest) (*item.UpdateResult, error)
	Delete(ctx context.Context, req item.DeleteRequest) error
	List(ctx context.Context, listID string) ([]item.Item, error)
}

// ActivityService defines activity operations needed by the RPC surface.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Handler dispatches store RPC methods to domain services.
type Handler struct {
	lists    ListService
	items    ItemService
	activity ActivityService
}

// NewHandler creates a new RPC handler.
func NewHandler(lists ListService, items ItemService, activitySvc ActivityService) *Handler {
	return &Handler{
		lists:    lists,
		items:    items,
		activity: activitySvc,
	}
}

// CreateList handles create_list, the only method not scoped to a token.
func (h *Handler) CreateList(ctx context.Context, params json.RawMessage) (*list.List, error) {
	var req CreateListParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	l, err := h.lists.Create(ctx, list.CreateRequest{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// Handle dispatches a method against the list the request's token resolved
// to. actor is the participant display name, possibly empty.
func (h *Handler) Handle(ctx context.Context, l *list.List, actor, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodFetchList:
		return h.fetchList(ctx, l.ID)
	case MethodCreateItem:
		var req CreateItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		it, err := h.items.Create(ctx, item.CreateRequest{
			ListID:   l.ID,
			Name:     req.Name,
			Quantity: req.Quantity,
			Actor:    actor,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return it, nil
	case MethodUpdateItem:
		var req UpdateItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		result, err := h.items.Update(ctx, item.UpdateRequest{
			ListID:   l.ID,
			ID:       req.ID,
			Name:     req.Name,
			Quantity: req.Quantity,
			Claimant: req.Claimant,
			Actor:    actor,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return result, nil
	case MethodDeleteItem:
		var req DeleteItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.items.Delete(ctx, item.DeleteRequest{ListID: l.ID, ID: req.ID, Actor: actor}); err != nil {
			return nil, mapError(err)
		}
		return DeleteItemResponse{Deleted: true, ID: req.ID}, nil
	case MethodRecentActivity:
		var req RecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListOptions{
			ListID: l.ID,
			ItemID: req.ItemID,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []activity.Entry{}
		}
		return RecentActivityResponse{Entries: entries}, nil
	case MethodUpdateList:
		var req UpdateListParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		updated, err := h.lists.Update(ctx, l.ID, list.UpdateRequest{
			Name:         req.Name,
			Description:  req.Description,
			Location:     req.Location,
			ScheduledFor: req.ScheduledFor,
			Status:       req.Status,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return updated, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
}

func (h *Handler) fetchList(ctx context.Context, listID string) (*FetchListResponse, error) {
	// Reload so the revision matches the items read below.
	l, err := h.lists.Get(ctx, listID)
	if err != nil {
		return nil, mapError(err)
	}
	items, err := h.items.List(ctx, listID)
	if err != nil {
		return nil, mapError(err)
	}
	if items == nil {
		items = []item.Item{}
	}
	return &FetchListResponse{
		List:    *l,
		Items:   items,
		Summary: item.Summarize(items),
	}, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
