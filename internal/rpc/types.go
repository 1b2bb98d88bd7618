package rpc

import (
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
)

// Method names served on /lists/{token}/rpc.
const (
	MethodFetchList      = "fetch_list"
	MethodCreateItem     = "create_item"
	MethodUpdateItem     = "update_item"
	MethodDeleteItem     = "delete_item"
	MethodRecentActivity = "recent_activity"
	MethodUpdateList     = "update_list"
)

// MethodCreateList is the only method served on /lists.
const MethodCreateList = "create_list"

// CreateListParams creates a new list.
type CreateListParams struct {
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// UpdateListParams edits list metadata or moves it through its lifecycle.
type UpdateListParams struct {
	Name         *string      `json:"name,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Location     *string      `json:"location,omitempty"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`
	Status       *list.Status `json:"status,omitempty"`
}

// FetchListResponse is the full authoritative state of a list.
type FetchListResponse struct {
	List    list.List    `json:"list"`
	Items   []item.Item  `json:"items"`
	Summary item.Summary `json:"summary"`
}

// CreateItemParams adds an item.
type CreateItemParams struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
}

// UpdateItemParams is a partial item update. Claimant set to "" unclaims.
type UpdateItemParams struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Claimant *string `json:"claimant,omitempty"`
}

// DeleteItemParams removes an item.
type DeleteItemParams struct {
	ID string `json:"id"`
}

// DeleteItemResponse acknowledges a deletion.
type DeleteItemResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// RecentActivityParams pages through the activity log, newest first.
type RecentActivityParams struct {
	ItemID *string `json:"item_id,omitempty"`
	Limit  int     `json:"limit,omitempty"`
	Offset int     `json:"offset,omitempty"`
}

// RecentActivityResponse carries entries newest first.
type RecentActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
}
