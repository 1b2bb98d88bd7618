package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetListInput selects a list.
type GetListInput struct {
	Token string `json:"token" jsonschema:"list token from the share link"`
}

// AddItemInput adds an item to a list.
type AddItemInput struct {
	Token       string `json:"token" jsonschema:"list token from the share link"`
	Participant string `json:"participant,omitempty" jsonschema:"display name recorded in the activity log"`
	Name        string `json:"name" jsonschema:"item name"`
	Quantity    int    `json:"quantity,omitempty" jsonschema:"quantity, defaults to 1"`
}

// UpdateItemInput changes an item's name, quantity or claimant.
type UpdateItemInput struct {
	Token       string  `json:"token" jsonschema:"list token from the share link"`
	Participant string  `json:"participant,omitempty" jsonschema:"display name recorded in the activity log"`
	ID          string  `json:"id" jsonschema:"item id"`
	Name        *string `json:"name,omitempty" jsonschema:"new item name"`
	Quantity    *int    `json:"quantity,omitempty" jsonschema:"new quantity; raising a claimed item creates an unclaimed remainder"`
	Claimant    *string `json:"claimant,omitempty" jsonschema:"who brings the item; empty string unclaims"`
}

// DeleteItemInput removes an item.
type DeleteItemInput struct {
	Token       string `json:"token" jsonschema:"list token from the share link"`
	Participant string `json:"participant,omitempty" jsonschema:"display name recorded in the activity log"`
	ID          string `json:"id" jsonschema:"item id"`
}

// RecentActivityInput pages through a list's activity log.
type RecentActivityInput struct {
	Token  string  `json:"token" jsonschema:"list token from the share link"`
	ItemID *string `json:"item_id,omitempty" jsonschema:"only entries for this item"`
	Limit  int     `json:"limit,omitempty" jsonschema:"maximum entries, default 50"`
	Offset int     `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type tools struct {
	lists      ListResolver
	dispatcher Dispatcher
}

func registerTools(server *sdkmcp.Server, t *tools) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_list",
		Description: "Read a list with its items, claims and summary counts",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetListInput) (*sdkmcp.CallToolResult, any, error) {
		return t.call(ctx, in.Token, "", rpc.MethodFetchList, nil)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_item",
		Description: "Add an item to the end of a list",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddItemInput) (*sdkmcp.CallToolResult, any, error) {
		return t.call(ctx, in.Token, in.Participant, rpc.MethodCreateItem, rpc.CreateItemParams{
			Name:     in.Name,
			Quantity: in.Quantity,
		})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_item",
		Description: "Rename an item, change its quantity, or claim/unclaim it",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateItemInput) (*sdkmcp.CallToolResult, any, error) {
		return t.call(ctx, in.Token, in.Participant, rpc.MethodUpdateItem, rpc.UpdateItemParams{
			ID:       in.ID,
			Name:     in.Name,
			Quantity: in.Quantity,
			Claimant: in.Claimant,
		})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_item",
		Description: "Remove an item from a list",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteItemInput) (*sdkmcp.CallToolResult, any, error) {
		return t.call(ctx, in.Token, in.Participant, rpc.MethodDeleteItem, rpc.DeleteItemParams{ID: in.ID})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "List recent changes to a list, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityInput) (*sdkmcp.CallToolResult, any, error) {
		return t.call(ctx, in.Token, "", rpc.MethodRecentActivity, rpc.RecentActivityParams{
			ItemID: in.ItemID,
			Limit:  in.Limit,
			Offset: in.Offset,
		})
	})
}

func (t *tools) call(ctx context.Context, token, participant, method string, params any) (*sdkmcp.CallToolResult, any, error) {
	l, err := t.lists.Resolve(ctx, token)
	if err != nil {
		return nil, nil, toolError(err)
	}

	var raw json.RawMessage
	if params != nil {
		raw, err = json.Marshal(params)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding params: %w", err)
		}
	}

	if participant == "" {
		participant = getParticipant(ctx)
	}
	out, err := t.dispatcher.Handle(ctx, l, participant, method, raw)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, out, nil
}

func toolError(err error) error {
	if apiErr := rpc.MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

var _ ListResolver = (*list.Service)(nil)
