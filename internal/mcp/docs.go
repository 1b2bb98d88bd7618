package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sharedlist manages token-addressed shared shopping and potluck lists.

Every tool takes the list token from the share link. There are no accounts;
pass participant to attribute changes in the activity log.

Workflow:
1) get_list to read items, claims and the summary.
2) add_item / update_item / delete_item to change the list.
3) recent_activity to see who did what, newest first.

Docs:
- sharedlist://docs/index
- sharedlist://docs/claims
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sharedlist://docs/index",
		Name:        "docs_index",
		Title:       "sharedlist docs index",
		Description: "What the list tools do and how items are identified.",
		Content: `# sharedlist

A list is a container of items addressed by an opaque token. Anyone holding
the token can edit it.

## Items

- name: free text, never empty.
- quantity: at least 1.
- claimant: who is bringing the item. Empty means nobody yet.
- parent_id: set on split remainders (see claims doc).

## Lifecycle

Lists are active, completed or archived. Only active lists accept item
changes. update_list with status "active" reopens a completed list.
`,
	},
	{
		URI:         "sharedlist://docs/claims",
		Name:        "docs_claims",
		Title:       "Claims and split remainders",
		Description: "How quantity changes interact with claimed items.",
		Content: `# Claims and split remainders

Claiming an item means committing to bring all of it.

- Raising the quantity of an unclaimed item updates it directly.
- Lowering the quantity of any item updates it directly.
- Raising the quantity of a claimed item does not change what the claimant
  committed to. The item keeps its quantity and a new unclaimed item is
  created for the difference, with parent_id pointing at the original.
  update_item then reports outcome "updated_with_split".
- Remainders are never split further; a remainder of a remainder points at
  the same root.
- Deleting a root item keeps its remainders as ordinary items.

Set claimant to "" in update_item to unclaim.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
