package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ListID string
	ItemID *string
	Kind   *Kind
	Limit  int
	Offset int
}
