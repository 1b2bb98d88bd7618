package list

import "time"

// Status represents the lifecycle status of a shared list
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// List is a shared list container addressed by an opaque capability token.
// Revision is a monotonic counter bumped on every item mutation.
type List struct {
	ID           string     `json:"id"`
	Token        string     `json:"token"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Status       Status     `json:"status"`
	Revision     int64      `json:"revision"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Active reports whether items on the list may still be mutated.
func (l List) Active() bool {
	return l.Status == StatusActive
}
