package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/feed"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The store rejected a change and it was rolled back
	ExitCommandError = 2 // Bad arguments, unknown list or item, unreachable server
)

// ExitError carries the exit code a command failed with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope written in json format.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Output writes command results as text or JSON.
type Output struct {
	Format string
	Writer io.Writer
}

// Emit writes data. In text format render produces the output instead.
func (o Output) Emit(data any, render func(io.Writer)) error {
	if o.Format == "json" {
		return json.NewEncoder(o.Writer).Encode(Response{Status: "ok", Data: data})
	}
	render(o.Writer)
	return nil
}

// ListView is everything a participant sees of a list.
type ListView struct {
	List            list.List    `json:"list"`
	Items           []item.Item  `json:"items"`
	Summary         item.Summary `json:"summary"`
	Feed            []feed.Entry `json:"feed"`
	PendingRemovals []string     `json:"pending_removals,omitempty"`
}

func renderList(w io.Writer, v ListView) {
	fmt.Fprintf(w, "%s (%s)\n", v.List.Name, v.List.Status)
	if v.List.Location != "" {
		fmt.Fprintf(w, "  at %s\n", v.List.Location)
	}
	if v.List.ScheduledFor != nil {
		fmt.Fprintf(w, "  on %s\n", v.List.ScheduledFor.Format("Mon Jan 2 15:04"))
	}

	names := make(map[string]string, len(v.Items))
	for _, it := range v.Items {
		names[it.ID] = it.Name
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "  (no items)")
	}
	for _, it := range v.Items {
		fmt.Fprintf(w, "  %s\n", itemLine(it, names))
	}

	s := v.Summary
	line := fmt.Sprintf("items: %d  claimed: %d  unclaimed: %d", s.Items, s.Claimed, s.Unclaimed)
	if s.Remainders > 0 {
		line += fmt.Sprintf("  remainders: %d (%d units)", s.Remainders, s.RemainderQuantity)
	}
	fmt.Fprintln(w, line)

	if len(v.PendingRemovals) > 0 {
		fmt.Fprintf(w, "pending removal: %s\n", strings.Join(v.PendingRemovals, ", "))
	}
	if len(v.Feed) > 0 {
		fmt.Fprintln(w, "\nactivity:")
		for _, e := range v.Feed {
			fmt.Fprintf(w, "  %s\n", e.String())
		}
	}
}

func itemLine(it item.Item, names map[string]string) string {
	mark := "[ ]"
	if it.Claimed() {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s x%d", mark, it.Name, it.Quantity)
	if it.Claimed() {
		line += " - " + *it.Claimant
	}
	if it.ParentID != nil {
		if parent, ok := names[*it.ParentID]; ok {
			line += fmt.Sprintf(" (split from %s)", parent)
		} else {
			line += " (split)"
		}
	}
	return line + "  " + it.ID
}

func renderActivity(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no activity yet")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", e.CreatedAt.Local().Format("Jan 2 15:04:05"), e.String())
	}
}
