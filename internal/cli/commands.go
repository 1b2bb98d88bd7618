package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
)

func newCreateCommand(opts *RootOptions) *cobra.Command {
	var description, location, when string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new shared list and print its token",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := rpc.CreateListParams{
				Name:        strings.Join(args, " "),
				Description: description,
				Location:    location,
			}
			if when != "" {
				t, err := time.Parse(time.RFC3339, when)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --when", err)
				}
				params.ScheduledFor = &t
			}

			l, err := opts.client().CreateList(cmd.Context(), params)
			if err != nil {
				return WrapExitError(ExitCommandError, "create list", err)
			}
			return opts.output(cmd).Emit(l, func(w io.Writer) {
				fmt.Fprintf(w, "Created %q\ntoken: %s\n", l.Name, l.Token)
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "list description")
	cmd.Flags().StringVar(&location, "location", "", "where the list is for")
	cmd.Flags().StringVar(&when, "when", "", "scheduled time (RFC3339)")

	return cmd
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <token>",
		Short: "Show a list, its items and recent activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, opts, args[0], nil)
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <token> <name>...",
		Short: "Add one item per name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, opts, args[0], func(s *session) error {
				for _, name := range args[1:] {
					if _, err := s.engine.AddItem(name); err != nil {
						return fmt.Errorf("add %q: %w", name, err)
					}
				}
				return nil
			})
		},
	}
}

func newRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <token> <item> <new name>",
		Short: "Rename an item",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, opts, args[0], func(s *session) error {
				id, err := resolveItem(s.engine.Items(), args[1])
				if err != nil {
					return err
				}
				return s.engine.RenameItem(id, strings.Join(args[2:], " "))
			})
		},
	}
}

func newQtyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <token> <item> <quantity>",
		Short: "Change how many of an item are needed",
		Long: `Change how many of an item are needed.

Raising the quantity of a claimed item leaves the claim as it is and adds
the difference as a new unclaimed item.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid quantity", err)
			}
			return runIntent(cmd, opts, args[0], func(s *session) error {
				id, err := resolveItem(s.engine.Items(), args[1])
				if err != nil {
					return err
				}
				return s.engine.ChangeQuantity(id, qty)
			})
		},
	}
}

func newClaimCommand(opts *RootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "claim <token> <item>",
		Short: "Claim an item (defaults to --participant)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimant := as
			if claimant == "" {
				claimant = opts.Participant
			}
			return runIntent(cmd, opts, args[0], func(s *session) error {
				id, err := resolveItem(s.engine.Items(), args[1])
				if err != nil {
					return err
				}
				return s.engine.Claim(id, claimant)
			})
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "claim on behalf of this name")

	return cmd
}

func newUnclaimCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unclaim <token> <item>",
		Short: "Release a claimed item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, opts, args[0], func(s *session) error {
				id, err := resolveItem(s.engine.Items(), args[1])
				if err != nil {
					return err
				}
				return s.engine.Unclaim(id)
			})
		},
	}
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	var undoAfter time.Duration

	cmd := &cobra.Command{
		Use:   "remove <token> <item>",
		Short: "Remove an item after the grace period",
		Long: `Remove an item after the grace period.

With --undo-after the removal is cancelled again after that long, which
only succeeds while the grace period is still running.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, opts, args[0], func(s *session) error {
				id, err := resolveItem(s.engine.Items(), args[1])
				if err != nil {
					return err
				}
				if err := s.engine.RemoveItem(id); err != nil {
					return err
				}
				if undoAfter <= 0 {
					return nil
				}

				timer := time.NewTimer(undoAfter)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
				if s.engine.UndoRemove(id) {
					opts.logger.Info("removal undone", "item", id)
				} else {
					opts.logger.Warn("too late to undo, removal already sent", "item", id)
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&undoAfter, "undo-after", 0, "undo the removal after this long")

	return cmd
}

func newActivityCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "activity <token>",
		Short: "Page through a list's activity log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.client().List(args[0]).Activity(cmd.Context(), rpc.RecentActivityParams{
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "fetch activity", err)
			}
			return opts.output(cmd).Emit(entries, func(w io.Writer) { renderActivity(w, entries) })
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")

	return cmd
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "status <token> <active|completed|archived>",
		Short:     "Move a list through its lifecycle",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(list.StatusActive), string(list.StatusCompleted), string(list.StatusArchived)},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := list.Status(args[1])
			l, err := opts.client().List(args[0]).UpdateList(cmd.Context(), rpc.UpdateListParams{Status: &status})
			if err != nil {
				return WrapExitError(ExitCommandError, "update list", err)
			}
			return opts.output(cmd).Emit(l, func(w io.Writer) {
				fmt.Fprintf(w, "%s is now %s\n", l.Name, l.Status)
			})
		},
	}
}
