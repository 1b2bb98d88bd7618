package cli

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ganot/sharedlist/internal/engine"
	"github.com/ganot/sharedlist/internal/feed"
	"github.com/ganot/sharedlist/internal/storeclient"
)

// session is one engine run against a list.
type session struct {
	store  *storeclient.ListStore
	engine *engine.Engine

	mu       sync.Mutex
	failures []error
}

func openSession(ctx context.Context, opts *RootOptions, token string) (*session, error) {
	s := &session{store: opts.client().List(token)}
	s.engine = engine.New(s.store, engine.Options{
		Participant: opts.Participant,
		GracePeriod: opts.GracePeriod,
		FeedWindow:  opts.FeedWindow,
		Notifier:    engine.NotifierFunc(s.record),
		Logger:      opts.logger,
	})
	if err := s.engine.Refresh(ctx); err != nil {
		_ = s.engine.Close()
		return nil, WrapExitError(ExitCommandError, "load list", err)
	}
	return s, nil
}

func (s *session) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, err)
}

// settle waits for every request, re-reads the list and closes the engine.
// It reports the intents the store rolled back.
func (s *session) settle(ctx context.Context) error {
	s.engine.Wait()
	if err := s.engine.Refresh(ctx); err != nil {
		s.record(err)
	}
	if err := s.engine.Close(); err != nil {
		s.record(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return nil
	}
	return WrapExitError(ExitFailure, "change rolled back", errors.Join(s.failures...))
}

func (s *session) view() ListView {
	v := ListView{
		List:            s.engine.List(),
		Items:           s.engine.Items(),
		Summary:         s.engine.Summary(),
		Feed:            slices.Collect(s.engine.Feed()),
		PendingRemovals: s.engine.PendingRemovals(),
	}
	if v.Feed == nil {
		v.Feed = []feed.Entry{}
	}
	return v
}

// runIntent loads the list, applies intent, waits for the store and prints
// the resulting view.
func runIntent(cmd *cobra.Command, opts *RootOptions, token string, intent func(*session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, opts, token)
	if err != nil {
		return err
	}
	var settleErr error
	if intent == nil {
		_ = s.engine.Close()
	} else {
		if err := intent(s); err != nil {
			_ = s.engine.Close()
			return WrapExitError(ExitCommandError, "rejected", err)
		}
		settleErr = s.settle(ctx)
	}

	v := s.view()
	if err := opts.output(cmd).Emit(v, func(w io.Writer) { renderList(w, v) }); err != nil {
		return err
	}
	return settleErr
}
