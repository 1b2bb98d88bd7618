package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/repository"
	"github.com/google/uuid"
)

// Service is the authoritative item store. It owns the split policy:
// increasing the quantity of a claimed item never grows that item, it
// creates an unclaimed remainder for the difference instead.
type Service struct {
	items      Repository
	lists      ListRepository
	activities ActivityRepository
	tx         Transactor
	logger     *slog.Logger
}

// NewService creates a new item service.
func NewService(
	items Repository,
	lists ListRepository,
	activities ActivityRepository,
	tx Transactor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tx == nil {
		tx = TransactorFunc(runDirect)
	}
	return &Service{
		items:      items,
		lists:      lists,
		activities: activities,
		tx:         tx,
		logger:     logger,
	}
}

// CreateRequest describes an item creation request.
type CreateRequest struct {
	ListID   string
	Name     string
	Quantity int
	Actor    string
}

// UpdateRequest describes a partial item update. A non-nil Claimant
// pointing at an empty string unclaims the item.
type UpdateRequest struct {
	ListID   string
	ID       string
	Name     *string
	Quantity *int
	Claimant *string
	Actor    string
}

// DeleteRequest describes an item deletion.
type DeleteRequest struct {
	ListID string
	ID     string
	Actor  string
}

// Create adds an item at the end of the list.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	var created *Item
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial update. Quantity is classified against the
// item's claim state before any claimant change in the same request. The
// revision bump, the item write, its activity and any split remainder
// commit together.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	var result *UpdateResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.update(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an item. Remainders of a deleted root are promoted to
// root items by the repository.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.remove(ctx, req)
	})
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*Item, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}
	if err := s.ensureActive(ctx, req.ListID); err != nil {
		return nil, err
	}

	revision, err := s.lists.IncrementRevision(ctx, req.ListID)
	if err != nil {
		return nil, fmt.Errorf("incrementing revision: %w", err)
	}
	position, err := s.items.NextPosition(ctx, req.ListID)
	if err != nil {
		return nil, fmt.Errorf("allocating position: %w", err)
	}

	now := time.Now()
	it := &Item{
		ID:         uuid.NewString(),
		ListID:     req.ListID,
		Name:       NormalizeName(req.Name),
		Quantity:   req.Quantity,
		Position:   position,
		Revision:   revision,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.log(ctx, it, activity.KindAdded, req.Actor, quantityIfMany(it.Quantity))
	return it, nil
}

func (s *Service) update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}
	if err := s.ensureActive(ctx, req.ListID); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, req.ListID, req.ID)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	var kinds []activity.Kind
	var split int

	if req.Name != nil {
		name := NormalizeName(*req.Name)
		if name != current.Name {
			updated.Name = name
			kinds = append(kinds, activity.KindEdited)
		}
	}

	if req.Quantity != nil && *req.Quantity != current.Quantity {
		effect, err := ClassifyQuantityChange(*current, *req.Quantity)
		if err != nil {
			return nil, err
		}
		if effect == QuantitySplit {
			split = *req.Quantity - current.Quantity
		} else {
			updated.Quantity = *req.Quantity
			if len(kinds) == 0 {
				kinds = append(kinds, activity.KindEdited)
			}
		}
	}

	if req.Claimant != nil {
		if *req.Claimant == "" {
			if updated.Claimed() {
				updated = ApplyUnclaim(updated)
				kinds = append(kinds, activity.KindUnclaimed)
			}
		} else {
			claimed, err := ApplyClaim(updated, *req.Claimant)
			if err != nil {
				return nil, err
			}
			updated = claimed
			kinds = append(kinds, activity.KindClaimed)
		}
	}

	revision, err := s.lists.IncrementRevision(ctx, req.ListID)
	if err != nil {
		return nil, fmt.Errorf("incrementing revision: %w", err)
	}
	updated.Revision = revision
	updated.ModifiedAt = time.Now()

	if err := s.items.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("updating item: %w", err)
	}

	for _, kind := range kinds {
		switch kind {
		case activity.KindClaimed:
			s.log(ctx, &updated, kind, *updated.Claimant, nil)
		case activity.KindEdited:
			s.log(ctx, &updated, kind, req.Actor, quantityIfChanged(current.Quantity, updated.Quantity))
		default:
			s.log(ctx, &updated, kind, req.Actor, nil)
		}
	}

	result := &UpdateResult{Outcome: OutcomeUpdated, Item: updated}
	if split == 0 {
		return result, nil
	}

	remainder, err := s.createRemainder(ctx, updated, split, revision, req.Actor)
	if err != nil {
		return nil, err
	}
	result.Outcome = OutcomeSplit
	result.Remainder = remainder
	result.Delta = split
	return result, nil
}

func (s *Service) remove(ctx context.Context, req DeleteRequest) error {
	if req.ListID == "" || req.ID == "" {
		return ErrInvalidInput
	}
	if err := s.ensureActive(ctx, req.ListID); err != nil {
		return err
	}

	current, err := s.get(ctx, req.ListID, req.ID)
	if err != nil {
		return err
	}
	if _, err := s.lists.IncrementRevision(ctx, req.ListID); err != nil {
		return fmt.Errorf("incrementing revision: %w", err)
	}
	if err := s.items.Delete(ctx, req.ListID, req.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("deleting item: %w", err)
	}

	s.log(ctx, current, activity.KindRemoved, req.Actor, nil)
	return nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, listID, id string) (*Item, error) {
	return s.get(ctx, listID, id)
}

// List returns every item on a list in display order.
func (s *Service) List(ctx context.Context, listID string) ([]Item, error) {
	items, err := s.items.List(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

func (s *Service) createRemainder(ctx context.Context, parent Item, quantity int, revision int64, actor string) (*Item, error) {
	position, err := s.items.NextPosition(ctx, parent.ListID)
	if err != nil {
		return nil, fmt.Errorf("allocating position: %w", err)
	}
	rootID := RootID(parent)
	now := time.Now()
	remainder := &Item{
		ID:         uuid.NewString(),
		ListID:     parent.ListID,
		Name:       parent.Name,
		Quantity:   quantity,
		Position:   position,
		ParentID:   &rootID,
		Revision:   revision,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.items.Create(ctx, remainder); err != nil {
		return nil, fmt.Errorf("creating split remainder: %w", err)
	}
	s.logger.Info("split remainder created", "list_id", parent.ListID, "parent_id", rootID, "remainder_id", remainder.ID, "quantity", quantity)
	s.log(ctx, remainder, activity.KindAdded, actor, &quantity)
	return remainder, nil
}

func (s *Service) get(ctx context.Context, listID, id string) (*Item, error) {
	it, err := s.items.Get(ctx, listID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("loading item: %w", err)
	}
	return it, nil
}

func (s *Service) ensureActive(ctx context.Context, listID string) error {
	l, err := s.lists.Get(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return list.ErrListNotFound
		}
		return fmt.Errorf("loading list: %w", err)
	}
	if !l.Active() {
		return list.ErrListNotActive
	}
	return nil
}

func (s *Service) log(ctx context.Context, it *Item, kind activity.Kind, actor string, quantity *int) {
	if s.activities == nil {
		return
	}
	entry := &activity.Entry{
		ListID:   it.ListID,
		ItemID:   &it.ID,
		Kind:     kind,
		ItemName: it.Name,
		Quantity: quantity,
		Revision: it.Revision,
	}
	if actor != "" {
		entry.Actor = &actor
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("activity log failed", "list_id", it.ListID, "item_id", it.ID, "kind", kind, "error", err)
	}
}

func quantityIfMany(q int) *int {
	if q <= 1 {
		return nil
	}
	return &q
}

func quantityIfChanged(before, after int) *int {
	if before == after {
		return nil
	}
	return &after
}
