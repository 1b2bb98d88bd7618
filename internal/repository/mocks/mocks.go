package mocks

import (
	"context"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/stretchr/testify/mock"
)

// ListRepository is a mock for list.Repository.
type ListRepository struct {
	mock.Mock
}

func (m *ListRepository) Create(ctx context.Context, l *list.List) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *ListRepository) Get(ctx context.Context, id string) (*list.List, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*list.List); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListRepository) GetByToken(ctx context.Context, token string) (*list.List, error) {
	args := m.Called(ctx, token)
	if l, ok := args.Get(0).(*list.List); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListRepository) Update(ctx context.Context, l *list.List) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *ListRepository) IncrementRevision(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// ItemRepository is a mock for item.Repository.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *ItemRepository) Get(ctx context.Context, listID, id string) (*item.Item, error) {
	args := m.Called(ctx, listID, id)
	if it, ok := args.Get(0).(*item.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *ItemRepository) Delete(ctx context.Context, listID, id string) error {
	args := m.Called(ctx, listID, id)
	return args.Error(0)
}

func (m *ItemRepository) List(ctx context.Context, listID string) ([]item.Item, error) {
	args := m.Called(ctx, listID)
	if items, ok := args.Get(0).([]item.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) NextPosition(ctx context.Context, listID string) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if entries, ok := args.Get(0).([]activity.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}
