package list_test

import (
	"context"
	"testing"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/repository"
	"github.com/ganot/sharedlist/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListService_Create(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ListRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := list.NewService(repo, nil)
	l, err := svc.Create(ctx, list.CreateRequest{Name: "  Bake sale  "})
	require.NoError(t, err)
	require.NotEmpty(t, l.ID)
	require.Len(t, l.Token, 64)
	require.Equal(t, "Bake sale", l.Name)
	require.Equal(t, list.StatusActive, l.Status)
}

func TestListService_CreateValidation(t *testing.T) {
	svc := list.NewService(&mocks.ListRepository{}, nil)
	_, err := svc.Create(context.Background(), list.CreateRequest{Name: "   "})
	require.ErrorIs(t, err, list.ErrInvalidInput)
}

func TestListService_ResolveUnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ListRepository{}
	repo.On("GetByToken", ctx, "nope").Return((*list.List)(nil), repository.ErrNotFound)

	svc := list.NewService(repo, nil)
	_, err := svc.Resolve(ctx, "nope")
	require.ErrorIs(t, err, list.ErrListNotFound)

	_, err = svc.Resolve(ctx, "")
	require.ErrorIs(t, err, list.ErrListNotFound)
}

func TestListService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ListRepository{}
	repo.On("Get", ctx, "l1").Return(&list.List{ID: "l1", Name: "Picnic", Status: list.StatusArchived}, nil)

	svc := list.NewService(repo, nil)
	active := list.StatusActive
	_, err := svc.Update(ctx, "l1", list.UpdateRequest{Status: &active})
	require.ErrorIs(t, err, list.ErrInvalidTransition)
}

func TestListService_UpdateMetadata(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ListRepository{}
	repo.On("Get", ctx, "l1").Return(&list.List{ID: "l1", Name: "Picnic", Status: list.StatusActive}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(l *list.List) bool {
		return l.Name == "Summer picnic" && l.Status == list.StatusCompleted
	})).Return(nil)

	svc := list.NewService(repo, nil)
	name := "Summer picnic"
	done := list.StatusCompleted
	updated, err := svc.Update(ctx, "l1", list.UpdateRequest{Name: &name, Status: &done})
	require.NoError(t, err)
	require.Equal(t, "Summer picnic", updated.Name)
	repo.AssertExpectations(t)
}

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		from, to list.Status
		ok       bool
	}{
		{list.StatusActive, list.StatusCompleted, true},
		{list.StatusActive, list.StatusArchived, true},
		{list.StatusCompleted, list.StatusActive, true},
		{list.StatusCompleted, list.StatusArchived, true},
		{list.StatusArchived, list.StatusActive, false},
		{list.StatusArchived, list.StatusCompleted, false},
		{list.StatusArchived, list.StatusArchived, true},
	}
	for _, tc := range cases {
		err := list.ValidateTransition(tc.from, tc.to)
		if tc.ok {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			require.ErrorIs(t, err, list.ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}
