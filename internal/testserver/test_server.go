package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
	"github.com/ganot/sharedlist/internal/sqlite"
	"github.com/ganot/sharedlist/internal/transport"
	"github.com/stretchr/testify/require"
)

// Store is a fully wired store backed by a per-test in-memory database.
type Store struct {
	DB       *sqlite.DB
	Lists    *list.Service
	Items    *item.Service
	Activity *activity.Service
	Handler  *rpc.Handler
}

// NewStore wires repositories and services on a fresh database.
func NewStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	listRepo := sqlite.NewListRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	listSvc := list.NewService(listRepo, nil)
	itemSvc := item.NewService(itemRepo, listRepo, activityRepo, db, nil)
	activitySvc := activity.NewService(activityRepo, nil)

	return &Store{
		DB:       db,
		Lists:    listSvc,
		Items:    itemSvc,
		Activity: activitySvc,
		Handler:  rpc.NewHandler(listSvc, itemSvc, activitySvc),
	}
}

// CreateList creates an active list and returns it.
func (s *Store) CreateList(t *testing.T, name string) *list.List {
	t.Helper()
	l, err := s.Lists.Create(context.Background(), list.CreateRequest{Name: name})
	require.NoError(t, err)
	return l
}

// TestServer serves a Store over the JSON-RPC HTTP transport.
type TestServer struct {
	*Store
	Server *httptest.Server
}

// New starts an HTTP test server on a fresh store.
func New(t *testing.T) *TestServer {
	t.Helper()

	store := NewStore(t)
	server := httptest.NewServer(transport.NewServer(store.Handler, store.Lists, nil))
	t.Cleanup(server.Close)

	return &TestServer{Store: store, Server: server}
}

// URL returns the server base URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}
