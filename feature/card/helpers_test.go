package card

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"postcard-sync/core/account"
	"postcard-sync/core/database"
	"postcard-sync/core/reconcile"
	"postcard-sync/core/storage/mocks"
	"postcard-sync/feature/media"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockRemote is a testify mock of reconcile.Remote.
type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchDocument(ctx context.Context, uuid string) (reconcile.Document, error) {
	args := m.Called(ctx, uuid)
	doc, _ := args.Get(0).(reconcile.Document)
	return doc, args.Error(1)
}

func (m *mockRemote) SubmitDocument(ctx context.Context, uuid string, doc reconcile.Document) error {
	args := m.Called(ctx, uuid, doc)
	return args.Error(0)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "cards.db"),
	})
	require.NoError(t, err)
	store := NewStore(db)
	require.NoError(t, store.Migrate())
	return store
}

type testEnv struct {
	store   *Store
	remote  *mockRemote
	storage *mocks.Client
	service *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newTestStore(t)
	remote := new(mockRemote)
	objects := new(mocks.Client)
	engine := reconcile.NewEngine(NewSchema(), store, remote)
	accounts := account.NewStatic(account.Config{Name: "ada", URI: "/person/7/"})
	resolver := media.NewResolver(objects, "postcards", "cards/", nil)
	linker, err := NewLinker("https://postcards.example.org/api/")
	require.NoError(t, err)
	return &testEnv{
		store:   store,
		remote:  remote,
		storage: objects,
		service: NewService(store, engine, accounts, resolver, linker, "Untitled", nil),
	}
}

func doc(t *testing.T, raw string) reconcile.Document {
	t.Helper()
	d, err := reconcile.DecodeDocument(strings.NewReader(raw))
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }
