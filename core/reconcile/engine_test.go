package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store that applies commits under a lock.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*Snapshot
	nextID    uint
	commitErr error
	commits   int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*Snapshot{}, nextID: 100}
}

func (s *memStore) put(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[snap.UUID] = snap
}

func (s *memStore) Snapshot(ctx context.Context, uuid string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.records[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	cp.Fields = snap.Fields.Clone()
	cp.Children = append([]ChildRef(nil), snap.Children...)
	return &cp, nil
}

func (s *memStore) Commit(ctx context.Context, c Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	snap, ok := s.records[c.UUID]
	if !ok {
		return ErrNotFound
	}
	next := *snap
	if c.Fields != nil {
		next.Fields = c.Fields.Clone()
	}
	if c.Children != nil {
		byID := map[uint]ChildRef{}
		for _, ch := range snap.Children {
			byID[ch.ID] = ch
		}
		var children []ChildRef
		for _, a := range c.Children.Actions {
			switch a.Type {
			case ChildDelete:
				delete(byID, a.ID)
			case ChildUpdate:
				children = append(children, ChildRef{ID: a.ID, Key: a.Key, Order: a.Position})
			case ChildInsert:
				s.nextID++
				children = append(children, ChildRef{ID: s.nextID, Key: a.Key, Order: a.Position})
			}
		}
		sort.Slice(children, func(i, j int) bool { return children[i].Order < children[j].Order })
		next.Children = children
	}
	next.Draft = false
	if c.ClearDirty {
		next.Dirty = false
	}
	s.records[c.UUID] = &next
	s.commits++
	return nil
}

// mockRemote is a testify mock of Remote.
type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchDocument(ctx context.Context, uuid string) (Document, error) {
	args := m.Called(ctx, uuid)
	doc, _ := args.Get(0).(Document)
	return doc, args.Error(1)
}

func (m *mockRemote) SubmitDocument(ctx context.Context, uuid string, doc Document) error {
	args := m.Called(ctx, uuid, doc)
	return args.Error(0)
}

func testSchema() *Schema {
	return &Schema{
		Table: MustCompose("card",
			TitledMixin(),
			AuthorshipMixin(),
			GeolocationMixin(),
			Mixin("card",
				Field("timing", "frame_delay", TypeInteger),
				PullOnly("web_url", "url", TypeString),
			),
		),
		Resources: testResources(),
		Children:  testPhotos(),
		Protected: []string{"author_name"},
	}
}

func draftSnapshot(uuid string) *Snapshot {
	return &Snapshot{
		ID:    1,
		UUID:  uuid,
		Draft: true,
		Fields: Fields{
			"title":   "Trip",
			"timing":  300,
			"privacy": "protected",
		},
	}
}

// TestEngine_PullScenario tests the create, pull, draft-cleared flow.
func TestEngine_PullScenario(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))

	remote := new(mockRemote)
	remote.On("FetchDocument", mock.Anything, "u1").
		Return(decodeDoc(t, `{"title":"Trip to Boston","frame_delay":500,"_resources":{"thumbnail":"t.jpg"}}`), nil)

	engine := NewEngine(testSchema(), store, remote)
	res, err := engine.Pull(context.Background(), "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"title", "timing", "thumbnail"}, res.Applied)
	assert.Nil(t, res.Children)

	snap, err := store.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, snap.Draft)
	assert.Equal(t, "Trip to Boston", snap.Fields["title"])
	assert.Equal(t, 500, snap.Fields["timing"])
	assert.Equal(t, "t.jpg", snap.Fields["thumbnail"])
	assert.Equal(t, "protected", snap.Fields["privacy"])
	remote.AssertExpectations(t)
}

// TestEngine_PullIdempotent tests that a second pull of the same document changes nothing.
func TestEngine_PullIdempotent(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))

	remote := new(mockRemote)
	remote.On("FetchDocument", mock.Anything, "u1").Return(decodeDoc(t, `{
		"title": "Trip to Boston",
		"location": [-71.09, 42.36],
		"_resources": {"cover_photo": "c.jpg"},
		"photos": [{"uuid": "C"}, {"uuid": "A"}, {"uuid": "B"}]
	}`), nil)

	engine := NewEngine(testSchema(), store, remote)
	_, err := engine.Pull(context.Background(), "u1")
	require.NoError(t, err)
	first, _ := store.Snapshot(context.Background(), "u1")

	res, err := engine.Pull(context.Background(), "u1")
	require.NoError(t, err)
	second, _ := store.Snapshot(context.Background(), "u1")

	assert.Equal(t, first, second)
	assert.Equal(t, ChildSummary{Total: 3, Updated: 3}, *res.Children)
	assert.Equal(t, []ChildRef{{ID: 101, Key: "C", Order: 0}, {ID: 102, Key: "A", Order: 1}, {ID: 103, Key: "B", Order: 2}}, second.Children)
}

// TestEngine_PullFailureLeavesRecordUnchanged tests that nothing is written when a step fails.
func TestEngine_PullFailureLeavesRecordUnchanged(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		fetchErr  error
		commitErr error
		check     func(t *testing.T, err error)
	}{
		{
			name:     "fetch fails",
			fetchErr: errors.New("connection refused"),
			check: func(t *testing.T, err error) {
				var fe *FetchError
				assert.ErrorAs(t, err, &fe)
				assert.Equal(t, "fetch_error", Outcome(err))
			},
		},
		{
			name:      "commit fails after fetch",
			doc:       `{"title": "Remote", "_resources": {"thumbnail": "t.jpg"}}`,
			commitErr: errors.New("disk I/O error"),
			check: func(t *testing.T, err error) {
				var ce *CommitError
				assert.ErrorAs(t, err, &ce)
				assert.Equal(t, "u1", ce.UUID)
			},
		},
		{
			name: "duplicate child keys",
			doc:  `{"title": "Remote", "photos": ["a", "a"]}`,
			check: func(t *testing.T, err error) {
				var cre *ChildReconcileError
				assert.ErrorAs(t, err, &cre)
			},
		},
		{
			name: "child list is not a list",
			doc:  `{"title": "Remote", "photos": {"a": 1}}`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "child_error", Outcome(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			start := draftSnapshot("u1")
			start.Children = []ChildRef{{ID: 9, Key: "x", Order: 0}}
			store.put(start)
			before, _ := store.Snapshot(context.Background(), "u1")

			remote := new(mockRemote)
			if tt.fetchErr != nil {
				remote.On("FetchDocument", mock.Anything, "u1").Return(nil, tt.fetchErr)
			} else {
				remote.On("FetchDocument", mock.Anything, "u1").Return(decodeDoc(t, tt.doc), nil)
			}
			store.commitErr = tt.commitErr

			_, err := NewEngine(testSchema(), store, remote).Pull(context.Background(), "u1")
			require.Error(t, err)
			tt.check(t, err)

			after, _ := store.Snapshot(context.Background(), "u1")
			assert.Equal(t, before, after)
		})
	}
}

// cancellingRemote cancels the cycle's context while the fetch is in flight.
type cancellingRemote struct {
	cancel context.CancelFunc
	doc    Document
}

func (r *cancellingRemote) FetchDocument(ctx context.Context, uuid string) (Document, error) {
	r.cancel()
	return r.doc, nil
}

func (r *cancellingRemote) SubmitDocument(ctx context.Context, uuid string, doc Document) error {
	return nil
}

func TestEngine_PullCancelledBeforeCommit(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))

	ctx, cancel := context.WithCancel(context.Background())
	remote := &cancellingRemote{cancel: cancel, doc: decodeDoc(t, `{"title": "Remote"}`)}

	_, err := NewEngine(testSchema(), store, remote).Pull(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "cancelled", Outcome(err))
	assert.Equal(t, 0, store.commits)
}

func TestEngine_PullFieldTypeErrorIsNotFatal(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))

	remote := new(mockRemote)
	remote.On("FetchDocument", mock.Anything, "u1").
		Return(decodeDoc(t, `{"title": "Remote", "frame_delay": "slow"}`), nil)

	res, err := NewEngine(testSchema(), store, remote).Pull(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, res.FieldErrors, 1)
	assert.Equal(t, "frame_delay", res.FieldErrors[0].Key)

	snap, _ := store.Snapshot(context.Background(), "u1")
	assert.Equal(t, "Remote", snap.Fields["title"])
	assert.Equal(t, 300, snap.Fields["timing"])
	assert.False(t, snap.Draft)
}

func TestEngine_PullNotFound(t *testing.T) {
	remote := new(mockRemote)
	_, err := NewEngine(testSchema(), newMemStore(), remote).Pull(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	remote.AssertNotCalled(t, "FetchDocument", mock.Anything, mock.Anything)
}

// TestEngine_ConflictPolicy tests both policies on a record with local edits.
func TestEngine_ConflictPolicy(t *testing.T) {
	tests := []struct {
		policy    ConflictPolicy
		wantTitle string
		wantKept  bool
	}{
		{PolicyKeepLocal, "Local edit", true},
		{PolicyPreferRemote, "Remote", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			store := newMemStore()
			snap := draftSnapshot("u1")
			snap.Dirty = true
			snap.Fields["title"] = "Local edit"
			store.put(snap)

			remote := new(mockRemote)
			remote.On("FetchDocument", mock.Anything, "u1").
				Return(decodeDoc(t, `{"title": "Remote", "frame_delay": 300, "url": "/c/u1/"}`), nil)

			res, err := NewEngine(testSchema(), store, remote, WithConflictPolicy(tt.policy)).Pull(context.Background(), "u1")
			require.NoError(t, err)

			// frame_delay matches, so only the title conflicts
			require.Len(t, res.Conflicts, 1)
			assert.Equal(t, "title", res.Conflicts[0].Field)
			assert.Equal(t, tt.wantKept, res.Conflicts[0].Kept)

			after, _ := store.Snapshot(context.Background(), "u1")
			assert.Equal(t, tt.wantTitle, after.Fields["title"])
			assert.Equal(t, "/c/u1/", after.Fields["web_url"])
			assert.True(t, after.Dirty)
		})
	}
}

func TestEngine_Push(t *testing.T) {
	store := newMemStore()
	snap := draftSnapshot("u1")
	snap.Dirty = true
	snap.Fields["web_url"] = "/c/u1/"
	snap.Fields["location"] = nil
	store.put(snap)

	remote := new(mockRemote)
	remote.On("SubmitDocument", mock.Anything, "u1", Document{
		"title":       "Trip",
		"privacy":     "protected",
		"frame_delay": 300,
	}).Return(nil)

	res, err := NewEngine(testSchema(), store, remote).Push(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "privacy", "frame_delay"}, res.Applied)

	after, _ := store.Snapshot(context.Background(), "u1")
	assert.False(t, after.Draft)
	assert.False(t, after.Dirty)
	assert.Equal(t, snap.Fields, after.Fields)
	remote.AssertExpectations(t)
}

func TestEngine_PushFailures(t *testing.T) {
	t.Run("submit fails", func(t *testing.T) {
		store := newMemStore()
		store.put(draftSnapshot("u1"))
		before, _ := store.Snapshot(context.Background(), "u1")

		remote := new(mockRemote)
		remote.On("SubmitDocument", mock.Anything, "u1", mock.Anything).Return(context.DeadlineExceeded)

		_, err := NewEngine(testSchema(), store, remote).Push(context.Background(), "u1")
		var se *SubmitError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "submit_error", Outcome(err))

		after, _ := store.Snapshot(context.Background(), "u1")
		assert.Equal(t, before, after)
	})

	t.Run("commit fails after submit", func(t *testing.T) {
		store := newMemStore()
		store.put(draftSnapshot("u1"))
		store.commitErr = errors.New("database is locked")

		remote := new(mockRemote)
		remote.On("SubmitDocument", mock.Anything, "u1", mock.Anything).Return(nil)

		_, err := NewEngine(testSchema(), store, remote).Push(context.Background(), "u1")
		var ce *CommitError
		require.ErrorAs(t, err, &ce)

		after, _ := store.Snapshot(context.Background(), "u1")
		assert.True(t, after.Draft)
	})
}

// blockingRemote holds every fetch until release is closed.
type blockingRemote struct {
	calls   atomic.Int32
	release chan struct{}
	doc     Document
}

func (r *blockingRemote) FetchDocument(ctx context.Context, uuid string) (Document, error) {
	r.calls.Add(1)
	<-r.release
	return r.doc, nil
}

func (r *blockingRemote) SubmitDocument(ctx context.Context, uuid string, doc Document) error {
	return nil
}

// TestEngine_CoalescesConcurrentPulls tests that racing pulls of one uuid share a single cycle.
func TestEngine_CoalescesConcurrentPulls(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))
	remote := &blockingRemote{release: make(chan struct{}), doc: decodeDoc(t, `{"title": "Remote"}`)}
	engine := NewEngine(testSchema(), store, remote)

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := engine.Pull(context.Background(), "u1")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// let every goroutine reach the in-flight call before releasing it
	time.Sleep(50 * time.Millisecond)
	close(remote.release)
	wg.Wait()

	assert.Equal(t, int32(1), remote.calls.Load())
	assert.Equal(t, 1, store.commits)
	for _, res := range results {
		assert.Same(t, results[0], res)
	}
}

func TestSchema_Validate(t *testing.T) {
	s := testSchema()
	s.Protected = []string{"title"}
	assert.Error(t, s.Validate())

	s = testSchema()
	s.Resources = NewResourceSet(ResourceField{RemoteKey: "thumbnail", LocalField: "title"})
	assert.Error(t, s.Validate())

	assert.Panics(t, func() {
		NewEngine(&Schema{}, newMemStore(), new(mockRemote))
	})
}

// startCancelRemote blocks the first fetch until its ctx ends; later fetches return doc.
type startCancelRemote struct {
	calls atomic.Int32
	doc   Document
}

func (r *startCancelRemote) FetchDocument(ctx context.Context, uuid string) (Document, error) {
	if r.calls.Add(1) == 1 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.doc, nil
}

func (r *startCancelRemote) SubmitDocument(ctx context.Context, uuid string, doc Document) error {
	return nil
}

// TestEngine_JoinedPullSurvivesStarterCancel tests that a cancelled starter does not fail a caller that joined it.
func TestEngine_JoinedPullSurvivesStarterCancel(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))
	remote := &startCancelRemote{doc: decodeDoc(t, `{"title": "Remote"}`)}
	engine := NewEngine(testSchema(), store, remote)

	starterCtx, cancel := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := engine.Pull(starterCtx, "u1")
		starterErr <- err
	}()
	require.Eventually(t, func() bool { return remote.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		res *Result
		err error
	}
	joined := make(chan outcome, 1)
	go func() {
		res, err := engine.Pull(context.Background(), "u1")
		joined <- outcome{res, err}
	}()

	// let the second caller reach the in-flight call before cancelling the first
	time.Sleep(50 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-starterErr, context.Canceled)
	got := <-joined
	require.NoError(t, got.err)
	assert.Equal(t, "pull", got.res.Direction)
	assert.Equal(t, int32(2), remote.calls.Load())

	snap, _ := store.Snapshot(context.Background(), "u1")
	assert.Equal(t, "Remote", snap.Fields["title"])
}

// TestEngine_JoinerCancelLeavesCycleRunning tests that a joiner giving up does not abort the shared cycle.
func TestEngine_JoinerCancelLeavesCycleRunning(t *testing.T) {
	store := newMemStore()
	store.put(draftSnapshot("u1"))
	remote := &blockingRemote{release: make(chan struct{}), doc: decodeDoc(t, `{"title": "Remote"}`)}
	engine := NewEngine(testSchema(), store, remote)

	starter := make(chan error, 1)
	go func() {
		_, err := engine.Pull(context.Background(), "u1")
		starter <- err
	}()
	require.Eventually(t, func() bool { return remote.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	joinerCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := engine.Pull(joinerCtx, "u1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(remote.release)
	require.NoError(t, <-starter)
	assert.Equal(t, int32(1), remote.calls.Load())
	assert.Equal(t, 1, store.commits)
}
