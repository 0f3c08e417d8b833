package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  "redis://" + mr.Addr(),
		DB:        core.RedisDBSessions,
		Namespace: "archadvisor:sessions",
	})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	return NewStore(rc, nil)
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := New("sess-1", "build me a system", "fp-1", DefaultPreferences())
	require.NoError(t, store.Create(ctx, state))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, StatusInitializing, got.Status)
}

func TestStore_GetMissingReturnsNilNil(t *testing.T) {
	store := newTestStore(t)
	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateFailsOnAbsentSession(t *testing.T) {
	store := newTestStore(t)
	err := store.Update(context.Background(), "nope", func(s *State) {})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestStore_AppendMessageAccumulatesCost(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := New("sess-1", "req", "fp", DefaultPreferences())
	require.NoError(t, store.Create(ctx, state))

	require.NoError(t, store.AppendMessage(ctx, "sess-1", AgentMessage{AgentID: "architect", Cost: 0.5}))
	require.NoError(t, store.AppendMessage(ctx, "sess-1", AgentMessage{AgentID: "devils_advocate", Cost: 0.25}))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.InDelta(t, 0.75, got.TotalCost, 1e-9)
}

func TestStore_ListRecentNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, New(id, "req", "fp", DefaultPreferences())))
	}

	ids, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestStore_StoreOutputPromotesOnlyTerminalFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := New("sess-1", "req", "fp", DefaultPreferences())
	state.ReviewFindings = "in-flight findings"
	require.NoError(t, store.Create(ctx, state))

	update := &State{
		FinalDocument:    "the document",
		RenderedMarkdown: "# The Document",
		ValidationPassed: true,
		ValidationScore:  85,
		Status:           StatusComplete,
	}
	require.NoError(t, store.StoreOutput(ctx, "sess-1", update))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "the document", got.FinalDocument)
	assert.Equal(t, StatusComplete, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "in-flight findings", got.ReviewFindings, "non-promoted field must survive untouched")
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, New("sess-1", "req", "fp", DefaultPreferences())))
	require.NoError(t, store.Delete(ctx, "sess-1"))

	exists, err := store.Exists(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)
}
