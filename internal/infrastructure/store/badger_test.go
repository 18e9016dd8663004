package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hilthontt/quorum/internal/infrastructure/logging"
)

func newTestStore(t *testing.T) *Badger {
	t.Helper()

	s, err := Open(Options{InMemory: true}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type testDoc struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags"`
	Items []string          `json:"items"`
}

func TestStore_CreateAndGet(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	in := testDoc{Name: "room", Tags: map[string]string{"a": "1"}}
	req.NoError(s.Create(ctx, "k1", in, 0))

	var out testDoc
	req.NoError(s.Get(ctx, "k1", &out))
	req.Equal(in, out)
}

func TestStore_CreateDuplicateFails(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", testDoc{Name: "a"}, 0))
	req.ErrorIs(s.Create(ctx, "k1", testDoc{Name: "b"}, 0), ErrKeyExists)
}

func TestStore_GetMissingKey(t *testing.T) {
	s := newTestStore(t)

	var out testDoc
	require.ErrorIs(t, s.Get(context.Background(), "nope", &out), ErrKeyNotFound)
}

func TestStore_SetPathCreatesIntermediateObjects(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{}, 0))
	req.NoError(s.SetPath(ctx, "k1", "participants.u1", "Alice"))
	req.NoError(s.SetPath(ctx, "k1", "participants.u2", "Bob"))

	var out map[string]any
	req.NoError(s.Get(ctx, "k1", &out))
	participants := out["participants"].(map[string]any)
	req.Equal("Alice", participants["u1"])
	req.Equal("Bob", participants["u2"])
}

func TestStore_SetPathOnMissingDocument(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.SetPath(context.Background(), "nope", "a.b", 1), ErrKeyNotFound)
}

func TestStore_AppendPath(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{}, 0))

	// first append creates the array
	req.NoError(s.AppendPath(ctx, "k1", "answers.u1", "a"))
	req.NoError(s.AppendPath(ctx, "k1", "answers.u1", "b"))

	var out map[string]any
	req.NoError(s.Get(ctx, "k1", &out))
	answers := out["answers"].(map[string]any)
	req.Equal([]any{"a", "b"}, answers["u1"])
}

func TestStore_AppendPathToNonArray(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{"field": "scalar"}, 0))
	req.ErrorIs(s.AppendPath(ctx, "k1", "field", "x"), ErrBadPath)
}

func TestStore_DeletePath(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{}, 0))
	req.NoError(s.SetPath(ctx, "k1", "participants.u1", "Alice"))
	req.NoError(s.DeletePath(ctx, "k1", "participants.u1"))

	var out map[string]any
	req.NoError(s.Get(ctx, "k1", &out))
	participants := out["participants"].(map[string]any)
	req.NotContains(participants, "u1")
}

func TestStore_DeletePathAbsentFieldIsTolerated(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{}, 0))
	req.NoError(s.DeletePath(ctx, "k1", "nothing.here"))
}

func TestStore_Delete(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", testDoc{Name: "a"}, 0))
	req.NoError(s.Delete(ctx, "k1"))

	var out testDoc
	req.ErrorIs(s.Get(ctx, "k1", &out), ErrKeyNotFound)
}

func TestStore_TTLExpiry(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", testDoc{Name: "a"}, time.Second))

	var out testDoc
	req.NoError(s.Get(ctx, "k1", &out))

	time.Sleep(1100 * time.Millisecond)
	req.ErrorIs(s.Get(ctx, "k1", &out), ErrKeyNotFound)
}

func TestStore_MutationPreservesTTL(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	req.NoError(s.Create(ctx, "k1", map[string]any{}, time.Second))
	req.NoError(s.SetPath(ctx, "k1", "field", "v"))

	time.Sleep(1100 * time.Millisecond)

	var out map[string]any
	req.ErrorIs(s.Get(ctx, "k1", &out), ErrKeyNotFound)
}
