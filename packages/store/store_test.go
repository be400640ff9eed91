package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndFindOne(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Insert(ctx, "channels", map[string]any{
		"name":     "general",
		"capacity": 50,
		"private":  false,
	})
	require.NoError(t, err)

	doc, err := s.FindOne(ctx, "channels", map[string]any{"name": "general"})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "general", doc["name"])
	assert.Equal(t, float64(50), doc["capacity"])
}

func TestFindOne_NoMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc, err := s.FindOne(ctx, "channels", map[string]any{"name": "missing"})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFindOne_MultipleFilterFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general", "private": false}))
	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general", "private": true}))

	doc, err := s.FindOne(ctx, "channels", map[string]any{
		"name":    "general",
		"private": true,
	})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, true, doc["private"])
}

func TestFindOne_NewestWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general", "rev": 1}))
	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general", "rev": 2}))

	doc, err := s.FindOne(ctx, "channels", map[string]any{"name": "general"})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, float64(2), doc["rev"])
}

func TestFindOne_EmptyFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general"}))

	doc, err := s.FindOne(ctx, "channels", nil)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestFindOne_NullFilterValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general", "topic": nil}))
	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "random", "topic": "chat"}))

	doc, err := s.FindOne(ctx, "channels", map[string]any{"topic": nil})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "general", doc["name"])
}

func TestFindOne_CollectionsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "channels", map[string]any{"name": "general"}))

	doc, err := s.FindOne(ctx, "users", map[string]any{"name": "general"})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFindOne_InvalidFilterField(t *testing.T) {
	s := openTestStore(t)

	_, err := s.FindOne(context.Background(), "channels", map[string]any{"a'b": 1})
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "messages", map[string]any{"channel": "general"}))
	require.NoError(t, s.Insert(ctx, "messages", map[string]any{"channel": "general"}))
	require.NoError(t, s.Insert(ctx, "messages", map[string]any{"channel": "random"}))

	n, err := s.Count(ctx, "messages", map[string]any{"channel": "general"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Count(ctx, "messages", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(context.Background(), "c", map[string]any{"k": "v"}))
	doc, err := s.FindOne(context.Background(), "c", map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.NotNil(t, doc)
}
