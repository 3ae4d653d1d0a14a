package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/pkg/logger"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), &logger.Logger{Logger: zap.NewNop()})
	require.NoError(t, err)
	return c
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := testCache(t)

	history := []model.Conversation{
		{
			ID:        "c1",
			Timestamp: 1700000000000,
			Settings:  model.DefaultSettings(),
			Suggestions: []model.Suggestion{
				{ID: "suggestion-0-1700000000000", Text: "hey", Phase: model.PhaseRapport},
			},
			Review: &model.SocialReview{SyncScore: 72, Mood: "warm"},
		},
		{ID: "c2", Timestamp: 1600000000000},
	}

	require.NoError(t, c.Save("device-1", history))

	loaded := c.Load("device-1")
	require.Len(t, loaded, 2)
	assert.Equal(t, history, loaded)
}

func TestLoadMissingDeviceReturnsNil(t *testing.T) {
	c := testCache(t)
	assert.Nil(t, c.Load("never-seen"))
}

func TestLoadCorruptFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, &logger.Logger{Logger: zap.NewNop()})
	require.NoError(t, err)

	require.NoError(t, c.Save("device-1", []model.Conversation{{ID: "c1"}}))
	path := filepath.Join(dir, "device-1.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	assert.Nil(t, c.Load("device-1"))
}

func TestSaveNilHistoryWritesEmptyList(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.Save("device-1", []model.Conversation{{ID: "c1"}}))
	require.NoError(t, c.Save("device-1", nil))

	assert.Empty(t, c.Load("device-1"))
}

func TestClearRemovesHistory(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.Save("device-1", []model.Conversation{{ID: "c1"}}))
	c.Clear("device-1")

	assert.Nil(t, c.Load("device-1"))
}

func TestDevicesAreIsolated(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.Save("device-1", []model.Conversation{{ID: "c1"}}))
	require.NoError(t, c.Save("device-2", []model.Conversation{{ID: "c2"}}))

	require.Len(t, c.Load("device-1"), 1)
	assert.Equal(t, "c1", c.Load("device-1")[0].ID)
	assert.Equal(t, "c2", c.Load("device-2")[0].ID)
}

func TestPathTraversalIsNeutralized(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, &logger.Logger{Logger: zap.NewNop()})
	require.NoError(t, err)

	require.NoError(t, c.Save("../../etc/passwd", []model.Conversation{{ID: "c1"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "sanitized file stays inside the cache dir")
}
