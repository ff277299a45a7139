package scoreboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "Scoreboard.json"), 10)

	entries, err := store.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStoreKeepsTopEntriesPerGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Scoreboard.json")
	store := NewFileStore(path, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, models.ScoreEntry{
			Name:  fmt.Sprintf("p%d", i),
			Score: i * 10,
			Wave:  i,
			Game:  models.BaseDefender,
			Date:  testNow.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, store.Add(ctx, models.ScoreEntry{Name: "s", Score: 1, Game: models.Snake, Date: testNow}))

	entries, err := store.List(ctx, models.BaseDefender, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 40, entries[0].Score)
	assert.Equal(t, 20, entries[2].Score)

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	limited, err := store.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// 重新打开后数据仍在
	reopened := NewFileStore(path, 3)
	snake, err := reopened.List(ctx, models.Snake, 10)
	require.NoError(t, err)
	require.Len(t, snake, 1)
	assert.Equal(t, "s", snake[0].Name)
}

func TestFileStoreReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Scoreboard.json")
	legacy := `{"scores":[{"name":"old","score":7,"wave":2,"date":"2024-01-02T03:04:05.000Z"}]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	entries, err := NewFileStore(path, 10).List(context.Background(), models.BaseDefender, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "old", entries[0].Name)
	assert.Equal(t, 2024, entries[0].Date.Year())
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Scoreboard.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	store := NewFileStore(path, 10)

	_, err := store.List(context.Background(), "", 10)
	assert.Error(t, err)
	assert.Error(t, store.Add(context.Background(), models.ScoreEntry{Name: "a"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(raw))
}
