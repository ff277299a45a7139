package scoreboard

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/pkg/db"
)

// 需要真实的服务，未设置环境变量时跳过

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("BASEDEFENDER_TEST_DSN")
	if dsn == "" {
		t.Skip("BASEDEFENDER_TEST_DSN 未设置")
	}

	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Exec(db.DropAllTablesSQL + db.CreateAllTablesSQL)
	require.NoError(t, err)

	store := NewPostgresStore(conn, 2)
	exerciseStore(t, store)
	exerciseLedger(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BASEDEFENDER_TEST_REDIS")
	if addr == "" {
		t.Skip("BASEDEFENDER_TEST_REDIS 未设置")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Del(ctx,
		scoreboardKey(models.BaseDefender), scoreboardKey(models.Snake), receiptKeyPrefix+"receipt-1",
	).Err())

	store := NewRedisStore(client, 2)
	exerciseStore(t, store)
	exerciseLedger(t, store)
}

func exerciseLedger(t *testing.T, ledger ReceiptLedger) {
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	ok, err := ledger.Claim(ctx, "receipt-1", expires)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Claim(ctx, "receipt-1", expires)
	require.NoError(t, err)
	assert.False(t, ok)
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	add := func(name string, score int, game models.GameMode, offset time.Duration) {
		require.NoError(t, store.Add(ctx, models.ScoreEntry{
			Name: name, Score: score, Wave: 1, Game: game, Date: base.Add(offset),
		}))
	}
	add("a", 10, models.BaseDefender, 0)
	add("b", 30, models.BaseDefender, time.Second)
	add("c", 10, models.BaseDefender, 2*time.Second)
	add("d", 5, models.Snake, 0)

	entries, err := store.List(ctx, models.BaseDefender, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Name)
	assert.Equal(t, "a", entries[1].Name)

	all, err := store.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
