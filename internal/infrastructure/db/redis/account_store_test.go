package redis

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoresync/account-service/internal/core/domain"
)

// newTestStore connects to TEST_REDIS_ADDR and isolates the test under a
// unique key prefix. The test is skipped when no server is configured.
func newTestStore(t *testing.T) (*AccountStore, *redis.Client) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	require.NoError(t, err)

	store := NewAccountStore(client)
	store.prefix = fmt.Sprintf("test:%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, store.prefix+"*").Result()
		if len(keys) > 0 {
			_ = client.Del(ctx, keys...).Err()
		}
		_ = client.Close()
	})
	return store, client
}

func TestAccountStore_InsertAndFind(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	login := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	id, err := store.Insert(ctx, &domain.Account{
		Username:     "alice",
		PasswordHash: []byte("$2a$04$hash"),
		SyncEnabled:  true,
		LastLoginAt:  &login,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	acc, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, acc.ID)
	assert.Equal(t, "alice", acc.Username)
	assert.Equal(t, []byte("$2a$04$hash"), acc.PasswordHash)
	assert.True(t, acc.SyncEnabled)
	require.NotNil(t, acc.LastLoginAt)
	assert.True(t, login.Equal(*acc.LastLoginAt))
	assert.Nil(t, acc.LastLogoutAt)

	_, err = store.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestAccountStore_ConcurrentInsertSameUsername(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Insert(ctx, &domain.Account{Username: "race", PasswordHash: []byte("h")})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	}
	assert.Equal(t, 1, successes)
}

func TestAccountStore_UpdateFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("old"), SyncEnabled: true})
	require.NoError(t, err)

	off := false
	logout := time.Now().UTC()
	require.NoError(t, store.UpdateFields(ctx, "alice", domain.AccountUpdate{
		PasswordHash: []byte("new"),
		SyncEnabled:  &off,
		LastLogoutAt: &logout,
	}))

	acc, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), acc.PasswordHash)
	assert.False(t, acc.SyncEnabled)
	require.NotNil(t, acc.LastLogoutAt)
	assert.True(t, logout.Equal(*acc.LastLogoutAt))

	err = store.UpdateFields(ctx, "ghost", domain.AccountUpdate{SyncEnabled: &off})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	exists, err := store.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists, "update of a missing account must not create it")
}

func TestAccountStore_RenameUsername(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("h1")})
	require.NoError(t, err)
	_, err = store.Insert(ctx, &domain.Account{Username: "bob", PasswordHash: []byte("h2")})
	require.NoError(t, err)

	assert.ErrorIs(t, store.RenameUsername(ctx, "alice", "bob"), domain.ErrDuplicateUsername)
	assert.ErrorIs(t, store.RenameUsername(ctx, "ghost", "carol"), domain.ErrUserNotFound)

	require.NoError(t, store.RenameUsername(ctx, "alice", "carol"))
	_, err = store.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	acc, err := store.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", acc.Username)
	assert.Equal(t, []byte("h1"), acc.PasswordHash)
}

func TestActivityStream_InsertActivity(t *testing.T) {
	_, client := newTestStore(t)
	ctx := context.Background()

	stream := NewActivityStream(client)
	stream.stream = fmt.Sprintf("test:%d:activity", time.Now().UnixNano())
	t.Cleanup(func() { _ = client.Del(ctx, stream.stream).Err() })

	require.NoError(t, stream.InsertActivity(ctx, domain.ActivityEvent{
		Username: "alice",
		Kind:     domain.ActivityRenamed,
		At:       time.Now(),
		Detail:   "from=al",
	}))

	msgs, err := client.XRange(ctx, stream.stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "renamed", msgs[0].Values["kind"])
	assert.Equal(t, "from=al", msgs[0].Values["detail"])
}

func TestDecodeAccount_BadTimestamp(t *testing.T) {
	_, err := decodeAccount(map[string]string{
		fieldID:        "1",
		fieldUsername:  "alice",
		fieldCreatedAt: "yesterday",
	})
	assert.Error(t, err)
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "1", formatBool(true))
	assert.Equal(t, "0", formatBool(false))
}
