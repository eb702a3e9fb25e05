package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoresync/account-service/internal/core/domain"
)

// newTestRepository connects to TEST_MONGO_URI and returns a repository on a
// throwaway database. The test is skipped when no server is configured.
func newTestRepository(t *testing.T) (*AccountRepository, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	dbName := fmt.Sprintf("accounts_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: dbName})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = Disconnect(ctx, client)
	})

	repo := NewAccountRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo, db
}

func TestAccountRepository_InsertAndFind(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("hash"), SyncEnabled: true})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	acc, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, acc.ID)
	assert.Equal(t, []byte("hash"), acc.PasswordHash)
	assert.True(t, acc.SyncEnabled)
	assert.Nil(t, acc.LastLoginAt)

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "ALICE")
	require.NoError(t, err)
	assert.False(t, exists, "usernames are case-sensitive")
}

func TestAccountRepository_FindMissing(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAccountRepository_ConcurrentInsertSameUsername(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Insert(ctx, &domain.Account{Username: "race", PasswordHash: []byte("h")})
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

func TestAccountRepository_UpdateFields(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("old"), SyncEnabled: true})
	require.NoError(t, err)

	off := false
	login := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.UpdateFields(ctx, "alice", domain.AccountUpdate{
		PasswordHash: []byte("new"),
		SyncEnabled:  &off,
		LastLoginAt:  &login,
	}))

	acc, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), acc.PasswordHash)
	assert.False(t, acc.SyncEnabled)
	require.NotNil(t, acc.LastLoginAt)
	assert.True(t, login.Equal(*acc.LastLoginAt))

	err = repo.UpdateFields(ctx, "ghost", domain.AccountUpdate{SyncEnabled: &off})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAccountRepository_RenameUsername(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &domain.Account{Username: "alice", PasswordHash: []byte("h1")})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &domain.Account{Username: "bob", PasswordHash: []byte("h2")})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.RenameUsername(ctx, "alice", "bob"), domain.ErrDuplicateUsername)
	assert.ErrorIs(t, repo.RenameUsername(ctx, "ghost", "carol"), domain.ErrUserNotFound)

	require.NoError(t, repo.RenameUsername(ctx, "alice", "carol"))
	_, err = repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	acc, err := repo.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []byte("h1"), acc.PasswordHash)
}

func TestActivityRepository_Insert(t *testing.T) {
	_, db := newTestRepository(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	require.NoError(t, repo.InsertActivity(ctx, domain.ActivityEvent{
		Username: "alice",
		Kind:     domain.ActivityLogin,
		At:       time.Now(),
	}))

	n, err := db.Collection(activityCollection).CountDocuments(ctx, map[string]string{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
