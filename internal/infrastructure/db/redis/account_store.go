package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/scoresync/account-service/internal/core/domain"
)

const defaultAccountPrefix = "accounts:user:"

// Every mutation runs as a Lua script, which Redis executes atomically, so
// the existence checks and the writes they guard cannot interleave with
// another client's commands.
var (
	insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

	updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

	renameScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('RENAME', KEYS[1], KEYS[2])
redis.call('HSET', KEYS[2], 'username', ARGV[1], 'updated_at', ARGV[2])
return 1
`)
)

// Hash field names.
const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldPasswordHash = "password_hash"
	fieldSyncEnabled  = "sync_enabled"
	fieldLastLoginAt  = "last_login_at"
	fieldLastLogoutAt = "last_logout_at"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// AccountStore implements ports.CredentialStore with one Redis hash per
// account, keyed by username.
type AccountStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewAccountStore(client *redis.Client) *AccountStore {
	return &AccountStore{
		client: client,
		prefix: defaultAccountPrefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountStore) key(username string) string {
	return s.prefix + username
}

func (s *AccountStore) Exists(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(username)).Result()
	if err != nil {
		return false, storeErr("exists", err)
	}
	return n > 0, nil
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	fields, err := s.client.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrUserNotFound
	}
	acc, err := decodeAccount(fields)
	if err != nil {
		return nil, storeErr("decode account", err)
	}
	return acc, nil
}

func (s *AccountStore) Insert(ctx context.Context, account *domain.Account) (string, error) {
	id := uuid.NewString()
	now := s.now()
	created := account.CreatedAt
	if created.IsZero() {
		created = now
	}

	args := []any{
		fieldID, id,
		fieldUsername, account.Username,
		fieldPasswordHash, account.PasswordHash,
		fieldSyncEnabled, formatBool(account.SyncEnabled),
		fieldCreatedAt, formatTime(created),
		fieldUpdatedAt, formatTime(now),
	}
	if account.LastLoginAt != nil {
		args = append(args, fieldLastLoginAt, formatTime(*account.LastLoginAt))
	}
	if account.LastLogoutAt != nil {
		args = append(args, fieldLastLogoutAt, formatTime(*account.LastLogoutAt))
	}

	ok, err := insertScript.Run(ctx, s.client, []string{s.key(account.Username)}, args...).Int()
	if err != nil {
		return "", storeErr("insert account", err)
	}
	if ok == 0 {
		return "", domain.ErrDuplicateUsername
	}
	return id, nil
}

func (s *AccountStore) UpdateFields(ctx context.Context, username string, update domain.AccountUpdate) error {
	args := []any{fieldUpdatedAt, formatTime(s.now())}
	if update.PasswordHash != nil {
		args = append(args, fieldPasswordHash, update.PasswordHash)
	}
	if update.SyncEnabled != nil {
		args = append(args, fieldSyncEnabled, formatBool(*update.SyncEnabled))
	}
	if update.LastLoginAt != nil {
		args = append(args, fieldLastLoginAt, formatTime(*update.LastLoginAt))
	}
	if update.LastLogoutAt != nil {
		args = append(args, fieldLastLogoutAt, formatTime(*update.LastLogoutAt))
	}

	ok, err := updateScript.Run(ctx, s.client, []string{s.key(username)}, args...).Int()
	if err != nil {
		return storeErr("update account", err)
	}
	if ok == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *AccountStore) RenameUsername(ctx context.Context, oldUsername, newUsername string) error {
	keys := []string{s.key(oldUsername), s.key(newUsername)}
	res, err := renameScript.Run(ctx, s.client, keys, newUsername, formatTime(s.now())).Int()
	if err != nil {
		return storeErr("rename account", err)
	}
	switch res {
	case -1:
		return domain.ErrUserNotFound
	case 0:
		return domain.ErrDuplicateUsername
	}
	return nil
}

func decodeAccount(fields map[string]string) (*domain.Account, error) {
	acc := &domain.Account{
		ID:           fields[fieldID],
		Username:     fields[fieldUsername],
		PasswordHash: []byte(fields[fieldPasswordHash]),
		SyncEnabled:  fields[fieldSyncEnabled] == "1",
	}

	var err error
	if acc.CreatedAt, err = parseTime(fields[fieldCreatedAt]); err != nil {
		return nil, err
	}
	if acc.UpdatedAt, err = parseTime(fields[fieldUpdatedAt]); err != nil {
		return nil, err
	}
	if acc.LastLoginAt, err = parseOptionalTime(fields[fieldLastLoginAt]); err != nil {
		return nil, err
	}
	if acc.LastLogoutAt, err = parseOptionalTime(fields[fieldLastLogoutAt]); err != nil {
		return nil, err
	}
	return acc, nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
