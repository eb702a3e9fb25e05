package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoresync/account-service/internal/core/domain"
)

const (
	accountsCollection  = "accounts"
	usernameUniqueIndex = "username_unique"
)

// AccountRepository implements ports.CredentialStore on a MongoDB collection.
// Username uniqueness is enforced by a unique index, so Insert and
// RenameUsername are single atomic writes.
type AccountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		coll: db.Collection(accountsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type accountDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash []byte             `bson:"password_hash"`
	SyncEnabled  bool               `bson:"sync_enabled"`
	LastLoginAt  *time.Time         `bson:"last_login_at,omitempty"`
	LastLogoutAt *time.Time         `bson:"last_logout_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		SyncEnabled:  d.SyncEnabled,
		LastLoginAt:  utcPtr(d.LastLoginAt),
		LastLogoutAt: utcPtr(d.LastLogoutAt),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the unique username index. It must run before the
// repository serves traffic.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName(usernameUniqueIndex).SetUnique(true),
	})
	if err != nil {
		return storeErr("create username index", err)
	}
	return nil
}

func (r *AccountRepository) Exists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count accounts", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find account", err)
	}
	return doc.toDomain(), nil
}

// Insert relies on the unique index: a concurrent insert of the same username
// fails with a duplicate key error instead of creating a second document.
func (r *AccountRepository) Insert(ctx context.Context, account *domain.Account) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now()
	created := account.CreatedAt
	if created.IsZero() {
		created = now
	}
	doc := accountDocument{
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		SyncEnabled:  account.SyncEnabled,
		LastLoginAt:  account.LastLoginAt,
		LastLogoutAt: account.LastLogoutAt,
		CreatedAt:    created,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrDuplicateUsername
		}
		return "", storeErr("insert account", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", storeErr("insert account", fmt.Errorf("unexpected id type %T", res.InsertedID))
	}
	return id.Hex(), nil
}

// UpdateFields applies every assignment in one $set so the document is never
// left partially updated.
func (r *AccountRepository) UpdateFields(ctx context.Context, username string, update domain.AccountUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": r.now()}
	if update.PasswordHash != nil {
		set["password_hash"] = update.PasswordHash
	}
	if update.SyncEnabled != nil {
		set["sync_enabled"] = *update.SyncEnabled
	}
	if update.LastLoginAt != nil {
		set["last_login_at"] = update.LastLoginAt.UTC()
	}
	if update.LastLogoutAt != nil {
		set["last_logout_at"] = update.LastLogoutAt.UTC()
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": set})
	if err != nil {
		return storeErr("update account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RenameUsername is a single conditional update; the unique index rejects
// the write when newUsername is already taken.
func (r *AccountRepository) RenameUsername(ctx context.Context, oldUsername, newUsername string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": oldUsername},
		bson.M{"$set": bson.M{"username": newUsername, "updated_at": r.now()}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateUsername
		}
		return storeErr("rename account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
