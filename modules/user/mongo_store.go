package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/webix/udirdlaga/pkg/auth"
)

// Collection is the name of the users collection in a tenant database.
const Collection = "User"

// MongoStore is a Store over one tenant database.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore binds a store to db. It performs no I/O.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), now: time.Now}
}

// EnsureIndexes creates the unique username and email indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, bson.D{{Key: "username", Value: strings.TrimSpace(username)}})
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*User, error) {
	var u User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Create inserts u and fills its id and timestamps. The password must
// already be hashed.
func (s *MongoStore) Create(ctx context.Context, u *User) error {
	now := s.now().UTC()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveLockState(ctx context.Context, id string, state auth.LockState) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	set := bson.D{
		{Key: "loginAttempts", Value: state.Attempts},
		{Key: "updatedAt", Value: s.now().UTC()},
	}
	update := bson.D{}
	if state.LockUntil != nil {
		set = append(set, bson.E{Key: "lockUntil", Value: *state.LockUntil})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "lockUntil", Value: ""}}})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	if _, err := s.coll.UpdateByID(ctx, oid, update); err != nil {
		return fmt.Errorf("save lock state: %w", err)
	}
	return nil
}

func (s *MongoStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "lastLogin", Value: at.UTC()},
		{Key: "updatedAt", Value: s.now().UTC()},
	}}}
	if _, err := s.coll.UpdateByID(ctx, oid, update); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
