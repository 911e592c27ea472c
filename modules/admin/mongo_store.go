package admin

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

// Collection is the admins collection of the control-plane database.
const Collection = "Admin"

// MongoStore is a Store over the control-plane database.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore binds a store to db. It performs no I/O.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), now: time.Now}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create admin indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	return s.findOne(ctx, bson.D{{Key: "username", Value: strings.TrimSpace(username)}})
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Admin, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*Admin, error) {
	var a Admin
	err := s.coll.FindOne(ctx, filter).Decode(&a)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

func (s *MongoStore) Create(ctx context.Context, a *Admin) error {
	now := s.now().UTC()
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAdminExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveLockState(ctx context.Context, id string, state auth.LockState) error {
	var lock any
	if state.LockUntil != nil {
		lock = *state.LockUntil
	}
	return s.set(ctx, id, bson.D{
		{Key: "loginAttempts", Value: state.Attempts},
		{Key: "lockUntil", Value: lock},
	})
}

func (s *MongoStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return s.set(ctx, id, bson.D{{Key: "lastLogin", Value: at.UTC()}})
}

func (s *MongoStore) set(ctx context.Context, id string, fields bson.D) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	fields = append(fields, bson.E{Key: "updatedAt", Value: s.now().UTC()})
	if _, err := s.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: fields}}); err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	return nil
}
