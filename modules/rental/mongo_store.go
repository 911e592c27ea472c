package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the name of the rentals collection in a tenant database.
const Collection = "Rental"

// MongoStore is a Store over one tenant database.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore binds a store to db. It performs no I/O.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), now: time.Now}
}

// EnsureIndexes creates the lookup indexes used by the queries below.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "webtoon", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}}},
		{Keys: bson.D{{Key: "startDate", Value: -1}}},
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create rental indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, r *Rental) error {
	now := s.now().UTC()
	if r.ID.IsZero() {
		r.ID = bson.NewObjectID()
	}
	if r.EndDate.IsZero() {
		r.EndDate = EndDate(r.StartDate, r.PeriodDays)
	}
	r.CreatedAt, r.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Rental, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var r Rental
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find rental: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) ActiveByUser(ctx context.Context, userID string) ([]Rental, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.find(ctx, bson.D{
		{Key: "user", Value: oid},
		{Key: "status", Value: StatusActive},
	})
}

func (s *MongoStore) Expired(ctx context.Context, now time.Time) ([]Rental, error) {
	return s.find(ctx, bson.D{
		{Key: "status", Value: StatusActive},
		{Key: "endDate", Value: bson.D{{Key: "$lt", Value: now.UTC()}}},
	})
}

func (s *MongoStore) ByWebtoon(ctx context.Context, webtoonID string) ([]Rental, error) {
	oid, err := bson.ObjectIDFromHex(webtoonID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.find(ctx, bson.D{{Key: "webtoon", Value: oid}})
}

func (s *MongoStore) Update(ctx context.Context, r *Rental) error {
	r.UpdatedAt = s.now().UTC()
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: r.ID}}, r)
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.D) ([]Rental, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find rentals: %w", err)
	}
	rentals := []Rental{}
	if err := cur.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("decode rentals: %w", err)
	}
	return rentals, nil
}
