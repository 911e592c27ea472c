package organization

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the organizations collection of the control-plane
// database.
const Collection = "Organization"

var hiddenFields = bson.D{
	{Key: "verificationToken", Value: 0},
	{Key: "verificationExpires", Value: 0},
}

// MongoStore is a Store over the control-plane database.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore binds a store to db. It performs no I/O.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), now: time.Now}
}

// EnsureIndexes creates the organization indexes. Subdomains are unique
// among organizations that are not deleted, which needs MongoDB 6.0 for
// $in in a partial filter.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	live := bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{
		StatusPending, StatusActive, StatusInactive, StatusSuspended,
	}}}}}
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subdomain", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(live).SetName("subdomain_live"),
		},
		{
			Keys:    bson.D{{Key: "registrationNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("registrationNumber_unique"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "subscription.plan", Value: 1}}},
		{Keys: bson.D{{Key: "address.coordinates", Value: "2dsphere"}}},
	})
	if err != nil {
		return fmt.Errorf("create organization indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Organization, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *MongoStore) FindBySubdomain(ctx context.Context, subdomain string, statuses ...Status) (*Organization, error) {
	filter := bson.D{{Key: "subdomain", Value: strings.ToLower(strings.TrimSpace(subdomain))}}
	if len(statuses) > 0 {
		filter = append(filter, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: statuses}}})
	} else {
		// Prefer a live organization over deleted ones with the same subdomain.
		return s.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	}
	return s.findOne(ctx, filter)
}

func (s *MongoStore) SubdomainAvailable(ctx context.Context, subdomain string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "subdomain", Value: strings.ToLower(strings.TrimSpace(subdomain))},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: StatusDeleted}}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check subdomain: %w", err)
	}
	return n == 0, nil
}

func (s *MongoStore) RegistrationExists(ctx context.Context, number string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "registrationNumber", Value: strings.TrimSpace(number)}},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check registration number: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (*Organization, error) {
	var o Organization
	if err := s.coll.FindOne(ctx, filter, opts...).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find organization: %w", err)
	}
	return &o, nil
}

// Create inserts o and fills its id and timestamps.
func (s *MongoStore) Create(ctx context.Context, o *Organization) error {
	now := s.now().UTC()
	if o.ID.IsZero() {
		o.ID = bson.NewObjectID()
	}
	o.CreatedAt, o.UpdatedAt = now, now
	o.Stats.LastActivity = &now
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return duplicateError(err, "insert organization")
	}
	return nil
}

// Update replaces the stored document of o.
func (s *MongoStore) Update(ctx context.Context, o *Organization) error {
	now := s.now().UTC()
	o.UpdatedAt = now
	o.Stats.LastActivity = &now
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: o.ID}}, o)
	if err != nil {
		return duplicateError(err, "update organization")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the document with id. Missing documents are a no-op.
func (s *MongoStore) Remove(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("remove organization: %w", err)
	}
	return nil
}

func duplicateError(err error, op string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if strings.Contains(err.Error(), "registrationNumber") {
		return ErrRegistrationExists
	}
	return ErrSubdomainTaken
}

// List returns one page of organizations and the total number matching
// the filter.
func (s *MongoStore) List(ctx context.Context, q ListQuery) ([]Organization, int64, error) {
	filter := listFilter(q)

	order := -1
	if q.Order == "asc" {
		order = 1
	}
	opts := options.Find().
		SetProjection(hiddenFields).
		SetSort(bson.D{{Key: q.Sort, Value: order}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	orgs := []Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, 0, fmt.Errorf("decode organizations: %w", err)
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}
	return orgs, total, nil
}

func listFilter(q ListQuery) bson.D {
	filter := bson.D{}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: q.Status})
	}
	if q.Search != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := bson.A{}
		for _, field := range []string{"name", "displayName", "subdomain", "registrationNumber"} {
			or = append(or, bson.D{{Key: field, Value: re}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}
	return filter
}
