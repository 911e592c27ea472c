package tenantdb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"

	mongoclient "github.com/webix/udirdlaga/pkg/mongo"
)

// MongoOpener opens a dedicated client per logical database against the
// server described by Config.
type MongoOpener struct {
	cfg mongoclient.Config
}

// NewMongoOpener returns an Opener backed by the MongoDB driver.
func NewMongoOpener(cfg mongoclient.Config) *MongoOpener {
	return &MongoOpener{cfg: cfg}
}

// Open implements Opener.
func (o *MongoOpener) Open(ctx context.Context, database string) (Handle, error) {
	client, err := mongoclient.NewTenantClient(ctx, o.cfg)
	if err != nil {
		return nil, err
	}
	return &mongoHandle{client: client, db: client.Database(database)}, nil
}

// ClientHandle wraps an already connected client, used for the
// control-plane connection created at startup.
func ClientHandle(client *mongo.Client, database string) Handle {
	return &mongoHandle{client: client, db: client.Database(database)}
}

type mongoHandle struct {
	client *mongo.Client
	db     *mongo.Database
}

func (h *mongoHandle) Database() *mongo.Database { return h.db }

func (h *mongoHandle) Ping(ctx context.Context) error { return h.client.Ping(ctx, nil) }

func (h *mongoHandle) Close(ctx context.Context) error { return h.client.Disconnect(ctx) }
