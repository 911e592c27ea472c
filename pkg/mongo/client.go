package mongo

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// clientOptions builds driver options for a client with the given pool size.
func clientOptions(cfg Config, poolSize uint64) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(poolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads)
}

// New connects the control-plane client, retrying up to cfg.RetryAttempts
// times. The context bounds the whole retry loop.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for i := range attempts {
		client, err := connect(ctx, clientOptions(cfg, cfg.MaxPoolSize))
		if err == nil {
			return client, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// NewTenantClient opens a dedicated client for one tenant database.
// It makes a single attempt; callers decide whether to retry.
func NewTenantClient(ctx context.Context, cfg Config) (*mongo.Client, error) {
	client, err := connect(ctx, clientOptions(cfg, cfg.TenantPoolSize))
	if err != nil {
		return nil, errors.Join(ErrFailedToConnectToMongo, err)
	}
	return client, nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return client, nil
}

// DatabaseName returns the database named in the URI path, or
// DefaultDatabase when the path is empty. Seed lists with several hosts
// are not valid URLs, so the path is located by hand.
func DatabaseName(uri string) (string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || (scheme != "mongodb" && scheme != "mongodb+srv") {
		return "", errors.Join(ErrInvalidURI, errors.New("unsupported scheme in "+redact(uri)))
	}
	rest, _, _ = strings.Cut(rest, "?")
	_, path, ok := strings.Cut(rest, "/")
	if !ok || path == "" {
		return DefaultDatabase, nil
	}
	name, err := url.PathUnescape(strings.Trim(path, "/"))
	if err != nil {
		return "", errors.Join(ErrInvalidURI, err)
	}
	if name == "" {
		return DefaultDatabase, nil
	}
	return name, nil
}

// redact drops credentials so the uri can appear in errors.
func redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "<malformed>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
