// Package redis connects to Redis and provides the Redis-backed pieces of
// the service: a namespaced key-value Storage, a token Denylist used on
// logout, and a readiness Healthcheck.
//
// Redis is optional. With REDIS_URL unset, Config.Enabled reports false and
// the server uses in-process replacements.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	store := redis.NewStorage(client, cfg.Redis.KeyPrefix)
//	denylist := redis.NewDenylist(store)
package redis
