// Package requestid attaches a correlation id to every HTTP request.
//
// The middleware reuses a well-formed X-Request-ID header sent by the
// client, or generates a UUIDv7, stores it in the request context and
// echoes it in the response:
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
// LoggerExtractor plugs the id into pkg/logger so every record written with
// the request context carries "request_id".
package requestid
