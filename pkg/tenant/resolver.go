package tenant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Default request locations of the tenant key.
const (
	DefaultPathPrefix = "/api/tenant/"
	DefaultQueryParam = "subdomain"
	DefaultHeader     = "X-Tenant-Subdomain"
	DefaultBodyField  = "subdomain"

	defaultMaxBodyBytes = 1 << 20
)

// Resolver extracts a raw tenant key from a request. An empty result
// with a nil error means the source carries no key.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// PathResolver reads the path segment that follows Prefix,
// e.g. "acme" from "/api/tenant/acme/auth/login".
type PathResolver struct {
	Prefix string
}

// NewPathResolver creates a path resolver; an empty prefix selects
// DefaultPathPrefix.
func NewPathResolver(prefix string) *PathResolver {
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &PathResolver{Prefix: prefix}
}

// Resolve returns the first path segment after Prefix. Paths outside
// Prefix carry no key.
func (p *PathResolver) Resolve(r *http.Request) (string, error) {
	rest, ok := strings.CutPrefix(r.URL.Path, p.Prefix)
	if !ok {
		return "", nil
	}
	segment, _, _ := strings.Cut(rest, "/")
	return segment, nil
}

// QueryResolver reads a query parameter.
type QueryResolver struct {
	Param string
}

// NewQueryResolver creates a query resolver; an empty param selects
// DefaultQueryParam.
func NewQueryResolver(param string) *QueryResolver {
	if param == "" {
		param = DefaultQueryParam
	}
	return &QueryResolver{Param: param}
}

// Resolve returns the value of the Param query parameter.
func (q *QueryResolver) Resolve(r *http.Request) (string, error) {
	return r.URL.Query().Get(q.Param), nil
}

// HeaderResolver reads a request header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver; an empty name selects
// DefaultHeader.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve returns the value of the HeaderName header.
func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return r.Header.Get(h.HeaderName), nil
}

// BodyResolver reads a top-level string field of a JSON request body.
// The body is buffered and restored so handlers can decode it again.
// Non-JSON and empty bodies yield no key.
type BodyResolver struct {
	Field    string
	MaxBytes int64
}

// NewBodyResolver creates a body resolver capped at 1 MiB; an empty
// field selects DefaultBodyField.
func NewBodyResolver(field string) *BodyResolver {
	if field == "" {
		field = DefaultBodyField
	}
	return &BodyResolver{Field: field, MaxBytes: defaultMaxBodyBytes}
}

// Resolve reads Field from a JSON object body of at most MaxBytes and
// leaves r.Body readable from the start. Only a read failure is an error.
func (b *BodyResolver) Resolve(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return "", nil
	}

	body := r.Body
	raw, err := io.ReadAll(io.LimitReader(body, b.MaxBytes+1))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	if int64(len(raw)) > b.MaxBytes {
		return "", nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Malformed payloads are reported by the handler that owns them.
		return "", nil
	}
	var value string
	if err := json.Unmarshal(fields[b.Field], &value); err != nil {
		return "", nil
	}
	return value, nil
}

// PriorityResolver consults resolvers in order and returns the first
// non-empty key. In strict mode every source is consulted and a source
// carrying a different key (ignoring case and surrounding spaces) fails
// the request with ErrTenantKeyConflict.
type PriorityResolver struct {
	Resolvers []Resolver
	Strict    bool
}

// NewPriorityResolver creates a non-strict resolver.
func NewPriorityResolver(resolvers ...Resolver) *PriorityResolver {
	return &PriorityResolver{Resolvers: resolvers}
}

// NewDefaultResolver checks path, query, header and JSON body, in that
// order, and rejects requests whose sources disagree.
func NewDefaultResolver() *PriorityResolver {
	return &PriorityResolver{
		Resolvers: []Resolver{
			NewPathResolver(DefaultPathPrefix),
			NewQueryResolver(DefaultQueryParam),
			NewHeaderResolver(DefaultHeader),
			NewBodyResolver(DefaultBodyField),
		},
		Strict: true,
	}
}

// Resolve returns the first non-empty key, trimmed. Source errors are joined
// and reported only when no source yields a key.
func (p *PriorityResolver) Resolve(r *http.Request) (string, error) {
	var (
		chosen string
		errs   []error
	)
	for _, resolver := range p.Resolvers {
		value, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if chosen == "" {
			chosen = value
			if !p.Strict {
				return chosen, nil
			}
			continue
		}
		if !strings.EqualFold(chosen, value) {
			return "", fmt.Errorf("%w: %q and %q", ErrTenantKeyConflict, chosen, value)
		}
	}

	if chosen != "" {
		return chosen, nil
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("resolve tenant key: %w", errors.Join(errs...))
	}
	return "", nil
}

// replayBody serves the buffered prefix followed by the unread remainder.
type replayBody struct {
	io.Reader
	io.Closer
}
