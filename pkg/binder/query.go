package binder

import "net/http"

// Query creates a query parameter binder function.
//
// Struct tags:
//   - `query:"name"` binds to query parameter "name"
//   - `query:"-"` skips the field
//
// Slices accept repeated (?tags=a&tags=b) and comma-separated (?tags=a,b)
// values; pointers mark optional fields.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bind(v, "query", func(name string) []string { return q[name] }, ErrFailedToParseQuery)
	}
}
