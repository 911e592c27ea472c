// Package binder decodes HTTP request data into typed request structs.
//
// Binders share one signature, func(r *http.Request, v any) error, and are
// applied in order by handler.Wrap:
//
//	type updateRequest struct {
//		ID   string `path:"id" json:"-"`
//		Name string `json:"name"`
//	}
//
//	r.Put("/organizations/{id}", handler.Wrap(h.update,
//		handler.WithBinders[handler.Context, updateRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//	))
//
// JSON decodes strictly: unknown fields, trailing data and bodies larger
// than DefaultMaxJSONSize are rejected. Query and Path support strings,
// integers, floats, booleans, pointers and slices of those.
//
// All failures wrap one of the package's sentinel errors, so callers can
// map them with errors.Is.
package binder
