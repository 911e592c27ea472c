package binder

import "net/http"

// Path creates a path parameter binder using the router's extractor,
// e.g. chi.URLParam. Fields are matched by their `path` tag.
//
//	type getRequest struct {
//		ID string `path:"id"`
//	}
//
//	r.Get("/organizations/{id}", handler.Wrap(h.get,
//		handler.WithBinders[handler.Context, getRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bind(v, "path", func(name string) []string {
			if s := extractor(r, name); s != "" {
				return []string{s}
			}
			return nil
		}, ErrFailedToParsePath)
	}
}
