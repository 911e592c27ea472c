// Package handler provides type-safe HTTP request handling.
//
// Handlers are generic functions that receive a decoded request struct and
// return a Response. Wrap turns them into http.HandlerFunc, running the
// configured binders first:
//
//	type loginRequest struct {
//		Username string `json:"username"`
//		Password string `json:"password"`
//	}
//
//	func (h *Handler) login(ctx handler.Context, req loginRequest) handler.Response {
//		res, err := h.svc.Login(ctx, req.Username, req.Password)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(res, handler.WithMessage("Login successful"))
//	}
//
//	r.Post("/login", handler.Wrap(h.login,
//		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
//	))
//
// # Responses
//
// Every JSON body uses Envelope:
//
//	{"success": true, "message": "...", "data": {...}}
//	{"success": false, "message": "...", "error": "not_found"}
//	{"success": false, "message": "Validation failed", "error": "validation_error",
//	 "errors": [{"field": "email", "message": "is required"}]}
//
// JSONError maps HTTPError to its status, ValidationError to 400 with
// per-field messages, binder errors to 400 or 415, and every other error
// to a 500 whose details stay in the logs.
//
// # Errors
//
// NewErrorHandler logs and renders binding and render failures. WriteError
// does the same for plain middleware so all error bodies look alike.
package handler
