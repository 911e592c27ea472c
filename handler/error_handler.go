package handler

import (
	"log/slog"
	"net/http"

	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/requestid"
)

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// NewErrorHandler returns the error handler shared by all wrapped
// handlers: it logs client errors at warn and server errors at error, then
// writes a JSON envelope.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		WriteError(log, ctx.ResponseWriter(), ctx.Request(), err)
	}
}

// WriteError logs err and writes it as a JSON envelope. Middleware outside
// handler.Wrap uses it to keep error bodies uniform.
func WriteError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	info := classifyError(err)

	level := slog.LevelError
	if isClientError(info.StatusCode) {
		level = slog.LevelWarn
	}
	log.LogAttrs(r.Context(), level, "request error",
		logger.RequestID(requestid.FromContext(r.Context())),
		logger.Error(err),
		slog.Int("status_code", info.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("error_handler"),
	)

	if renderErr := JSONError(err).Render(w, r); renderErr != nil {
		log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
	}
}
