// Package logger builds the service's *slog.Logger.
//
// New applies functional options and wraps the handler with
// LogHandlerDecorator, which copies request-scoped values (request id,
// tenant key) from the context of every record:
//
//	log := logger.New(
//		logger.WithEnvironment(logger.EnvProduction, "webix-udirdlaga"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//
// NewFromConfig does the same from environment variables (APP_ENV,
// LOG_LEVEL, LOG_FORMAT). Attribute helpers in attr.go keep key names
// consistent; Error and Errors return an empty attribute for nil errors.
package logger
