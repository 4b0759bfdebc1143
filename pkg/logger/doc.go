// Package logger builds the *slog.Logger used across idvault.
//
// New takes functional options for format, level, output, environment tags,
// context extractors and redaction. Attribute helpers in attr.go keep key
// names consistent; Contact always masks its value so addresses never reach
// log storage in clear text.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "idvault"),
//	    logger.WithContextExtractors(httpapi.RequestIDExtractor()),
//	    logger.WithRedactedKeys("code", "password"),
//	)
//	log.InfoContext(ctx, "otp issued", logger.Contact(c.Value), logger.Purpose("login"))
//
// Config lets cmd/idvault drive the same options from LOG_LEVEL, LOG_FORMAT
// and APP_ENV.
package logger
