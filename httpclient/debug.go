package httpclient

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// defaultLogger is the package-level zerolog logger used when no logger is
// injected via WithLogger.
var defaultLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// logRequest logs an outgoing request. Cookie and Authorization values are
// never logged.
func logRequest(logger zerolog.Logger, operation string, req *http.Request) {
	logger.Debug().
		Str("operation", operation).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get(correlationHeader)).
		Msg("HTTP request")
}

// logResponse logs a completed request with its timing.
func logResponse(logger zerolog.Logger, operation string, resp *http.Response, duration time.Duration) {
	logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Int64("content_length", resp.ContentLength).
		Msg("HTTP response")
}
