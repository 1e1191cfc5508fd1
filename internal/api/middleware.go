package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by RequestID, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it back
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// AccessLog logs each completed request: INFO normally, WARN for 4xx, ERROR for 5xx
func AccessLog(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, logRequest)
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	event := log.Info()
	if p.StatusCode >= 500 {
		event = log.Error()
	} else if p.StatusCode >= 400 {
		event = log.Warn()
	}

	path := p.URL.Path
	if p.URL.RawQuery != "" {
		path += "?" + p.URL.RawQuery
	}

	event.
		Str("request_id", RequestIDFromContext(p.Request.Context())).
		Str("method", p.Request.Method).
		Str("path", path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Int64("duration_ms", time.Since(p.TimeStamp).Milliseconds()).
		Str("ip", p.Request.RemoteAddr).
		Msg("Request completed")
}

// Recovery turns a panic into a logged 500 with a generic message
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Str("request_id", RequestIDFromContext(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Msg("Panic recovered")
				respondError(w, http.StatusInternalServerError, msgInternalError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NewServerHandler wraps the router in the middleware chain used by the server
func NewServerHandler(router http.Handler, allowedOrigins []string) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)
	return RequestID(AccessLog(Recovery(cors(router))))
}
