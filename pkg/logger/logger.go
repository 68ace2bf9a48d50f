// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx creates a logger with the request ID already attached, so every
// log line from a handler is automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product created", "id", p.ID)
//	// → time=... level=INFO msg="product created" request_id=a1b2c3d4 id=7
//
// When MONGO_LOG_URI is configured, UseMongo tees every record into an
// asynchronous MongoDB handler as a queryable audit trail of mutations.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/stockroom/config"
)

var L *slog.Logger

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

func baseHandler() slog.Handler {
	switch config.AppEnv() {
	case "production", "prod":
		// Structured JSON for log aggregators.
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		// Human-readable for dev.
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// UseMongo attaches the async MongoDB handler alongside the stdout handler.
// The returned handler must be Closed at shutdown to flush pending records.
func UseMongo(uri, db, collection string) (*MongoHandler, error) {
	mh, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return nil, err
	}
	L = slog.New(NewMultiHandler(baseHandler(), mh))
	slog.SetDefault(L)
	return mh, nil
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the *slog.Logger stored in ctx by the Logger middleware
// (pre-tagged with request_id). Falls back to the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
