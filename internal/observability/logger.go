package observability

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

const (
	ctxKeySendID ctxKey = "send_id"
)

// basic global logger, JSON to stderr so library output never mixes with
// the host application's stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

func Logger() *slog.Logger {
	return logger
}

// SetLogger lets the embedding application redirect engine logs.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// WithSendID stores the id of one send cycle in the context.
func WithSendID(ctx context.Context, sendID string) context.Context {
	return context.WithValue(ctx, ctxKeySendID, sendID)
}

// LoggerFromContext adds send_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	sendID, _ := ctx.Value(ctxKeySendID).(string)
	if sendID == "" {
		return logger
	}
	return logger.With("send_id", sendID)
}
