package mainlib

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"go.senan.xyz/lyricsmd/clientutil"
)

// Logging installs the default logger. The returned exit func exits with code, or 1 if
// an error was logged during the run.
func Logging() (exit func(code int)) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelWarn)
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	h := &slogErrorHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelError)

	return func(code int) {
		if code == 0 && h.hadSlogError.Load() {
			code = 1
		}
		os.Exit(code)
	}
}

type slogErrorHandler struct {
	slog.Handler
	hadSlogError atomic.Bool
}

func (n *slogErrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		n.hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}

// responseCacheTTL bounds how long a response is reused within one run.
const responseCacheTTL = 10 * time.Minute

// WrapClient wraps the default transport so every client logs its requests, identifies itself
// with userAgent, and doesn't repeat a request made earlier in the run.
func WrapClient(userAgent string) {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(userAgent),
		clientutil.WithCache(responseCacheTTL),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}
