package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// TokenStore is the slice of the refresh token store the worker needs.
type TokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

const defaultInterval = 10 * time.Minute

// Worker periodically drops expired refresh tokens so the store does not
// grow without bound.
type Worker struct {
	tokens   TokenStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Worker)

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

func New(tokens TokenStore, opts ...Option) (*Worker, error) {
	if tokens == nil {
		return nil, errors.New("cleanup: token store is required")
	}
	w := &Worker{
		tokens:   tokens,
		interval: defaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Start runs the sweep loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "refresh token cleanup started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "refresh token cleanup stopped")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep.
func (w *Worker) RunOnce(ctx context.Context) {
	removed, err := w.tokens.DeleteExpired(ctx, w.now())
	if err != nil {
		w.logger.ErrorContext(ctx, "refresh token sweep failed", "error", err)
		return
	}
	if removed > 0 {
		w.logger.InfoContext(ctx, "refresh tokens swept", "removed", removed)
	}
}
