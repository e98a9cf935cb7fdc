// Package stream implements the polling loop behind the "real-time" tick
// and trade views. The transport is synchronous HTTP polling; consumers
// only see a restartable, cancellable sequence of normalized batches, so a
// push-based transport can replace the implementation later.
package stream

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"bist-cli/internal/logger"
)

// FetchFunc retrieves the most recent messages for a symbol.
type FetchFunc[T any] func(ctx context.Context, symbol string, limit int) ([]T, error)

// Batch is one rendered window: bounded, most recent last.
// ConsecutiveEmpty counts polls in a row that returned nothing, so the
// renderer can surface a "no data" indicator without the loop stopping.
type Batch[T any] struct {
	Symbol           string
	Items            []T
	ConsecutiveEmpty int
}

// RenderFunc consumes each batch. It runs on the polling goroutine.
type RenderFunc[T any] func(batch Batch[T])

// Config controls pacing and window size.
type Config struct {
	Interval     time.Duration // normal poll pacing
	ErrorBackoff time.Duration // extra sleep after a failed poll
	Window       int           // max messages per batch
}

// Stream polls a recent-messages endpoint. One Stream instance polls one
// symbol at a time; multi-symbol views fetch sequentially per tick.
type Stream[T any] struct {
	fetch FetchFunc[T]
	cfg   Config
	log   *logger.Logger

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// New builds a stream over fetch.
func New[T any](cfg Config, fetch FetchFunc[T], log *logger.Logger) *Stream[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 2 * time.Second
	}
	if cfg.Window <= 0 {
		cfg.Window = 15
	}
	return &Stream[T]{fetch: fetch, cfg: cfg, log: log, sleep: time.Sleep}
}

// Run blocks, polling symbol and rendering every batch until ctx is
// cancelled. Transient errors are reported and followed by a longer
// backoff; the loop itself never terminates on them.
func (s *Stream[T]) Run(ctx context.Context, symbol string, render RenderFunc[T]) error {
	limiter := rate.NewLimiter(rate.Every(s.cfg.Interval), 1)
	consecutiveEmpty := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		items, err := s.fetch(ctx, symbol, s.cfg.Window)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn(ctx, "poll failed", "symbol", symbol, "error", err)
			s.sleep(s.cfg.ErrorBackoff)
			continue
		}

		if len(items) == 0 {
			consecutiveEmpty++
		} else {
			consecutiveEmpty = 0
			if len(items) > s.cfg.Window {
				items = items[len(items)-s.cfg.Window:]
			}
		}

		render(Batch[T]{Symbol: symbol, Items: items, ConsecutiveEmpty: consecutiveEmpty})
	}
}

// RunMulti polls several symbols with one loop, fetching sequentially per
// symbol per tick. Latency therefore scales linearly with symbol count.
func (s *Stream[T]) RunMulti(ctx context.Context, symbols []string, render RenderFunc[T]) error {
	limiter := rate.NewLimiter(rate.Every(s.cfg.Interval), 1)
	empty := make(map[string]int, len(symbols))

	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		for _, symbol := range symbols {
			items, err := s.fetch(ctx, symbol, s.cfg.Window)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn(ctx, "poll failed", "symbol", symbol, "error", err)
				s.sleep(s.cfg.ErrorBackoff)
				continue
			}

			if len(items) == 0 {
				empty[symbol]++
			} else {
				empty[symbol] = 0
				if len(items) > s.cfg.Window {
					items = items[len(items)-s.cfg.Window:]
				}
			}

			render(Batch[T]{Symbol: symbol, Items: items, ConsecutiveEmpty: empty[symbol]})
		}
	}
}
