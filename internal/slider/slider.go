// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package slider implements the auto-advancing news carousel.
package slider

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how long a slide stays before the carousel advances.
const DefaultInterval = 5 * time.Second

// Ticker is the part of *time.Ticker the carousel uses.
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

// NewTickerFunc creates a Ticker firing every d.
type NewTickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }
func (r realTicker) Stop() { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Carousel cycles through a list of slides. It is safe for concurrent use.
type Carousel[T any] struct {
	interval  time.Duration
	newTicker NewTickerFunc

	mu      sync.Mutex
	slides  []T
	current int
	ticker  Ticker
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Carousel.
type Option func(*options)

type options struct {
	interval  time.Duration
	newTicker NewTickerFunc
}

// WithInterval sets the auto-advance interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithTicker replaces the ticker factory, e.g. with a fake in tests.
func WithTicker(fn NewTickerFunc) Option {
	return func(o *options) { o.newTicker = fn }
}

// New creates a stopped carousel over slides.
func New[T any](slides []T, opts ...Option) *Carousel[T] {
	o := options{interval: DefaultInterval, newTicker: NewRealTicker}
	for _, opt := range opts {
		opt(&o)
	}
	return &Carousel[T]{
		interval:  o.interval,
		newTicker: o.newTicker,
		slides:    append([]T(nil), slides...),
	}
}

// Interval returns the auto-advance interval.
func (c *Carousel[T]) Interval() time.Duration { return c.interval }

// Len returns the number of slides.
func (c *Carousel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slides)
}

// Index returns the current slide index. It is 0 for an empty carousel.
func (c *Carousel[T]) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Current returns the current slide and false when there are no slides.
func (c *Carousel[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if len(c.slides) == 0 {
		return zero, false
	}
	return c.slides[c.current], true
}

// Slides returns a copy of the slides.
func (c *Carousel[T]) Slides() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.slides...)
}

// SetSlides replaces the slides. The current index is kept when it is still
// in range and reset to 0 otherwise.
func (c *Carousel[T]) SetSlides(slides []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slides = append([]T(nil), slides...)
	if c.current >= len(c.slides) {
		c.current = 0
	}
}

// Next moves to the following slide, wrapping around.
func (c *Carousel[T]) Next() { c.move(func(i, n int) int { return (i + 1) % n }) }

// Prev moves to the previous slide, wrapping around.
func (c *Carousel[T]) Prev() { c.move(func(i, n int) int { return (i - 1 + n) % n }) }

// Select jumps to slide i. Out of range indexes are ignored.
func (c *Carousel[T]) Select(i int) {
	c.move(func(cur, n int) int {
		if i < 0 || i >= n {
			return cur
		}
		return i
	})
}

// move applies a manual move and restarts the interval.
func (c *Carousel[T]) move(next func(i, n int) int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slides) == 0 {
		return
	}
	c.current = next(c.current, len(c.slides))
	if c.ticker != nil {
		c.ticker.Reset(c.interval)
	}
}

func (c *Carousel[T]) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.slides); n > 0 {
		c.current = (c.current + 1) % n
	}
}

// Start begins auto-advancing until ctx is done or Stop is called. Calling
// Start on a running carousel is a no-op.
func (c *Carousel[T]) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := c.newTicker(c.interval)
	done := make(chan struct{})
	c.ticker, c.cancel, c.done = ticker, cancel, done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				c.advance()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels auto-advance and waits for the ticker to be released.
func (c *Carousel[T]) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.ticker = nil, nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether auto-advance is active.
func (c *Carousel[T]) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
