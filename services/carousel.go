package services

import (
	"context"
	"log"
	"sync"
	"time"

	"innova/models"
)

// Catalog is where the carousel fetches its image list from, once.
type Catalog interface {
	Plates(ctx context.Context, limit int) ([]models.PlateSummary, error)
}

// Carousel cycles through the recognizable images. While auto-advance is
// enabled one ticker advances the image every period and a faster one
// drives the progress fraction toward 1. Both tickers are torn down and
// restarted whenever the enabled flag or the image list changes, and the
// displayed recognition result is cleared on every navigation via the
// onAdvance callback.
type Carousel struct {
	period    time.Duration
	tick      time.Duration
	onAdvance func(index int)

	mu       sync.Mutex
	images   []string
	index    int
	auto     bool
	progress float64
	loadErr  error
	cancel   context.CancelFunc
}

func NewCarousel(period, tick time.Duration, onAdvance func(index int)) *Carousel {
	c := &Carousel{
		period:    period,
		tick:      tick,
		onAdvance: onAdvance,
		auto:      true,
	}
	c.mu.Lock()
	c.restartTimersLocked()
	c.mu.Unlock()
	return c
}

// Load fetches the catalog once. On failure the image list stays empty and
// the error is recorded; the index is 0 either way.
func (c *Carousel) Load(ctx context.Context, catalog Catalog) error {
	plates, err := catalog.Plates(ctx, 0)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Printf("[Carousel] Catalog fetch failed: %v", err)
		c.images = nil
		c.index = 0
		c.loadErr = err
		c.restartTimersLocked()
		return err
	}

	names := make([]string, 0, len(plates))
	for _, p := range plates {
		names = append(names, p.ImageName)
	}
	c.images = names
	c.index = 0
	c.loadErr = nil
	c.restartTimersLocked()
	return nil
}

// SetImages replaces the image list, clamping the index and restarting any
// running timers so none keep ticking against a stale length.
func (c *Carousel) SetImages(images []string) {
	c.mu.Lock()
	c.images = append([]string{}, images...)
	if c.index >= len(c.images) {
		c.index = 0
	}
	c.loadErr = nil
	c.restartTimersLocked()
	c.mu.Unlock()
}

// Next advances with wraparound. No-op on an empty list.
func (c *Carousel) Next() {
	c.step(1)
}

// Previous retreats with wraparound. No-op on an empty list.
func (c *Carousel) Previous() {
	c.step(-1)
}

func (c *Carousel) step(delta int) {
	c.mu.Lock()
	if len(c.images) == 0 {
		c.mu.Unlock()
		return
	}
	c.index = (c.index + delta + len(c.images)) % len(c.images)
	idx := c.index
	c.mu.Unlock()

	if c.onAdvance != nil {
		c.onAdvance(idx)
	}
}

// SetIndex jumps to a specific image. Out-of-range values are silently
// ignored.
func (c *Carousel) SetIndex(i int) {
	c.mu.Lock()
	if i < 0 || i >= len(c.images) {
		c.mu.Unlock()
		return
	}
	c.index = i
	c.mu.Unlock()

	if c.onAdvance != nil {
		c.onAdvance(i)
	}
}

// SetAutoAdvance enables or disables the periodic advance. Disabling stops
// both tickers and resets the progress fraction.
func (c *Carousel) SetAutoAdvance(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.auto == enabled {
		return
	}
	c.auto = enabled
	c.restartTimersLocked()
}

// restartTimersLocked tears down the running tickers and, when auto-advance
// is on, starts fresh ones. Callers hold c.mu.
func (c *Carousel) restartTimersLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.progress = 0

	if !c.auto {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

func (c *Carousel) run(ctx context.Context) {
	advance := time.NewTicker(c.period)
	progress := time.NewTicker(c.tick)
	defer advance.Stop()
	defer progress.Stop()

	started := time.Now()

	for {
		select {
		case <-ctx.Done():
			return

		case <-advance.C:
			c.mu.Lock()
			advanced := len(c.images) > 0
			if advanced {
				c.index = (c.index + 1) % len(c.images)
			}
			c.progress = 0
			idx := c.index
			c.mu.Unlock()

			started = time.Now()
			if advanced && c.onAdvance != nil {
				c.onAdvance(idx)
			}

		case <-progress.C:
			frac := float64(time.Since(started)) / float64(c.period)
			if frac > 1 {
				frac = 1
			}
			c.mu.Lock()
			// A tick that lost the race against a restart must not
			// overwrite the freshly reset progress.
			if ctx.Err() == nil {
				c.progress = frac
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the timers. The carousel must not be used afterwards.
func (c *Carousel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.auto = false
	c.progress = 0
}

func (c *Carousel) Images() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.images...)
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the displayed image name, or "" for an empty list.
func (c *Carousel) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.images) == 0 {
		return ""
	}
	return c.images[c.index]
}

func (c *Carousel) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

func (c *Carousel) AutoAdvanceEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

func (c *Carousel) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}
