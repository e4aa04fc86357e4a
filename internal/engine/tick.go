// Package engine runs matches: the turn scheduler, hop interpolation,
// contact resolution and the fixed-interval tick loop that drives them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Engine drives a simulation forward at a fixed scheduling tick.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval

	// OnTick runs every tick with the wall clock and the travel time the tick
	// represents.
	OnTick func(tick uint64, now time.Time, dt time.Duration)

	running atomic.Bool
}

// NewEngine creates an engine ticking at interval.
func NewEngine(interval time.Duration) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: interval,
	}
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the tick loop. Blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.running.Load() {
		if e.Speed <= 0 {
			// Paused: check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		e.step(start)

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target && !sleep(ctx, target-elapsed) {
			break
		}
	}

	slog.Info("engine stopped", "tick", e.Tick)
}

// Stop halts the tick loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// step advances the simulation by one tick. Travel time per tick is fixed so
// outcomes do not depend on speed or scheduling jitter.
func (e *Engine) step(now time.Time) {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick, now, e.Interval)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Uptime returns a human-readable play time for a tick count.
func Uptime(tick uint64, interval time.Duration) string {
	d := time.Duration(tick) * interval
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
