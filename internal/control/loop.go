// Package control runs the lighting loop: it owns the tick counter, the
// pulse and mood state, and the output and sensor drivers.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
	"github.com/sweeney/alpaca-heart/internal/pwm"
	"github.com/sweeney/alpaca-heart/internal/sensor"
)

// Fatal error classes. Both mean a hardware fault; the loop stops.
var (
	ErrSensor = errors.New("temperature sensor failure")
	ErrOutput = errors.New("output failure")
)

// Observer is notified after every iteration, from the loop goroutine.
// It must not block.
type Observer interface {
	OnFrame(f logic.Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f logic.Frame)

// OnFrame calls fn(f).
func (fn ObserverFunc) OnFrame(f logic.Frame) { fn(f) }

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Loop drives the light show. It is not safe for concurrent use.
type Loop struct {
	params  logic.Params
	sink    pwm.Sink
	source  sensor.Source
	logger  *slog.Logger
	wait    WaitFunc
	observe Observer

	tick    logic.Tick
	heart   *logic.Heartbeat
	monitor *logic.MoodMonitor
}

// Option configures a Loop.
type Option func(*Loop)

// WithWait replaces the end-of-iteration delay (tests use a no-op).
func WithWait(w WaitFunc) Option {
	return func(l *Loop) { l.wait = w }
}

// WithObserver registers an observer for every frame.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.observe = o }
}

// WithStartTick starts the loop at a tick other than 0.
func WithStartTick(t logic.Tick) Option {
	return func(l *Loop) { l.tick = t % logic.TickRange }
}

// New creates a loop that takes ownership of sink and source.
func New(params logic.Params, sink pwm.Sink, source sensor.Source, logger *slog.Logger, opts ...Option) (*Loop, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		params:  params,
		sink:    sink,
		source:  source,
		logger:  logger,
		wait:    sleep,
		heart:   logic.NewHeartbeat(params),
		monitor: logic.NewMoodMonitor(params),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Step runs exactly one iteration without waiting: colour, pulse, optional
// temperature sample, mapping, and a write of all nine channels.
func (l *Loop) Step() (logic.Frame, error) {
	t := l.tick
	l.tick = logic.NextTick(t)

	color := logic.ColorAt(t, l.params.HueSweep)
	pulse := l.heart.Advance(t)

	var (
		reading logic.Reading
		sampled bool
		changed bool
	)
	if l.monitor.Due(t) {
		raw, err := l.source.ReadRaw()
		if err != nil {
			return logic.Frame{}, fmt.Errorf("%w: tick %d: %w", ErrSensor, t, err)
		}
		reading, changed = l.monitor.Observe(raw)
		sampled = true
		l.logger.Debug("temperature sampled", "tick", t, "raw", raw, "celsius", reading.Celsius, "mood", l.monitor.Mood())
		if changed {
			l.logger.Info("mood changed", "mood", l.monitor.Mood(), "celsius", reading.Celsius, "threshold", l.params.ColdThreshold)
		}
	}

	f := logic.MapOutputs(color, pulse, l.monitor.Mood(), l.params)
	f.Tick = t
	f.Sampled = sampled
	f.Reading = reading
	f.Changed = changed

	if err := pwm.WriteFrame(l.sink, f.Duties); err != nil {
		return f, fmt.Errorf("%w: tick %d: %w", ErrOutput, t, err)
	}

	if l.observe != nil {
		l.observe.OnFrame(f)
	}
	return f, nil
}

// Run steps and waits forever. It returns ctx.Err() when the context is
// cancelled, or a fatal driver error.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop started", "tick", l.tick, "mood", l.monitor.Mood())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := l.Step()
		if err != nil {
			return err
		}
		if err := l.wait(ctx, f.Delay); err != nil {
			return err
		}
	}
}

// Blank writes zero to every channel.
func (l *Loop) Blank() error {
	if err := pwm.Blank(l.sink); err != nil {
		return fmt.Errorf("%w: blank: %w", ErrOutput, err)
	}
	return nil
}

// Close closes both drivers.
func (l *Loop) Close() error {
	return errors.Join(l.sink.Close(), l.source.Close())
}

// Tick returns the tick the next Step will process.
func (l *Loop) Tick() logic.Tick { return l.tick }

// Mood returns the mood in force.
func (l *Loop) Mood() logic.Mood { return l.monitor.Mood() }

// Pulse returns the current heart amplitudes.
func (l *Loop) Pulse() logic.PulseState { return l.heart.State() }

// Params returns the loop's parameters.
func (l *Loop) Params() logic.Params { return l.params }

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
