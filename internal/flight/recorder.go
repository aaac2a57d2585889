package flight

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/skyward-robotics/flightkit/internal/route"
)

// Trigger is an externally controlled boolean signal. The recorder only ever
// observes its current state; it never sets or clears it. Reads must be
// atomic but need no responsiveness better than one poll tick.
type Trigger interface {
	IsSet() bool
}

// FlagTrigger is the standard Trigger backed by an atomic flag. The zero
// value is a cleared trigger ready for use.
type FlagTrigger struct {
	flag atomic.Bool
}

func (t *FlagTrigger) Set()   { t.flag.Store(true) }
func (t *FlagTrigger) Clear() { t.flag.Store(false) }

func (t *FlagTrigger) IsSet() bool { return t.flag.Load() }

// Sink receives recorded waypoints in capture order.
type Sink interface {
	Append(ctx context.Context, wp route.Waypoint) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, wp route.Waypoint) error

func (f SinkFunc) Append(ctx context.Context, wp route.Waypoint) error {
	return f(ctx, wp)
}

// Record captures waypoints from live telemetry into sink until the stop
// trigger is observed set. Capture is edge-triggered: each rising edge of the
// capture trigger samples the pose exactly once, and the trigger must clear
// before another point can be taken, no matter how long it is held. The stop
// trigger is checked on every tick of both wait loops.
func (c *Commander) Record(ctx context.Context, sink Sink, capture, stop Trigger, opts ...Option) error {
	p := c.resolve(opts)

	c.logger.Info("route recording started", slog.String("frame", string(p.frame)))

	ticker := time.NewTicker(c.config.interval())
	defer ticker.Stop()

	points := 0
	for {
		// Stop wins over a pending capture on every pass.
		if stop.IsSet() {
			c.logger.Info("route recording finished", slog.Int("points", points))
			return nil
		}

		// Idle: wait for the capture trigger's rising edge.
		for !capture.IsSet() {
			if stop.IsSet() {
				c.logger.Info("route recording finished", slog.Int("points", points))
				return nil
			}
			if err := tick(ctx, ticker); err != nil {
				return err
			}
		}

		pose, err := c.gw.Pose(ctx, p.frame)
		if err != nil {
			return fmt.Errorf("reading telemetry: %w", err)
		}

		wp := route.Waypoint{X: pose.X, Y: pose.Y, Z: pose.Z, Yaw: pose.Yaw}
		if err = sink.Append(ctx, wp); err != nil {
			return fmt.Errorf("appending waypoint: %w", err)
		}
		points++

		c.logger.Info("point added",
			slog.Float64("x", wp.X),
			slog.Float64("y", wp.Y),
			slog.Float64("z", wp.Z),
		)

		// Armed: wait for the capture trigger to clear before re-arming.
		for capture.IsSet() {
			if stop.IsSet() {
				c.logger.Info("route recording finished", slog.Int("points", points))
				return nil
			}
			if err := tick(ctx, ticker); err != nil {
				return err
			}
		}
	}
}

func tick(ctx context.Context, ticker *time.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}
