// Package flight implements the single-vehicle flight routines: takeoff and
// point-to-point navigation with arrival detection, route recording from live
// telemetry, and route playback.
//
// Every maneuver issues exactly one asynchronous motion command and then
// polls telemetry at a fixed rate until the vehicle converges; the middleware
// holds the command, the loop only detects arrival. There is no timeout by
// default: a maneuver that never converges blocks until the caller's context
// is cancelled.
package flight

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/skyward-robotics/flightkit/internal/gateway"
	"github.com/skyward-robotics/flightkit/internal/route"
)

// WithLogger sets the logger for the commander.
func WithLogger(logger *slog.Logger) func(c *Commander) {
	return func(c *Commander) {
		c.logger = logger
	}
}

// WithConfig replaces the default flight configuration.
func WithConfig(config Config) func(c *Commander) {
	return func(c *Commander) {
		c.config = config.Normalize()
	}
}

// Commander sequences flight maneuvers through a gateway. Its methods block
// for the duration of the maneuver and are not reentrant: at most one flight
// operation may be active at a time per vehicle.
type Commander struct {
	gw     gateway.Gateway
	config Config
	logger *slog.Logger
}

// New creates a Commander with stock defaults and a discard logger.
func New(gw gateway.Gateway, options ...func(c *Commander)) *Commander {
	c := Commander{
		gw:     gw,
		config: DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Takeoff climbs from the current position by the configured height and
// blocks until the climb is within tolerance. The motion command requests
// auto-arming, so the vehicle need not be armed beforehand.
func (c *Commander) Takeoff(ctx context.Context, opts ...Option) error {
	p := c.resolveTakeoff(opts)

	c.logger.Info("takeoff started", slog.Float64("height", p.height))

	start, err := c.gw.Pose(ctx, p.frame)
	if err != nil {
		return fmt.Errorf("reading takeoff origin: %w", err)
	}

	cmd := gateway.MotionCommand{
		X:       start.X,
		Y:       start.Y,
		Z:       start.Z + p.height,
		Yaw:     p.yaw,
		Speed:   p.speed,
		Frame:   p.frame,
		AutoArm: true,
	}
	if err = c.gw.Navigate(ctx, cmd); err != nil {
		return fmt.Errorf("issuing takeoff command: %w", err)
	}

	err = c.awaitConvergence(ctx, p.tolerance, func(ctx context.Context) (float64, error) {
		pose, err := c.gw.Pose(ctx, p.frame)
		if err != nil {
			return 0, err
		}

		climb := math.Abs(pose.Z - start.Z)
		c.logger.Debug("takeoff progress",
			slog.Float64("climb", climb),
			slog.Float64("height", p.height),
		)
		return math.Abs(climb - p.height), nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("takeoff succeeded")
	return nil
}

// ReachPoint navigates to the waypoint and blocks until the 3D distance to
// it is within tolerance. The vehicle must already be armed.
func (c *Commander) ReachPoint(ctx context.Context, wp route.Waypoint, opts ...Option) error {
	p := c.resolve(opts)

	c.logger.Info("reaching point",
		slog.Float64("x", wp.X),
		slog.Float64("y", wp.Y),
		slog.Float64("z", wp.Z),
	)

	yaw := wp.Yaw
	if !math.IsNaN(p.yaw) {
		yaw = p.yaw
	}

	cmd := gateway.MotionCommand{
		X:     wp.X,
		Y:     wp.Y,
		Z:     wp.Z,
		Yaw:   yaw,
		Speed: p.speed,
		Frame: p.frame,
	}
	if err := c.gw.Navigate(ctx, cmd); err != nil {
		return fmt.Errorf("issuing navigate command: %w", err)
	}

	err := c.awaitConvergence(ctx, p.tolerance, func(ctx context.Context) (float64, error) {
		pose, err := c.gw.Pose(ctx, p.frame)
		if err != nil {
			return 0, err
		}

		delta := wp.DistanceTo(route.Waypoint{X: pose.X, Y: pose.Y, Z: pose.Z})
		c.logger.Debug("distance remaining", slog.Float64("delta", delta))
		return delta, nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("point reached")
	return nil
}

// awaitConvergence polls the remaining-progress metric at the configured rate
// until it drops strictly below tolerance. A reading exactly at tolerance
// keeps polling. Gateway failures propagate immediately; ctx cancellation is
// the only other way out.
func (c *Commander) awaitConvergence(ctx context.Context, tolerance float64, remaining func(ctx context.Context) (float64, error)) error {
	ticker := time.NewTicker(c.config.interval())
	defer ticker.Stop()

	for {
		r, err := remaining(ctx)
		if err != nil {
			return fmt.Errorf("reading telemetry: %w", err)
		}
		if r < tolerance {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Arm arms or disarms the vehicle. One-shot, no retry.
func (c *Commander) Arm(ctx context.Context, arm bool) error {
	c.logger.Info("arming", slog.Bool("arm", arm))
	if err := c.gw.Arm(ctx, arm); err != nil {
		return fmt.Errorf("arming: %w", err)
	}
	return nil
}

// SetMode switches the middleware flight mode. One-shot, no retry.
func (c *Commander) SetMode(ctx context.Context, mode gateway.FlightMode) error {
	c.logger.Info("setting mode", slog.String("mode", string(mode)))
	if err := c.gw.SetMode(ctx, mode); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	return nil
}

// Land triggers the middleware's landing routine. One-shot, no retry.
func (c *Commander) Land(ctx context.Context) error {
	c.logger.Info("landing")
	if err := c.gw.Land(ctx); err != nil {
		return fmt.Errorf("landing: %w", err)
	}
	return nil
}
