package flight

import (
	"context"
	"math"
	"time"

	"github.com/skyward-robotics/flightkit/internal/gateway"
	"github.com/skyward-robotics/flightkit/internal/route"
)

// FlyFunc is the per-point motion primitive used during route playback.
// Commander.ReachPoint is the default.
type FlyFunc func(ctx context.Context, wp route.Waypoint, opts ...Option) error

// Option overrides one per-call parameter. Unset parameters fall back to the
// Commander's Config.
type Option func(*callParams)

type callParams struct {
	speed       float64
	tolerance   float64
	height      float64
	yaw         float64
	frame       gateway.Frame
	altitude    float64 // route playback altitude override, NaN = none
	settleDelay time.Duration
	fly         FlyFunc
}

// WithSpeed overrides the motion speed in m/s.
func WithSpeed(speed float64) Option {
	return func(p *callParams) {
		p.speed = speed
	}
}

// WithTolerance overrides the arrival tolerance in metres.
func WithTolerance(tolerance float64) Option {
	return func(p *callParams) {
		p.tolerance = tolerance
	}
}

// WithHeight overrides the takeoff climb height in metres.
func WithHeight(height float64) Option {
	return func(p *callParams) {
		p.height = height
	}
}

// WithYaw sets an explicit target heading in radians.
func WithYaw(yaw float64) Option {
	return func(p *callParams) {
		p.yaw = yaw
	}
}

// WithFrame overrides the reference frame.
func WithFrame(frame gateway.Frame) Option {
	return func(p *callParams) {
		p.frame = frame
	}
}

// WithAltitude forces every point of a played route to the given altitude.
// Stored altitudes are used when this option is absent.
func WithAltitude(z float64) Option {
	return func(p *callParams) {
		p.altitude = z
	}
}

// WithSettleDelay overrides the pause between consecutive route points.
func WithSettleDelay(d time.Duration) Option {
	return func(p *callParams) {
		p.settleDelay = d
	}
}

// WithFlyFunc replaces the per-point motion primitive for route playback.
func WithFlyFunc(fly FlyFunc) Option {
	return func(p *callParams) {
		p.fly = fly
	}
}

func (c *Commander) resolve(opts []Option) callParams {
	return apply(callParams{
		speed:       c.config.Speed,
		tolerance:   c.config.Tolerance,
		height:      c.config.TakeoffHeight,
		yaw:         math.NaN(),
		frame:       c.config.Frame,
		altitude:    math.NaN(),
		settleDelay: c.config.SettleDelay,
	}, opts)
}

// resolveTakeoff is resolve with the takeoff speed as the speed default.
func (c *Commander) resolveTakeoff(opts []Option) callParams {
	p := c.resolve(nil)
	p.speed = c.config.TakeoffSpeed
	return apply(p, opts)
}

func apply(p callParams, opts []Option) callParams {
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
