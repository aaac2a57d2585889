package flight

import (
	"time"

	"github.com/skyward-robotics/flightkit/internal/gateway"
)

// Defaults match the flight-control middleware's conventions: 10 Hz polling,
// 0.2 m arrival tolerance, 1 m/s cruise and takeoff speeds, 1 m takeoff.
const (
	DefaultFrequency     = 10.0 // Hz
	DefaultTolerance     = 0.2  // m
	DefaultSpeed         = 1.0  // m/s
	DefaultTakeoffSpeed  = 1.0  // m/s
	DefaultTakeoffHeight = 1.0  // m
	DefaultSettleDelay   = 100 * time.Millisecond
)

// Config carries the process-wide flight defaults. It is immutable once a
// Commander is built; individual calls override fields via Options.
type Config struct {
	Frequency     float64       `yaml:"frequency"`     // telemetry polling rate, Hz
	Tolerance     float64       `yaml:"tolerance"`     // arrival tolerance, m
	Speed         float64       `yaml:"speed"`         // cruise speed, m/s
	TakeoffSpeed  float64       `yaml:"takeoffSpeed"`  // climb speed, m/s
	TakeoffHeight float64       `yaml:"takeoffHeight"` // default climb, m
	SettleDelay   time.Duration `yaml:"settleDelay"`   // pause between route points
	Frame         gateway.Frame `yaml:"frame"`         // default reference frame
}

// DefaultConfig returns the stock defaults.
func DefaultConfig() Config {
	return Config{
		Frequency:     DefaultFrequency,
		Tolerance:     DefaultTolerance,
		Speed:         DefaultSpeed,
		TakeoffSpeed:  DefaultTakeoffSpeed,
		TakeoffHeight: DefaultTakeoffHeight,
		SettleDelay:   DefaultSettleDelay,
		Frame:         gateway.FrameLocal,
	}
}

// Normalize fills zero-valued fields with defaults so a partially specified
// YAML config behaves like the stock one.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.Frequency <= 0 {
		c.Frequency = def.Frequency
	}
	if c.Tolerance <= 0 {
		c.Tolerance = def.Tolerance
	}
	if c.Speed <= 0 {
		c.Speed = def.Speed
	}
	if c.TakeoffSpeed <= 0 {
		c.TakeoffSpeed = def.TakeoffSpeed
	}
	if c.TakeoffHeight <= 0 {
		c.TakeoffHeight = def.TakeoffHeight
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.Frame == "" {
		c.Frame = def.Frame
	}
	return c
}

// interval converts the polling frequency to a tick period.
func (c Config) interval() time.Duration {
	return time.Duration(float64(time.Second) / c.Frequency)
}
