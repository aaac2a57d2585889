// Package gateway defines the seam between the flight routines and the
// flight-control middleware. Implementations translate pose reads and motion
// commands onto a concrete transport; the routines never see the transport.
package gateway

import (
	"context"
	"math"
)

// Frame names a coordinate reference for poses and motion commands.
type Frame string

const (
	// FrameLocal is the world-fixed frame ("map" in the middleware).
	FrameLocal Frame = "map"

	// FrameBody is the vehicle-fixed frame.
	FrameBody Frame = "body"
)

// Pose is an instantaneous position snapshot in a named frame. Every read
// produces a fresh snapshot; poses are never cached by this package.
type Pose struct {
	X     float64
	Y     float64
	Z     float64
	Yaw   float64
	Frame Frame
}

// MotionCommand is a single asynchronous navigation request. The middleware
// holds the command until superseded; issuing it does not block on arrival.
type MotionCommand struct {
	X       float64
	Y       float64
	Z       float64
	Yaw     float64
	Speed   float64
	Frame   Frame
	AutoArm bool
}

// FlightMode is a middleware flight mode, e.g. "OFFBOARD" or "AUTO.LAND".
type FlightMode string

const (
	ModeOffboard FlightMode = "OFFBOARD"
	ModeLand     FlightMode = "AUTO.LAND"
)

// PoseReader reads the vehicle's current pose in the requested frame.
type PoseReader interface {
	Pose(ctx context.Context, frame Frame) (Pose, error)
}

// Gateway is the full command and telemetry surface of the middleware.
// All calls are synchronous, side-effecting remote invocations that may
// fail; failures propagate to the caller without retry.
type Gateway interface {
	PoseReader

	// Navigate issues one asynchronous motion command.
	Navigate(ctx context.Context, cmd MotionCommand) error

	// Arm arms or disarms the vehicle. Fire-and-forget, no retry.
	Arm(ctx context.Context, arm bool) error

	// SetMode switches the middleware flight mode. Fire-and-forget.
	SetMode(ctx context.Context, mode FlightMode) error

	// Land triggers the middleware's landing routine.
	Land(ctx context.Context) error
}

// NoYaw is the yaw value meaning "no heading preference".
func NoYaw() float64 {
	return math.NaN()
}
