package gateway

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by the command surface of a pose-only gateway.
var ErrReadOnly = errors.New("gateway is read-only")

// PoseOnly wraps a bare telemetry source as a Gateway whose command calls
// always fail. Routines that only read poses, such as recording a route from
// a GPS feed, can then run without a command link at all.
func PoseOnly(pr PoseReader) Gateway {
	return poseOnlyGateway{pr}
}

type poseOnlyGateway struct {
	PoseReader
}

func (poseOnlyGateway) Navigate(context.Context, MotionCommand) error { return ErrReadOnly }

func (poseOnlyGateway) Arm(context.Context, bool) error { return ErrReadOnly }

func (poseOnlyGateway) SetMode(context.Context, FlightMode) error { return ErrReadOnly }

func (poseOnlyGateway) Land(context.Context) error { return ErrReadOnly }
