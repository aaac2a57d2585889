package gateway

import (
	"context"
	"errors"
	"testing"
)

type staticPoseReader struct {
	pose Pose
}

func (r staticPoseReader) Pose(_ context.Context, frame Frame) (Pose, error) {
	if frame != r.pose.Frame {
		return Pose{}, errors.New("unknown frame")
	}
	return r.pose, nil
}

func TestPoseOnlyGateway(t *testing.T) {
	want := Pose{X: 1, Y: 2, Z: 3, Frame: FrameLocal}
	gw := PoseOnly(staticPoseReader{pose: want})
	ctx := context.Background()

	got, err := gw.Pose(ctx, FrameLocal)
	if err != nil {
		t.Fatalf("Pose failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected pose %+v, got %+v", want, got)
	}

	if err = gw.Navigate(ctx, MotionCommand{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from Navigate, got %v", err)
	}
	if err = gw.Arm(ctx, true); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from Arm, got %v", err)
	}
	if err = gw.SetMode(ctx, ModeOffboard); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from SetMode, got %v", err)
	}
	if err = gw.Land(ctx); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from Land, got %v", err)
	}
}
