package gateway

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestMotionCommandWireRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		cmd  MotionCommand
	}{
		{
			"explicit yaw",
			MotionCommand{X: 1, Y: 2, Z: 3, Yaw: 1.57, Speed: 1, Frame: FrameLocal, AutoArm: true},
		},
		{
			"unspecified yaw",
			MotionCommand{X: -4.5, Y: 0, Z: 2, Yaw: math.NaN(), Speed: 0.5, Frame: FrameBody},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.cmd)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var got MotionCommand
			if err = json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if got.X != tc.cmd.X || got.Y != tc.cmd.Y || got.Z != tc.cmd.Z {
				t.Errorf("Position changed on the wire: %+v", got)
			}
			if got.Speed != tc.cmd.Speed || got.Frame != tc.cmd.Frame || got.AutoArm != tc.cmd.AutoArm {
				t.Errorf("Parameters changed on the wire: %+v", got)
			}

			switch {
			case math.IsNaN(tc.cmd.Yaw) && !math.IsNaN(got.Yaw):
				t.Errorf("Expected unspecified yaw to survive, got %f", got.Yaw)
			case !math.IsNaN(tc.cmd.Yaw) && got.Yaw != tc.cmd.Yaw:
				t.Errorf("Expected yaw %f, got %f", tc.cmd.Yaw, got.Yaw)
			}
		})
	}
}

func TestUnspecifiedYawIsNullOnWire(t *testing.T) {
	data, err := json.Marshal(Pose{X: 1, Yaw: math.NaN(), Frame: FrameLocal})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "yaw") {
		t.Errorf("Expected yaw to be omitted for NaN, got %s", data)
	}

	var pose Pose
	if err = json.Unmarshal(data, &pose); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !math.IsNaN(pose.Yaw) {
		t.Errorf("Expected NaN yaw after decode, got %f", pose.Yaw)
	}
}
