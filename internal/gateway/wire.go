package gateway

import (
	"encoding/json"
	"math"
)

// JSON cannot encode NaN, so an unspecified yaw travels as null on the wire
// and is restored to NaN on decode.

type poseWire struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Z     float64  `json:"z"`
	Yaw   *float64 `json:"yaw,omitempty"`
	Frame Frame    `json:"frame"`
}

func (p Pose) MarshalJSON() ([]byte, error) {
	return json.Marshal(poseWire{X: p.X, Y: p.Y, Z: p.Z, Yaw: yawToWire(p.Yaw), Frame: p.Frame})
}

func (p *Pose) UnmarshalJSON(data []byte) error {
	var w poseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Pose{X: w.X, Y: w.Y, Z: w.Z, Yaw: yawFromWire(w.Yaw), Frame: w.Frame}
	return nil
}

type motionCommandWire struct {
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Z       float64  `json:"z"`
	Yaw     *float64 `json:"yaw,omitempty"`
	Speed   float64  `json:"speed"`
	Frame   Frame    `json:"frame"`
	AutoArm bool     `json:"autoArm"`
}

func (c MotionCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(motionCommandWire{
		X:       c.X,
		Y:       c.Y,
		Z:       c.Z,
		Yaw:     yawToWire(c.Yaw),
		Speed:   c.Speed,
		Frame:   c.Frame,
		AutoArm: c.AutoArm,
	})
}

func (c *MotionCommand) UnmarshalJSON(data []byte) error {
	var w motionCommandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = MotionCommand{
		X:       w.X,
		Y:       w.Y,
		Z:       w.Z,
		Yaw:     yawFromWire(w.Yaw),
		Speed:   w.Speed,
		Frame:   w.Frame,
		AutoArm: w.AutoArm,
	}
	return nil
}

func yawToWire(yaw float64) *float64 {
	if math.IsNaN(yaw) {
		return nil
	}
	return &yaw
}

func yawFromWire(yaw *float64) float64 {
	if yaw == nil {
		return math.NaN()
	}
	return *yaw
}
