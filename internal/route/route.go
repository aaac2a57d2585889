package route

import "math"

// Waypoint is a recorded or target position in a named reference frame.
// Yaw is optional: NaN means "unspecified, hold current heading".
type Waypoint struct {
	X   float64
	Y   float64
	Z   float64
	Yaw float64
}

// NewWaypoint returns a waypoint with no yaw preference.
func NewWaypoint(x, y, z float64) Waypoint {
	return Waypoint{X: x, Y: y, Z: z, Yaw: math.NaN()}
}

// HasYaw reports whether the waypoint carries an explicit heading.
func (w Waypoint) HasYaw() bool {
	return !math.IsNaN(w.Yaw)
}

// DistanceTo returns the 3D Euclidean distance between the position
// components of two waypoints. Yaw never participates in distance.
func (w Waypoint) DistanceTo(other Waypoint) float64 {
	dx := w.X - other.X
	dy := w.Y - other.Y
	dz := w.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Route is an ordered sequence of waypoints. Order defines flight order.
type Route []Waypoint
