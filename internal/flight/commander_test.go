package flight

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/skyward-robotics/flightkit/internal/gateway"
	"github.com/skyward-robotics/flightkit/internal/route"
)

// fakeGateway serves a scripted sequence of poses: each read returns the next
// pose, and the last one repeats forever. Issued commands are recorded.
type fakeGateway struct {
	mu       sync.Mutex
	poses    []gateway.Pose
	reads    int
	commands []gateway.MotionCommand

	armCalls  []bool
	modeCalls []gateway.FlightMode
	landCalls int

	poseErr error
	navErr  error
	cmdErr  error
}

func (g *fakeGateway) Pose(_ context.Context, frame gateway.Frame) (gateway.Pose, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poseErr != nil {
		return gateway.Pose{}, g.poseErr
	}

	i := g.reads
	if i >= len(g.poses) {
		i = len(g.poses) - 1
	}
	g.reads++

	pose := g.poses[i]
	pose.Frame = frame
	return pose, nil
}

func (g *fakeGateway) Navigate(_ context.Context, cmd gateway.MotionCommand) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.navErr != nil {
		return g.navErr
	}
	g.commands = append(g.commands, cmd)
	return nil
}

func (g *fakeGateway) Arm(_ context.Context, arm bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cmdErr != nil {
		return g.cmdErr
	}
	g.armCalls = append(g.armCalls, arm)
	return nil
}

func (g *fakeGateway) SetMode(_ context.Context, mode gateway.FlightMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cmdErr != nil {
		return g.cmdErr
	}
	g.modeCalls = append(g.modeCalls, mode)
	return nil
}

func (g *fakeGateway) Land(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cmdErr != nil {
		return g.cmdErr
	}
	g.landCalls++
	return nil
}

func (g *fakeGateway) issued() []gateway.MotionCommand {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.MotionCommand(nil), g.commands...)
}

// fastConfig polls at 1 kHz so convergence tests finish in milliseconds.
func fastConfig() Config {
	config := DefaultConfig()
	config.Frequency = 1000
	return config
}

func pose(x, y, z float64) gateway.Pose {
	return gateway.Pose{X: x, Y: y, Z: z, Yaw: math.NaN()}
}

func TestTakeoffConvergence(t *testing.T) {
	gw := &fakeGateway{
		poses: []gateway.Pose{
			pose(2, 3, 0.5), // origin read
			pose(2, 3, 0.5),
			pose(2, 3, 0.9),
			pose(2, 3, 1.4), // climb 0.9, within 0.2 of 1.0
		},
	}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.Takeoff(context.Background()); err != nil {
		t.Fatalf("Takeoff failed: %v", err)
	}

	commands := gw.issued()
	if len(commands) != 1 {
		t.Fatalf("Expected exactly one motion command, got %d", len(commands))
	}

	cmd := commands[0]
	if !cmd.AutoArm {
		t.Error("Takeoff command must request auto-arm")
	}
	if cmd.X != 2 || cmd.Y != 3 {
		t.Errorf("Takeoff must hold horizontal position, got (%f, %f)", cmd.X, cmd.Y)
	}
	if cmd.Z != 1.5 {
		t.Errorf("Expected target altitude 1.5 (origin 0.5 + height 1.0), got %f", cmd.Z)
	}
	if cmd.Speed != DefaultTakeoffSpeed {
		t.Errorf("Expected takeoff speed %f, got %f", DefaultTakeoffSpeed, cmd.Speed)
	}
}

func TestTakeoffHeightOverride(t *testing.T) {
	gw := &fakeGateway{
		poses: []gateway.Pose{
			pose(0, 0, 0),
			pose(0, 0, 2.95), // climb 2.95, within 0.2 of 3.0
		},
	}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.Takeoff(context.Background(), WithHeight(3), WithSpeed(0.5)); err != nil {
		t.Fatalf("Takeoff failed: %v", err)
	}

	cmd := gw.issued()[0]
	if cmd.Z != 3 {
		t.Errorf("Expected target altitude 3, got %f", cmd.Z)
	}
	if cmd.Speed != 0.5 {
		t.Errorf("Expected speed override 0.5, got %f", cmd.Speed)
	}
}

func TestReachPointConvergence(t *testing.T) {
	target := route.NewWaypoint(10, 0, 2)
	gw := &fakeGateway{
		poses: []gateway.Pose{
			pose(0, 0, 2),
			pose(4, 0, 2),
			pose(8, 0, 2),
			pose(9.9, 0, 2), // 0.1 away, inside tolerance
		},
	}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.ReachPoint(context.Background(), target); err != nil {
		t.Fatalf("ReachPoint failed: %v", err)
	}

	commands := gw.issued()
	if len(commands) != 1 {
		t.Fatalf("Expected exactly one motion command, got %d", len(commands))
	}
	if commands[0].X != 10 || commands[0].Y != 0 || commands[0].Z != 2 {
		t.Errorf("Unexpected target: %+v", commands[0])
	}
	if commands[0].AutoArm {
		t.Error("ReachPoint must not request auto-arm")
	}
}

func TestToleranceBoundary(t *testing.T) {
	// Exactly at tolerance distance: arrival is not satisfied and the loop
	// must keep polling until the context expires.
	t.Run("at tolerance keeps polling", func(t *testing.T) {
		gw := &fakeGateway{poses: []gateway.Pose{pose(0.2, 0, 0)}}
		c := New(gw, WithConfig(fastConfig()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := c.ReachPoint(ctx, route.NewWaypoint(0, 0, 0))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Expected deadline exceeded, got %v", err)
		}
	})

	t.Run("inside tolerance arrives", func(t *testing.T) {
		gw := &fakeGateway{poses: []gateway.Pose{pose(0.199, 0, 0)}}
		c := New(gw, WithConfig(fastConfig()))

		if err := c.ReachPoint(context.Background(), route.NewWaypoint(0, 0, 0)); err != nil {
			t.Fatalf("ReachPoint failed: %v", err)
		}
		if gw.reads != 1 {
			t.Errorf("Expected arrival on the first poll, took %d reads", gw.reads)
		}
	})
}

func TestGatewayErrorsPropagate(t *testing.T) {
	poseErr := errors.New("telemetry link down")
	navErr := errors.New("command rejected")

	t.Run("pose read failure", func(t *testing.T) {
		gw := &fakeGateway{poseErr: poseErr}
		c := New(gw, WithConfig(fastConfig()))

		if err := c.Takeoff(context.Background()); !errors.Is(err, poseErr) {
			t.Fatalf("Expected pose error to propagate, got %v", err)
		}
	})

	t.Run("navigate failure", func(t *testing.T) {
		gw := &fakeGateway{poses: []gateway.Pose{pose(0, 0, 0)}, navErr: navErr}
		c := New(gw, WithConfig(fastConfig()))

		err := c.ReachPoint(context.Background(), route.NewWaypoint(1, 1, 1))
		if !errors.Is(err, navErr) {
			t.Fatalf("Expected navigate error to propagate, got %v", err)
		}
	})
}

func TestArmPassThrough(t *testing.T) {
	gw := &fakeGateway{}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.Arm(context.Background(), true); err != nil {
		t.Fatalf("Arm failed: %v", err)
	}
	if err := c.Arm(context.Background(), false); err != nil {
		t.Fatalf("Disarm failed: %v", err)
	}

	want := []bool{true, false}
	if len(gw.armCalls) != len(want) {
		t.Fatalf("Expected %d arm calls, got %d", len(want), len(gw.armCalls))
	}
	for i, arm := range want {
		if gw.armCalls[i] != arm {
			t.Errorf("Arm call %d: expected %t, got %t", i, arm, gw.armCalls[i])
		}
	}
}

func TestSetModePassThrough(t *testing.T) {
	gw := &fakeGateway{}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.SetMode(context.Background(), gateway.ModeOffboard); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}

	if len(gw.modeCalls) != 1 || gw.modeCalls[0] != gateway.ModeOffboard {
		t.Errorf("Expected one OFFBOARD mode call, got %v", gw.modeCalls)
	}
}

func TestLandPassThrough(t *testing.T) {
	gw := &fakeGateway{}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.Land(context.Background()); err != nil {
		t.Fatalf("Land failed: %v", err)
	}

	if gw.landCalls != 1 {
		t.Errorf("Expected one land call, got %d", gw.landCalls)
	}
}

func TestCommandErrorsPropagate(t *testing.T) {
	cmdErr := errors.New("command rejected")
	gw := &fakeGateway{cmdErr: cmdErr}
	c := New(gw, WithConfig(fastConfig()))

	if err := c.Arm(context.Background(), true); !errors.Is(err, cmdErr) {
		t.Errorf("Expected arm error to propagate, got %v", err)
	}
	if err := c.SetMode(context.Background(), gateway.ModeLand); !errors.Is(err, cmdErr) {
		t.Errorf("Expected mode error to propagate, got %v", err)
	}
	if err := c.Land(context.Background()); !errors.Is(err, cmdErr) {
		t.Errorf("Expected land error to propagate, got %v", err)
	}
}

func TestNoRetryOnStall(t *testing.T) {
	// A vehicle that never moves: the single command stands, the loop polls
	// until cancelled, and no second command is ever issued.
	gw := &fakeGateway{poses: []gateway.Pose{pose(0, 0, 0)}}
	c := New(gw, WithConfig(fastConfig()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.ReachPoint(ctx, route.NewWaypoint(100, 100, 100))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if commands := gw.issued(); len(commands) != 1 {
		t.Errorf("Expected exactly one motion command despite the stall, got %d", len(commands))
	}
	if gw.reads < 10 {
		t.Errorf("Expected continued polling during the stall, got %d reads", gw.reads)
	}
}
