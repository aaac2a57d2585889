package flight

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/skyward-robotics/flightkit/internal/route"
)

// FlyRoute flies the route strictly in order, one fully completed maneuver
// per waypoint, with a settle pause between consecutive points (never before
// the first or after the last). WithAltitude forces a common altitude for
// every point; otherwise each waypoint's stored altitude is used. The motion
// primitive defaults to ReachPoint and can be replaced with WithFlyFunc.
//
// There is no skip-on-failure: a primitive that never returns stalls the
// playback at that point, and a primitive error aborts the rest of the route.
func (c *Commander) FlyRoute(ctx context.Context, rt route.Route, opts ...Option) error {
	p := c.resolve(opts)

	fly := p.fly
	if fly == nil {
		fly = c.ReachPoint
	}

	c.logger.Info("route started", slog.Int("points", len(rt)))

	for i, wp := range rt {
		if i > 0 {
			if err := settle(ctx, p.settleDelay); err != nil {
				return err
			}
		}

		target := wp
		if !math.IsNaN(p.altitude) {
			target.Z = p.altitude
		}

		err := fly(ctx, target, WithSpeed(p.speed), WithTolerance(p.tolerance), WithFrame(p.frame))
		if err != nil {
			return fmt.Errorf("flying point %d: %w", i, err)
		}
	}

	c.logger.Info("route finished", slog.Int("points", len(rt)))
	return nil
}

func settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
