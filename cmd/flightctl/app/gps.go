package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/skyward-robotics/flightkit/internal/gateway"
	"github.com/skyward-robotics/flightkit/internal/gateway/nmea"
)

// gpsGateway streams NMEA sentences from r in the background and serves pose
// reads only; command calls fail with gateway.ErrReadOnly. The stream runs
// until EOF or ctx cancellation.
func gpsGateway(ctx context.Context, r io.Reader, logger *slog.Logger) gateway.Gateway {
	source := nmea.NewSource(nmea.WithLogger(logger))

	go func() {
		if err := source.Run(ctx, r); err != nil && ctx.Err() == nil {
			logger.Error(fmt.Sprintf("GPS stream failed: %s", err.Error()))
		}
	}()

	return gateway.PoseOnly(source)
}
