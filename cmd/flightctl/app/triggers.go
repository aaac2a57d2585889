package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/skyward-robotics/flightkit/internal/flight"
)

// readTriggers turns operator line input into the recorder's trigger pair.
// An empty line or "a" is one capture press: the trigger is held set long
// enough for the recorder to observe the rising edge, then cleared. "s" or
// EOF sets the stop trigger.
func readTriggers(ctx context.Context, config flight.Config, r io.Reader, logger *slog.Logger) (capture, stop flight.Trigger) {
	capt := &flight.FlagTrigger{}
	stopT := &flight.FlagTrigger{}

	// A press must straddle at least one recorder poll tick to be observed.
	hold := 2 * time.Duration(float64(time.Second)/config.Frequency)

	go func() {
		defer stopT.Set()

		logger.Info("press Enter or 'a' to add a point, 's' to finish")

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}

			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "", "a", "add":
				capt.Set()
				time.Sleep(hold)
				capt.Clear()

			case "s", "q", "stop":
				return
			}
		}
	}()

	return capt, stopT
}
