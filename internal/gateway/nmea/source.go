// Package nmea adapts a live NMEA GPS feed into the pose-read interface, so
// routes can be recorded straight from a GPS receiver. Fixes are projected
// into the local frame around the first valid fix (equirectangular, which is
// accurate over the few hundred metres a route covers).
package nmea

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	gonmea "github.com/adrianmo/go-nmea"

	"github.com/skyward-robotics/flightkit/internal/gateway"
)

const earthRadius = 6371000.0 // metres

// ErrNoFix is returned when no valid GPS fix has been received yet.
var ErrNoFix = errors.New("no GPS fix")

// WithLogger sets the logger for the source.
func WithLogger(logger *slog.Logger) func(s *Source) {
	return func(s *Source) {
		s.logger = logger
	}
}

type geoFix struct {
	lat, lon, alt float64
}

// Source consumes NMEA sentences and serves local-frame poses. It implements
// gateway.PoseReader for the local frame only.
type Source struct {
	logger *slog.Logger

	mu      sync.RWMutex
	origin  *geoFix
	current geoFix
	hasFix  bool
	hasAlt  bool
}

// NewSource creates an NMEA pose source. Run must be started before poses
// become available.
func NewSource(options ...func(s *Source)) *Source {
	s := Source{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Run reads NMEA sentences from r until EOF or ctx cancellation. RMC
// sentences update the horizontal fix, GGA sentences the altitude. Unparsable
// lines are skipped; a noisy receiver is normal.
func (s *Source) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := gonmea.Parse(line)
		if err != nil {
			continue
		}

		switch sentence.DataType() {
		case gonmea.TypeRMC:
			m := sentence.(gonmea.RMC)
			if m.Validity != gonmea.ValidRMC {
				continue
			}
			s.updateHorizontal(m.Latitude, m.Longitude)

		case gonmea.TypeGGA:
			m := sentence.(gonmea.GGA)
			if m.FixQuality == gonmea.Invalid {
				continue
			}
			s.updateAltitude(m.Altitude)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading NMEA stream: %w", err)
	}
	return nil
}

func (s *Source) updateHorizontal(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.lat = lat
	s.current.lon = lon
	s.hasFix = true

	if s.origin == nil {
		origin := s.current
		s.origin = &origin
		s.logger.Info("GPS origin set",
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
		)
	}
}

func (s *Source) updateAltitude(alt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.alt = alt
	if s.origin != nil && !s.hasAlt {
		s.origin.alt = alt
	}
	s.hasAlt = true
}

// Pose returns the latest fix projected into the local frame. Only the local
// frame is supported; a GPS feed has no body-frame view.
func (s *Source) Pose(_ context.Context, frame gateway.Frame) (gateway.Pose, error) {
	if frame != gateway.FrameLocal {
		return gateway.Pose{}, fmt.Errorf("unsupported frame for GPS source: %s", frame)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasFix || s.origin == nil {
		return gateway.Pose{}, ErrNoFix
	}

	latRad := s.origin.lat * math.Pi / 180
	return gateway.Pose{
		X:     earthRadius * (s.current.lon - s.origin.lon) * math.Pi / 180 * math.Cos(latRad),
		Y:     earthRadius * (s.current.lat - s.origin.lat) * math.Pi / 180,
		Z:     s.current.alt - s.origin.alt,
		Yaw:   gateway.NoYaw(),
		Frame: gateway.FrameLocal,
	}, nil
}
