package nmea

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/skyward-robotics/flightkit/internal/gateway"
)

const (
	// 48°07.038'N 011°31.000'E, the usual NMEA reference position.
	originRMC = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
	originGGA = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"

	// 0.6 arc minutes (0.01 degrees) further north, 5 m higher.
	movedRMC = "$GPRMC,123520,A,4807.638,N,01131.000,E,022.4,084.4,230394,003.1,W*66"
	movedGGA = "$GPGGA,123520,4807.638,N,01131.000,E,1,08,0.9,550.4,M,46.9,M,,*4F"

	invalidRMC = "$GPRMC,123521,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*76"
)

func runSource(t *testing.T, sentences ...string) *Source {
	t.Helper()

	s := NewSource()
	if err := s.Run(context.Background(), strings.NewReader(strings.Join(sentences, "\n"))); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return s
}

func TestSourceOriginIsZero(t *testing.T) {
	s := runSource(t, originRMC, originGGA)

	p, err := s.Pose(context.Background(), gateway.FrameLocal)
	if err != nil {
		t.Fatalf("Pose failed: %v", err)
	}

	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Z) > 1e-9 {
		t.Errorf("Expected the first fix to project to the origin, got (%f, %f, %f)", p.X, p.Y, p.Z)
	}
	if !math.IsNaN(p.Yaw) {
		t.Errorf("Expected no yaw from GPS, got %f", p.Yaw)
	}
	if p.Frame != gateway.FrameLocal {
		t.Errorf("Expected local frame, got %s", p.Frame)
	}
}

func TestSourceProjection(t *testing.T) {
	s := runSource(t, originRMC, originGGA, movedRMC, movedGGA)

	p, err := s.Pose(context.Background(), gateway.FrameLocal)
	if err != nil {
		t.Fatalf("Pose failed: %v", err)
	}

	// 0.01 degrees of latitude is ~1112 m north.
	wantY := earthRadius * 0.01 * math.Pi / 180
	if math.Abs(p.Y-wantY) > 0.5 {
		t.Errorf("Expected y ≈ %f, got %f", wantY, p.Y)
	}
	if math.Abs(p.X) > 0.5 {
		t.Errorf("Expected no eastward displacement, got x = %f", p.X)
	}
	if math.Abs(p.Z-5.0) > 1e-6 {
		t.Errorf("Expected z = 5 (altitude above origin), got %f", p.Z)
	}
}

func TestSourceSkipsInvalidFixes(t *testing.T) {
	s := runSource(t, invalidRMC, "garbage line", "$GPXXX,nonsense")

	_, err := s.Pose(context.Background(), gateway.FrameLocal)
	if !errors.Is(err, ErrNoFix) {
		t.Fatalf("Expected ErrNoFix, got %v", err)
	}
}

func TestSourceRejectsBodyFrame(t *testing.T) {
	s := runSource(t, originRMC, originGGA)

	if _, err := s.Pose(context.Background(), gateway.FrameBody); err == nil {
		t.Error("Expected an error for the body frame")
	}
}
