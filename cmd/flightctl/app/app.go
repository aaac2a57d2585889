package app

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/skyward-robotics/flightkit/internal/flight"
	"github.com/skyward-robotics/flightkit/internal/gateway"
	"github.com/skyward-robotics/flightkit/internal/gateway/mqtt"
	"github.com/skyward-robotics/flightkit/internal/route"
)

const (
	storageDir = "data"
	storageDB  = "routes.sqlite"
)

// Run dispatches a flightctl subcommand: takeoff, fly, record, land or routes.
func Run(ctx context.Context, config *Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command specified (takeoff, fly, record, land, arm, disarm, mode, routes, delete)")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "takeoff":
		return runTakeoff(ctx, config, logger, rest)
	case "fly":
		return runFly(ctx, config, logger, rest)
	case "record":
		return runRecord(ctx, config, logger, rest)
	case "land":
		return runLand(ctx, config, logger)
	case "arm":
		return runArm(ctx, config, logger, true)
	case "disarm":
		return runArm(ctx, config, logger, false)
	case "mode":
		return runMode(ctx, config, logger, rest)
	case "routes":
		return runRoutes(ctx, config, os.Stdout)
	case "delete":
		return runDelete(ctx, config, rest)
	default:
		return fmt.Errorf("unknown command '%s'", cmd)
	}
}

func createCommander(config *Config, logger *slog.Logger) (*flight.Commander, *mqtt.Client, error) {
	gw, err := mqtt.New(config.Gateway, mqtt.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to gateway: %w", err)
	}

	cmdr := flight.New(gw, flight.WithConfig(config.Flight), flight.WithLogger(logger))
	return cmdr, gw, nil
}

func createStore(config *Config) (*route.Store, error) {
	dir := config.Storage.DataDirectory
	if dir == "" {
		dir = storageDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory '%s': %w", dir, err)
	}

	return route.NewStore(filepath.Join(dir, storageDB)), nil
}

func runTakeoff(ctx context.Context, config *Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("takeoff", flag.ContinueOnError)
	height := fs.Float64("height", config.Flight.TakeoffHeight, "Climb height in metres")
	speed := fs.Float64("speed", config.Flight.TakeoffSpeed, "Climb speed in m/s")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmdr, gw, err := createCommander(config, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	return cmdr.Takeoff(ctx, flight.WithHeight(*height), flight.WithSpeed(*speed))
}

func runFly(ctx context.Context, config *Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("fly", flag.ContinueOnError)
	file := fs.String("f", "", "Route CSV file to fly")
	name := fs.String("name", "", "Stored route to fly")
	z := fs.Float64("z", math.NaN(), "Altitude override in metres for every point")
	speed := fs.Float64("speed", config.Flight.Speed, "Cruise speed in m/s")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*file == "") == (*name == "") {
		return fmt.Errorf("exactly one of -f or -name is required")
	}

	var rt route.Route
	var err error
	if *file != "" {
		if rt, err = route.ReadFile(*file); err != nil {
			logger.Error(err.Error(), slog.String("file", *file))
			return fmt.Errorf("no usable route")
		}
	} else {
		store, sErr := createStore(config)
		if sErr != nil {
			return sErr
		}
		defer store.Close()

		if rt, err = store.LoadRoute(ctx, *name); err != nil {
			return fmt.Errorf("loading route '%s': %w", *name, err)
		}
	}
	if len(rt) == 0 {
		return fmt.Errorf("route is empty")
	}

	cmdr, gw, err := createCommander(config, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	opts := []flight.Option{flight.WithSpeed(*speed)}
	if !math.IsNaN(*z) {
		opts = append(opts, flight.WithAltitude(*z))
	}
	return cmdr.FlyRoute(ctx, rt, opts...)
}

func runRecord(ctx context.Context, config *Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	file := fs.String("o", "", "Output route CSV file")
	name := fs.String("name", "", "Store the route under this name")
	gps := fs.String("gps", "", "Record from an NMEA GPS device or file instead of gateway telemetry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" && *name == "" {
		return fmt.Errorf("one of -o or -name is required")
	}

	var cmdr *flight.Commander
	if *gps != "" {
		f, err := os.Open(*gps)
		if err != nil {
			return fmt.Errorf("opening GPS source: %w", err)
		}
		defer f.Close()

		cmdr = flight.New(gpsGateway(ctx, f, logger),
			flight.WithConfig(config.Flight),
			flight.WithLogger(logger),
		)
	} else {
		var gw *mqtt.Client
		var err error
		if cmdr, gw, err = createCommander(config, logger); err != nil {
			return err
		}
		defer gw.Close()
	}

	var rt route.Route
	sink := flight.SinkFunc(func(_ context.Context, wp route.Waypoint) error {
		rt = append(rt, wp)
		return nil
	})

	capture, stop := readTriggers(ctx, config.Flight, os.Stdin, logger)
	if err := cmdr.Record(ctx, sink, capture, stop); err != nil {
		return fmt.Errorf("recording route: %w", err)
	}

	if *file != "" {
		if err := route.WriteFile(*file, rt); err != nil {
			return fmt.Errorf("saving route: %w", err)
		}
		logger.Info("route saved", slog.String("file", *file), slog.Int("points", len(rt)))
	}
	if *name != "" {
		store, err := createStore(config)
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err = store.SaveRoute(ctx, *name, string(config.Flight.Frame), rt); err != nil {
			return fmt.Errorf("saving route '%s': %w", *name, err)
		}
		logger.Info("route saved", slog.String("name", *name), slog.Int("points", len(rt)))
	}
	return nil
}

func runLand(ctx context.Context, config *Config, logger *slog.Logger) error {
	cmdr, gw, err := createCommander(config, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	return cmdr.Land(ctx)
}

func runArm(ctx context.Context, config *Config, logger *slog.Logger, arm bool) error {
	cmdr, gw, err := createCommander(config, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	return cmdr.Arm(ctx, arm)
}

func runMode(ctx context.Context, config *Config, logger *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mode <flight mode, e.g. %s>", gateway.ModeOffboard)
	}

	cmdr, gw, err := createCommander(config, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	return cmdr.SetMode(ctx, gateway.FlightMode(args[0]))
}
