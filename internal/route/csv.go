package route

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Route files are plain CSV: one waypoint per line, three numeric fields
// (x, y, z) in fixed order, no header row. Yaw is not persisted; waypoints
// read back carry no heading preference.

// Write encodes the route to w, one record per waypoint.
func Write(w io.Writer, r Route) error {
	cw := csv.NewWriter(w)
	for i, wp := range r {
		record := []string{
			strconv.FormatFloat(wp.X, 'f', -1, 64),
			strconv.FormatFloat(wp.Y, 'f', -1, 64),
			strconv.FormatFloat(wp.Z, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing waypoint %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read decodes a route from r. A malformed record (wrong field count or a
// non-numeric field) aborts the read with a parse error.
func Read(r io.Reader) (Route, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var rt Route
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading route record: %w", err)
		}

		var coords [3]float64
		for i, field := range record {
			if coords[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("parsing route record: %w", err)
			}
		}
		rt = append(rt, NewWaypoint(coords[0], coords[1], coords[2]))
	}
	return rt, nil
}

// WriteFile persists the route to a CSV file, replacing any existing file.
func WriteFile(filename string, r Route) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating route file: %w", err)
	}
	defer closeWithError(f, &err)

	if err = Write(f, r); err != nil {
		return fmt.Errorf("writing route file: %w", err)
	}
	return nil
}

// ReadFile loads a route from a CSV file. Callers must treat an error as
// "no usable route" and check it before attempting playback.
func ReadFile(filename string) (_ Route, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening route file: %w", err)
	}
	defer closeWithError(f, &err)

	rt, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading route file %s: %w", filename, err)
	}
	return rt, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
