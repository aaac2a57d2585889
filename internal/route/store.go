package route

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRouteNotFound is returned when a named route does not exist in the store.
var ErrRouteNotFound = errors.New("route not found")

// Info describes a stored route without its waypoints.
type Info struct {
	ID        int64
	Name      string
	Frame     string
	CreatedAt time.Time
	Points    int
}

// Store is a sqlite-backed library of named routes. Write and read
// connections are opened lazily and independently: the write connection
// initializes the schema, the read connection opens the database read-only.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a route store backed by the sqlite database at dbPath.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// SaveRoute stores a named route, all waypoints in a single transaction.
// The name must be unique within the store.
func (s *Store) SaveRoute(ctx context.Context, name, frame string, r Route) (routeID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		return
	}
	defer rollbackWithError(tx, &err)

	result, err := tx.ExecContext(ctx, insertRouteSQL, name, frame)
	if err != nil {
		err = fmt.Errorf("inserting route: %w", err)
		return
	}
	if routeID, err = result.LastInsertId(); err != nil {
		err = fmt.Errorf("getting route ID: %w", err)
		return
	}

	stmt, err := tx.PrepareContext(ctx, insertWaypointSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	for seq, wp := range r {
		var yaw sql.NullFloat64
		if wp.HasYaw() {
			yaw.Float64 = wp.Yaw
			yaw.Valid = true
		}

		if _, err = stmt.ExecContext(ctx, routeID, seq, wp.X, wp.Y, wp.Z, yaw); err != nil {
			err = fmt.Errorf("inserting waypoint %d: %w", seq, err)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
	}
	return
}

// LoadRoute returns the waypoints of a named route in recorded order.
func (s *Store) LoadRoute(ctx context.Context, name string) (_ Route, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	var routeID int64
	if err = db.QueryRowContext(ctx, selectRouteIDSQL, name).Scan(&routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
		}
		return nil, fmt.Errorf("looking up route: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectWaypointsSQL, routeID)
	if err != nil {
		return nil, fmt.Errorf("querying waypoints: %w", err)
	}
	defer closeWithError(rows, &err)

	var rt Route
	for rows.Next() {
		var wp Waypoint
		var yaw sql.NullFloat64
		if err = rows.Scan(&wp.X, &wp.Y, &wp.Z, &yaw); err != nil {
			return nil, fmt.Errorf("scanning waypoint: %w", err)
		}
		if yaw.Valid {
			wp.Yaw = yaw.Float64
		} else {
			wp.Yaw = math.NaN()
		}
		rt = append(rt, wp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waypoints: %w", err)
	}
	return rt, nil
}

// Routes lists stored routes in creation order.
func (s *Store) Routes(ctx context.Context) (routes []Info, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRoutesSQL)
	if err != nil {
		err = fmt.Errorf("querying routes: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var info Info
		if err = rows.Scan(&info.ID, &info.Name, &info.Frame, &info.CreatedAt, &info.Points); err != nil {
			err = fmt.Errorf("scanning route: %w", err)
			return
		}
		routes = append(routes, info)
	}
	err = rows.Err()
	return
}

// DeleteRoute removes a named route and its waypoints.
func (s *Store) DeleteRoute(ctx context.Context, name string) error {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	result, err := db.ExecContext(ctx, deleteRouteSQL, name)
	if err != nil {
		return fmt.Errorf("deleting route: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return nil
}

// Close closes both database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rErr := rb.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) && *err == nil {
		*err = rErr
	}
}
