package route

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS routes (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    frame      TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS waypoints (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    route_id INTEGER NOT NULL REFERENCES routes (id) ON DELETE CASCADE,
    seq      INTEGER NOT NULL,
    x        REAL NOT NULL,
    y        REAL NOT NULL,
    z        REAL NOT NULL,
    yaw      REAL,
    UNIQUE (route_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_waypoints_route ON waypoints (route_id, seq);
`

const insertRouteSQL = `
INSERT INTO routes (name, frame)
VALUES (?, ?)`

const insertWaypointSQL = `
INSERT INTO waypoints (route_id, seq, x, y, z, yaw)
VALUES (?, ?, ?, ?, ?, ?)`

const selectRouteIDSQL = `
SELECT id
FROM routes
WHERE name = ?`

const selectWaypointsSQL = `
SELECT x, y, z, yaw
FROM waypoints
WHERE route_id = ?
ORDER BY seq`

const selectRoutesSQL = `
SELECT r.id,
       r.name,
       r.frame,
       r.created_at,
       COUNT(w.id)
FROM routes r
         LEFT JOIN waypoints w ON w.route_id = r.id
GROUP BY r.id
ORDER BY r.created_at, r.id`

const deleteRouteSQL = `
DELETE
FROM routes
WHERE name = ?`
