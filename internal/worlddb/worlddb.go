// Package worlddb reads the creature and vehicle seat rows the extractor
// iterates over from a sqlite world database.
package worlddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a creature entry has no row.
var ErrNotFound = errors.New("worlddb: not found")

const schema = `
CREATE TABLE IF NOT EXISTS creature_template (
	entry     INTEGER PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	modelid1  INTEGER NOT NULL DEFAULT 0,
	modelid2  INTEGER NOT NULL DEFAULT 0,
	modelid3  INTEGER NOT NULL DEFAULT 0,
	modelid4  INTEGER NOT NULL DEFAULT 0,
	VehicleId INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS vehicle_seat_override (
	vehicle_id    INTEGER NOT NULL,
	seat_index    INTEGER NOT NULL,
	seat_id       INTEGER NOT NULL,
	attachment_id INTEGER NOT NULL,
	offset_x      REAL NOT NULL DEFAULT 0,
	offset_y      REAL NOT NULL DEFAULT 0,
	offset_z      REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (vehicle_id, seat_index)
);`

// Creature is one creature_template row.
type Creature struct {
	Entry     uint32    `json:"entry"`
	Name      string    `json:"name"`
	ModelIDs  [4]uint32 `json:"model_ids"`
	VehicleID uint32    `json:"vehicle_id"`
}

// DisplayIDs returns the distinct non-zero model ids in column order.
func (c Creature) DisplayIDs() []uint32 {
	ids := make([]uint32, 0, len(c.ModelIDs))
	for _, id := range c.ModelIDs {
		if id == 0 {
			continue
		}
		dup := false
		for _, seen := range ids {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			ids = append(ids, id)
		}
	}
	return ids
}

// Seat overrides the VehicleSeat placement of one vehicle slot.
type Seat struct {
	VehicleID    uint32     `json:"vehicle_id"`
	Index        int        `json:"seat_index"`
	SeatID       uint32     `json:"seat_id"`
	AttachmentID int32      `json:"attachment_id"`
	Offset       [3]float32 `json:"offset"`
}

type DB struct {
	db *sql.DB
}

// Open connects to the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("worlddb: open %s: %w", path, err)
	}
	w := &DB{db: db}
	if err := w.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *DB) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("worlddb: schema: %w", err)
	}
	return nil
}

func (w *DB) Close() error {
	return w.db.Close()
}

const creatureColumns = `entry, name, modelid1, modelid2, modelid3, modelid4, VehicleId`

type scanner interface {
	Scan(dest ...any) error
}

func scanCreature(row scanner) (Creature, error) {
	var c Creature
	err := row.Scan(&c.Entry, &c.Name, &c.ModelIDs[0], &c.ModelIDs[1], &c.ModelIDs[2], &c.ModelIDs[3], &c.VehicleID)
	return c, err
}

// Creatures returns every creature with a vehicle, ordered by entry.
func (w *DB) Creatures(ctx context.Context) ([]Creature, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT `+creatureColumns+`
		FROM creature_template
		WHERE VehicleId <> 0
		ORDER BY entry`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Creature
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (w *DB) Creature(ctx context.Context, entry uint32) (Creature, error) {
	row := w.db.QueryRowContext(ctx, `
		SELECT `+creatureColumns+`
		FROM creature_template
		WHERE entry = ?`, entry)
	c, err := scanCreature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Creature{}, fmt.Errorf("%w: creature %d", ErrNotFound, entry)
	}
	return c, err
}

// VehicleSeats returns the overrides for a vehicle keyed by seat index.
func (w *DB) VehicleSeats(ctx context.Context, vehicleID uint32) (map[int]Seat, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT vehicle_id, seat_index, seat_id, attachment_id, offset_x, offset_y, offset_z
		FROM vehicle_seat_override
		WHERE vehicle_id = ?`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int]Seat)
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.VehicleID, &s.Index, &s.SeatID, &s.AttachmentID, &s.Offset[0], &s.Offset[1], &s.Offset[2]); err != nil {
			return nil, err
		}
		out[s.Index] = s
	}
	return out, rows.Err()
}

func (w *DB) PutCreature(ctx context.Context, c Creature) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO creature_template
			(`+creatureColumns+`)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`,
		c.Entry, c.Name, c.ModelIDs[0], c.ModelIDs[1], c.ModelIDs[2], c.ModelIDs[3], c.VehicleID)
	return err
}

func (w *DB) PutSeat(ctx context.Context, s Seat) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO vehicle_seat_override
			(vehicle_id, seat_index, seat_id, attachment_id, offset_x, offset_y, offset_z)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`,
		s.VehicleID, s.Index, s.SeatID, s.AttachmentID, s.Offset[0], s.Offset[1], s.Offset[2])
	return err
}
