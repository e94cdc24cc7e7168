package worlddb

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreatures(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	rows := []Creature{
		{Entry: 30, Name: "Traveler's Tundra Mammoth", ModelIDs: [4]uint32{27237}, VehicleID: 312},
		{Entry: 10, Name: "Grunt", ModelIDs: [4]uint32{4259, 4260}},
		{Entry: 20, Name: "Siege Engine", ModelIDs: [4]uint32{0, 25870, 25870, 0}, VehicleID: 244},
	}
	for _, c := range rows {
		if err := db.PutCreature(ctx, c); err != nil {
			t.Fatalf("PutCreature(%d): %v", c.Entry, err)
		}
	}

	got, err := db.Creatures(ctx)
	if err != nil {
		t.Fatalf("Creatures: %v", err)
	}
	if len(got) != 2 || got[0].Entry != 20 || got[1].Entry != 30 {
		t.Fatalf("unexpected creatures %+v", got)
	}
	if got[1].Name != "Traveler's Tundra Mammoth" {
		t.Fatalf("name = %q", got[1].Name)
	}
	if ids := got[0].DisplayIDs(); !reflect.DeepEqual(ids, []uint32{25870}) {
		t.Fatalf("DisplayIDs = %v", ids)
	}

	c, err := db.Creature(ctx, 10)
	if err != nil {
		t.Fatalf("Creature: %v", err)
	}
	if c.VehicleID != 0 || !reflect.DeepEqual(c.DisplayIDs(), []uint32{4259, 4260}) {
		t.Fatalf("unexpected creature %+v", c)
	}
	if _, err := db.Creature(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing creature: got %v", err)
	}
}

func TestVehicleSeats(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	seat := Seat{VehicleID: 312, Index: 1, SeatID: 3206, AttachmentID: 7, Offset: [3]float32{0.5, -1, 2.25}}
	if err := db.PutSeat(ctx, seat); err != nil {
		t.Fatalf("PutSeat: %v", err)
	}
	seat.Offset[2] = 3
	if err := db.PutSeat(ctx, seat); err != nil {
		t.Fatalf("PutSeat replace: %v", err)
	}
	if err := db.PutSeat(ctx, Seat{VehicleID: 1, Index: 0, SeatID: 1}); err != nil {
		t.Fatalf("PutSeat other: %v", err)
	}

	seats, err := db.VehicleSeats(ctx, 312)
	if err != nil {
		t.Fatalf("VehicleSeats: %v", err)
	}
	if len(seats) != 1 {
		t.Fatalf("got %d seats", len(seats))
	}
	if got := seats[1]; got != seat {
		t.Fatalf("seat = %+v, want %+v", got, seat)
	}

	empty, err := db.VehicleSeats(ctx, 999)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty vehicle: %v %v", empty, err)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}
