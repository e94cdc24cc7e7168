// Package extracttest provides a small client data set with one vehicle
// creature for pipeline tests.
package extracttest

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/datastores"
	"github.com/samcharles93/seatmap/internal/worlddb"
	"github.com/samcharles93/seatmap/pkg/dbc"
	"github.com/samcharles93/seatmap/pkg/dbc/dbctest"
	"github.com/samcharles93/seatmap/pkg/m2"
	"github.com/samcharles93/seatmap/pkg/m2/m2test"
)

const (
	ModelName     = `Creature\Mammoth\Mammoth.mdx`
	ModelPath     = `Creature\Mammoth\Mammoth.m2`
	ModelDataID   = 100
	DisplayID     = 500
	VehicleID     = 312
	SeatAttached  = 10
	SeatMissing   = 11
	DisplayScale  = 2
	CreatureEntry = 32633
)

// Creature rides VehicleID with DisplayID.
var Creature = worlddb.Creature{
	Entry:     CreatureEntry,
	Name:      "Traveler's Tundra Mammoth",
	ModelIDs:  [4]uint32{DisplayID, DisplayID},
	VehicleID: VehicleID,
}

// Model is two identity bones with vehicle seat 1 two units above the
// origin on the child.
func Model() *m2test.Builder {
	b := &m2test.Builder{Name: "Mammoth", Bones: m2test.Identity(2)}
	return b.Attach(m2.AttachVehicleSeat1, 1, mgl32.Vec3{0, 0, 2})
}

// World returns the provider contents. Seat 0 sits on vehicle seat 1 with
// offset (1, 0, 0) and lands at (2, 0, 2); seat 1 asks for vehicle seat 2,
// which the model lacks, and falls back to (0, 2, 0).
func World() archive.Mem {
	mem := archive.Mem{}
	mem.Put(ModelPath, Model().Bytes())

	mem.Put(datastores.CreatureModelDataFile, dbctest.New(dbc.MustLookup(datastores.CreatureModelDataFile)).
		Add(map[string]any{"ID": uint32(ModelDataID), "ModelName": ModelName, "ModelScale": float32(1)}).
		Bytes())

	mem.Put(datastores.CreatureDisplayInfoFile, dbctest.New(dbc.MustLookup(datastores.CreatureDisplayInfoFile)).
		Add(map[string]any{"ID": uint32(DisplayID), "ModelID": uint32(ModelDataID), "CreatureModelScale": float32(DisplayScale)}).
		Bytes())

	mem.Put(datastores.VehicleFile, dbctest.New(dbc.MustLookup(datastores.VehicleFile)).
		Add(map[string]any{"ID": uint32(VehicleID), "SeatID": []uint32{SeatAttached, SeatMissing}}).
		Bytes())

	mem.Put(datastores.VehicleSeatFile, dbctest.New(dbc.MustLookup(datastores.VehicleSeatFile)).
		Add(map[string]any{"ID": uint32(SeatAttached), "AttachmentID": int32(0), "AttachmentOffset": []float32{1, 0, 0}}).
		Add(map[string]any{"ID": uint32(SeatMissing), "AttachmentID": int32(1), "AttachmentOffset": []float32{0, 1, 0}}).
		Bytes())

	return mem
}

// Source is an in-memory extract source.
type Source struct {
	List  []worlddb.Creature
	Seats map[uint32]map[int]worlddb.Seat
}

func (s *Source) Creatures(context.Context) ([]worlddb.Creature, error) {
	return s.List, nil
}

func (s *Source) VehicleSeats(_ context.Context, vehicleID uint32) (map[int]worlddb.Seat, error) {
	return s.Seats[vehicleID], nil
}

func (s *Source) Creature(_ context.Context, entry uint32) (worlddb.Creature, error) {
	for _, c := range s.List {
		if c.Entry == entry {
			return c, nil
		}
	}
	return worlddb.Creature{}, fmt.Errorf("%w: creature %d", worlddb.ErrNotFound, entry)
}
