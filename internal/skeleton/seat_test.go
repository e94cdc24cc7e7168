package skeleton

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/pkg/m2"
	"github.com/samcharles93/seatmap/pkg/m2/m2test"
)

func TestSeatPositionIdentityChain(t *testing.T) {
	t.Parallel()

	model := parse(t, seatModel(m2test.Identity(2), mgl32.Vec3{}))
	pos, err := ComputeSeatPosition(model, SeatRequest{
		AttachmentID: 0,
		Offset:       mgl32.Vec3{1, 2, 3},
		ModelScale:   1,
		DisplayScale: 1,
	})
	if err != nil {
		t.Fatalf("seat position: %v", err)
	}
	if pos.Fallback {
		t.Fatalf("identity chain fell back")
	}
	if pos.ModelAttachment != m2.AttachVehicleSeat1 {
		t.Fatalf("model attachment: got %v", pos.ModelAttachment)
	}
	if !pos.Position.ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, tol) {
		t.Fatalf("position: got %v want [1 2 3]", pos.Position)
	}
}

func TestSeatPositionFallsBackWithoutAttachment(t *testing.T) {
	t.Parallel()

	b := seatModel(m2test.Identity(2), mgl32.Vec3{})
	// Seat 1 maps to an attachment index past the end of the array.
	b.AttachmentLookup[m2.AttachVehicleSeat1] = 7
	model := parse(t, b)

	req := SeatRequest{
		AttachmentID: 0,
		Offset:       mgl32.Vec3{1, -2, 0.5},
		ModelScale:   2,
		DisplayScale: 1.5,
	}
	pos, err := ComputeSeatPosition(model, req)
	if err != nil {
		t.Fatalf("seat position: %v", err)
	}
	if !pos.Fallback {
		t.Fatalf("expected fallback")
	}
	if !pos.Position.ApproxEqualThreshold(mgl32.Vec3{3, -6, 1.5}, tol) {
		t.Fatalf("fallback position: got %v want [3 -6 1.5]", pos.Position)
	}

	req.AttachmentID = 40
	pos, err = ComputeSeatPosition(model, req)
	if err != nil || !pos.Fallback {
		t.Fatalf("seat id outside table: pos=%+v err=%v", pos, err)
	}
}

func TestSeatPositionScalesAndPivots(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(2)
	bones[0].Flags = m2.BoneTransformed
	b := seatModel(bones, mgl32.Vec3{0, 0, 1})
	b.Keys = map[int]m2test.BoneKeys{
		0: {Scale: [][]mgl32.Vec3{{{4, 4, 4}}}},
	}
	e := newEvaluator(t, b)

	pos, err := e.SeatPosition(SeatRequest{
		AttachmentID: 0,
		Offset:       mgl32.Vec3{1, 0, 0},
		ModelScale:   0.5,
		Pivot:        mgl32.Vec3{0, 0, -1},
	})
	if err != nil {
		t.Fatalf("seat position: %v", err)
	}
	// The attachment sits at (0, 0, 4) after the bone scale. The basis is
	// renormalised to the true scale 0.5, so offset - pivot = (1, 0, 1)
	// lands at (0.5, 0, 4.5).
	if !pos.Position.ApproxEqualThreshold(mgl32.Vec3{0.5, 0, 4.5}, tol) {
		t.Fatalf("position: got %v want [0.5 0 4.5]", pos.Position)
	}
}

func TestSeatAttachmentTable(t *testing.T) {
	t.Parallel()

	if id, ok := ModelAttachment(7); !ok || id != m2.AttachVehicleSeat8 {
		t.Fatalf("seat 7: got %v %v", id, ok)
	}
	if id, ok := ModelAttachment(25); !ok || id != m2.AttachRightFoot {
		t.Fatalf("seat 25: got %v %v", id, ok)
	}
	for _, bad := range []int32{-1, 26} {
		if _, ok := ModelAttachment(bad); ok {
			t.Fatalf("seat %d should be outside the table", bad)
		}
	}
	if (SeatRequest{}).Scale() != 1 {
		t.Fatalf("unset scales should default to 1")
	}
}
