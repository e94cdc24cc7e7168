package skeleton

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/pkg/m2"
	"github.com/samcharles93/seatmap/pkg/m2/m2test"
)

const tol = 1e-5

func parse(t *testing.T, b *m2test.Builder) *m2.Model {
	t.Helper()
	m, err := m2.Parse(b.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m
}

func newEvaluator(t *testing.T, b *m2test.Builder, opts ...Option) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(parse(t, b), opts...)
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	return e
}

// seatModel has a root and a child bone with vehicle seat 1 on the child.
func seatModel(bones []m2.Bone, pos mgl32.Vec3) *m2test.Builder {
	lookup := make([]uint16, m2.AttachVehicleSeat1+1)
	for i := range lookup {
		lookup[i] = 0xFFFF
	}
	lookup[m2.AttachVehicleSeat1] = 0
	return &m2test.Builder{
		Bones: bones,
		Attachments: []m2.Attachment{
			{ID: uint32(m2.AttachVehicleSeat1), Bone: int16(len(bones) - 1), Position: pos},
		},
		AttachmentLookup: lookup,
	}
}

func TestBoneTransformIsMemoized(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(4)
	bones[1].Flags = m2.BoneTransformed
	bones[1].Pivot = mgl32.Vec3{0, 1, 0}
	e := newEvaluator(t, &m2test.Builder{
		Bones: bones,
		Keys: map[int]m2test.BoneKeys{
			1: {Translation: [][]mgl32.Vec3{{{0.5, 0.25, 2}}}, Scale: [][]mgl32.Vec3{{{1.5, 1.5, 1.5}}}},
		},
	})

	first, err := e.BoneTransform(3)
	if err != nil {
		t.Fatalf("first evaluation: %v", err)
	}
	if e.Computed() != 4 {
		t.Fatalf("first evaluation computed %d bones, want 4", e.Computed())
	}
	second, err := e.BoneTransform(3)
	if err != nil {
		t.Fatalf("second evaluation: %v", err)
	}
	if e.Computed() != 4 {
		t.Fatalf("second evaluation recomputed: %d", e.Computed())
	}
	if first != second {
		t.Fatalf("memoized result differs:\n%v\n%v", first, second)
	}
	if _, err := e.BoneTransform(2); err != nil || e.Computed() != 4 {
		t.Fatalf("ancestor lookup recomputed: computed=%d err=%v", e.Computed(), err)
	}

	e.Reset()
	if _, err := e.BoneTransform(3); err != nil || e.Computed() != 4 {
		t.Fatalf("after reset: computed=%d err=%v", e.Computed(), err)
	}
}

func TestAnimationUsesFinalKeyAboutPivot(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(1)
	bones[0].Flags = m2.BoneTransformed
	bones[0].Pivot = mgl32.Vec3{1, 0, 0}
	b := &m2test.Builder{
		Bones: bones,
		Keys: map[int]m2test.BoneKeys{
			0: {
				Translation: [][]mgl32.Vec3{{{9, 9, 9}}, {{7, 7, 7}, {0, 0, 5}}},
				Scale:       [][]mgl32.Vec3{{{2, 2, 2}}},
			},
		},
	}
	e := newEvaluator(t, b)
	m, err := e.BoneTransform(0)
	if err != nil {
		t.Fatalf("bone transform: %v", err)
	}
	// The pivot is a fixed point of the scale, so it only moves by the
	// translation key.
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if !got.ApproxEqualThreshold(mgl32.Vec3{1, 0, 5}, tol) {
		t.Fatalf("pivot: got %v want [1 0 5]", got)
	}
	got = m.Mul4x1(mgl32.Vec4{2, 0, 0, 1}).Vec3()
	if !got.ApproxEqualThreshold(mgl32.Vec3{3, 0, 5}, tol) {
		t.Fatalf("point off pivot: got %v want [3 0 5]", got)
	}

	// Without the transformed flag the tracks are ignored.
	bones[0].Flags = 0
	e = newEvaluator(t, b)
	if m, _ := e.BoneTransform(0); m != mgl32.Ident4() {
		t.Fatalf("untransformed bone should inherit identity: %v", m)
	}
}

func TestPivotRebaseFlags(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(2)
	bones[0].Flags = m2.BoneTransformed
	bones[1].Flags = m2.BoneIgnoreParentRotate
	bones[1].Pivot = mgl32.Vec3{3, 0, 0}
	e := newEvaluator(t, &m2test.Builder{
		Bones: bones,
		Keys: map[int]m2test.BoneKeys{
			0: {Translation: [][]mgl32.Vec3{{{0, 2, 0}}}},
		},
	})
	root, err := e.BoneTransform(0)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	child, err := e.BoneTransform(1)
	if err != nil {
		t.Fatalf("child: %v", err)
	}
	if !child.ApproxEqualThreshold(root, tol) {
		t.Fatalf("rebase about pivot changed the parent transform:\n%v\n%v", child, root)
	}
}

func TestMalformedHierarchy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		parents []int16
	}{
		{"self parent", []int16{0}},
		{"two cycle", []int16{1, 0}},
		{"long cycle", []int16{-1, 3, 1, 2}},
		{"parent out of range", []int16{-1, 5}},
		{"negative parent", []int16{-2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bones := m2test.Identity(len(tt.parents))
			for i, p := range tt.parents {
				bones[i].ParentBone = p
			}
			e := newEvaluator(t, &m2test.Builder{Bones: bones})
			if _, err := e.BoneTransform(len(bones) - 1); !errors.Is(err, ErrMalformedHierarchy) {
				t.Fatalf("got %v want ErrMalformedHierarchy", err)
			}
		})
	}

	e := newEvaluator(t, &m2test.Builder{Bones: m2test.Identity(1)})
	if _, err := e.BoneTransform(1); !errors.Is(err, ErrMalformedHierarchy) {
		t.Fatalf("bone index out of range: got %v", err)
	}
}

func TestBillboardModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags m2.BoneFlags
		want  error
	}{
		{"spherical", m2.BoneSphericalBillboard, nil},
		{"lock z", m2.BoneCylindricalLockZ, nil},
		{"lock x", m2.BoneCylindricalLockX, ErrNotImplemented},
		{"lock y", m2.BoneCylindricalLockY, ErrNotImplemented},
		{"mixed", m2.BoneSphericalBillboard | m2.BoneCylindricalLockZ, ErrNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bones := m2test.Identity(2)
			bones[1].Flags = tt.flags
			e := newEvaluator(t, &m2test.Builder{Bones: bones})
			_, err := e.BoneTransform(1)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}

func TestSphericalBillboardFacesView(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(1)
	bones[0].Flags = m2.BoneSphericalBillboard
	b := seatModel(bones, mgl32.Vec3{1, 0, 0})

	e := newEvaluator(t, b, WithView(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}))
	m, ok, err := e.AttachmentTransform(m2.AttachVehicleSeat1)
	if err != nil || !ok {
		t.Fatalf("attachment: ok=%v err=%v", ok, err)
	}
	// The attachment sits one unit along the bone's X axis, which now
	// points along the view direction.
	got := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, tol) {
		t.Fatalf("billboarded attachment: got %v want [0 1 0]", got)
	}
}

func TestAttachmentTransform(t *testing.T) {
	t.Parallel()

	bones := m2test.Identity(2)
	e := newEvaluator(t, seatModel(bones, mgl32.Vec3{0, 0, 2}))

	m, ok, err := e.AttachmentTransform(m2.AttachVehicleSeat1)
	if err != nil || !ok {
		t.Fatalf("seat 1: ok=%v err=%v", ok, err)
	}
	if got := m.Col(3).Vec3(); !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, 2}, tol) {
		t.Fatalf("attachment translation: got %v", got)
	}

	for _, id := range []m2.AttachmentID{m2.AttachShield, m2.AttachVehicleSeat2, m2.AttachHeadTop} {
		if _, ok, err := e.AttachmentTransform(id); ok || err != nil {
			t.Fatalf("%v: ok=%v err=%v, want no attachment", id, ok, err)
		}
	}

	broken := seatModel(bones, mgl32.Vec3{})
	broken.Attachments[0].Bone = 9
	e = newEvaluator(t, broken)
	if _, _, err := e.AttachmentTransform(m2.AttachVehicleSeat1); !errors.Is(err, ErrMalformedHierarchy) {
		t.Fatalf("attachment on missing bone: got %v", err)
	}
}
