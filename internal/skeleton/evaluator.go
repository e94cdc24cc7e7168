// Package skeleton evaluates a model's bone hierarchy in its bind pose and
// locates attachment points and vehicle seats on it.
package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/internal/geo"
	"github.com/samcharles93/seatmap/pkg/m2"
)

// Options control the reference frame billboarded bones face.
type Options struct {
	View mgl32.Vec3
	Up   mgl32.Vec3
}

type Option func(*Options)

// WithView sets the direction billboards face and the up vector used to
// complete their basis.
func WithView(view, up mgl32.Vec3) Option {
	return func(o *Options) {
		o.View = view
		o.Up = up
	}
}

type visit uint8

const (
	unvisited visit = iota
	visiting
	done
)

// Evaluator computes bone transforms for one model, memoizing each bone the
// first time it is resolved. It is not safe for concurrent use; create one
// per goroutine.
type Evaluator struct {
	model *m2.Model
	bones m2.View[m2.Bone]
	opts  Options

	memo     []mgl32.Mat4
	state    []visit
	computed int
}

func NewEvaluator(model *m2.Model, opts ...Option) (*Evaluator, error) {
	bones, err := model.Bones()
	if err != nil {
		return nil, err
	}
	o := Options{View: geo.AxisX, Up: geo.AxisZ}
	for _, opt := range opts {
		opt(&o)
	}
	return &Evaluator{
		model: model,
		bones: bones,
		opts:  o,
		memo:  make([]mgl32.Mat4, bones.Len()),
		state: make([]visit, bones.Len()),
	}, nil
}

// Model returns the model being evaluated.
func (e *Evaluator) Model() *m2.Model { return e.model }

// Computed is the number of bone transforms evaluated so far. Memoized
// lookups do not count.
func (e *Evaluator) Computed() int { return e.computed }

// Reset drops every memoized transform.
func (e *Evaluator) Reset() {
	clear(e.memo)
	clear(e.state)
	e.computed = 0
}

// BoneTransform returns the model-space transform of bone i.
func (e *Evaluator) BoneTransform(i int) (mgl32.Mat4, error) {
	if i < 0 || i >= e.bones.Len() {
		return mgl32.Mat4{}, fmt.Errorf("%w: bone %d of %d", ErrMalformedHierarchy, i, e.bones.Len())
	}
	switch e.state[i] {
	case done:
		return e.memo[i], nil
	case visiting:
		return mgl32.Mat4{}, fmt.Errorf("%w: bone %d is its own ancestor", ErrMalformedHierarchy, i)
	}

	e.state[i] = visiting
	m, err := e.compute(i)
	if err != nil {
		e.state[i] = unvisited
		return mgl32.Mat4{}, err
	}
	e.memo[i] = m
	e.state[i] = done
	e.computed++
	return m, nil
}

func (e *Evaluator) compute(i int) (mgl32.Mat4, error) {
	bone, err := e.bones.At(i)
	if err != nil {
		return mgl32.Mat4{}, err
	}

	parent := mgl32.Ident4()
	if bone.ParentBone != -1 {
		p := int(bone.ParentBone)
		if p < 0 || p >= e.bones.Len() {
			return mgl32.Mat4{}, fmt.Errorf("%w: bone %d has parent %d of %d", ErrMalformedHierarchy, i, p, e.bones.Len())
		}
		if parent, err = e.BoneTransform(p); err != nil {
			return mgl32.Mat4{}, err
		}
	}

	if bone.Flags&m2.BoneRebaseMask != 0 {
		parent = geo.RebasePivot(parent, bone.Pivot)
	}

	m := parent
	if bone.Flags.Has(m2.BoneTransformed) {
		anim, err := e.animation(&bone)
		if err != nil {
			return mgl32.Mat4{}, fmt.Errorf("bone %d: %w", i, err)
		}
		m = parent.Mul4(anim)
	}

	if bb := bone.Flags.Billboard(); bb != 0 {
		if m, err = e.billboard(m, bb, bone.Pivot); err != nil {
			return mgl32.Mat4{}, fmt.Errorf("bone %d: %w", i, err)
		}
	}
	return m, nil
}

// animation builds the bone's local transform about its pivot from the
// final key of the final sequence of its translation and scale tracks.
func (e *Evaluator) animation(b *m2.Bone) (mgl32.Mat4, error) {
	buf := e.model.Data()
	m := geo.Translate(mgl32.Ident4(), b.Pivot)
	tr, ok, err := m2.LastKey(buf, b.Translation)
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("translation track: %w", err)
	}
	if ok {
		m = geo.Translate(m, tr)
	}
	sc, ok, err := m2.LastKey(buf, b.Scale)
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("scale track: %w", err)
	}
	if ok {
		m = geo.Scale(m, sc)
	}
	return geo.Translate(m, b.Pivot.Mul(-1)), nil
}

func (e *Evaluator) billboard(m mgl32.Mat4, mode m2.BoneFlags, pivot mgl32.Vec3) (mgl32.Mat4, error) {
	var basis [3]mgl32.Vec3
	switch mode {
	case m2.BoneSphericalBillboard:
		basis = geo.SphericalBasis(e.opts.View, e.opts.Up)
	case m2.BoneCylindricalLockZ:
		basis = geo.CylindricalBasisZ(m, e.opts.View)
	default:
		return mgl32.Mat4{}, fmt.Errorf("%w: billboard flags %#x", ErrNotImplemented, uint32(mode))
	}
	return geo.Billboard(m, basis, pivot), nil
}

// AttachmentTransform returns the model-space transform of the attachment
// mapped to id. It reports false when the model has no such attachment.
func (e *Evaluator) AttachmentTransform(id m2.AttachmentID) (mgl32.Mat4, bool, error) {
	lookup, err := e.model.AttachmentLookup()
	if err != nil {
		return mgl32.Mat4{}, false, err
	}
	if uint64(id) >= uint64(lookup.Len()) {
		return mgl32.Mat4{}, false, nil
	}
	idx, err := lookup.At(int(id))
	if err != nil {
		return mgl32.Mat4{}, false, err
	}
	atts, err := e.model.Attachments()
	if err != nil {
		return mgl32.Mat4{}, false, err
	}
	if int(idx) >= atts.Len() {
		return mgl32.Mat4{}, false, nil
	}
	att, err := atts.At(int(idx))
	if err != nil {
		return mgl32.Mat4{}, false, err
	}
	if att.Bone < 0 || int(att.Bone) >= e.bones.Len() {
		return mgl32.Mat4{}, false, fmt.Errorf("%w: attachment %d on bone %d of %d", ErrMalformedHierarchy, idx, att.Bone, e.bones.Len())
	}
	m, err := e.BoneTransform(int(att.Bone))
	if err != nil {
		return mgl32.Mat4{}, false, err
	}
	return geo.Translate(m, att.Position), true, nil
}
