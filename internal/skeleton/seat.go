package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/samcharles93/seatmap/internal/geo"
	"github.com/samcharles93/seatmap/pkg/m2"
)

// SeatAttachments maps a seat's attachment id to the model attachment the
// client places the passenger on. The order past the eight vehicle seats
// has not been checked against known-good in-game coordinates.
var SeatAttachments = [26]m2.AttachmentID{
	m2.AttachVehicleSeat1,
	m2.AttachVehicleSeat2,
	m2.AttachVehicleSeat3,
	m2.AttachVehicleSeat4,
	m2.AttachVehicleSeat5,
	m2.AttachVehicleSeat6,
	m2.AttachVehicleSeat7,
	m2.AttachVehicleSeat8,
	m2.AttachBase,
	m2.AttachHead,
	m2.AttachHandRight,
	m2.AttachHandLeft,
	m2.AttachBack,
	m2.AttachShoulderRight,
	m2.AttachShoulderLeft,
	m2.AttachChest,
	m2.AttachHelm,
	m2.AttachBreath,
	m2.AttachPlayerNameMounted,
	m2.AttachSpecial1,
	m2.AttachSpecial2,
	m2.AttachSpecial3,
	m2.AttachHipRight,
	m2.AttachHipLeft,
	m2.AttachLeftFoot,
	m2.AttachRightFoot,
}

// ModelAttachment translates a seat attachment id. It reports false for
// ids outside the table.
func ModelAttachment(seatAttachment int32) (m2.AttachmentID, bool) {
	if seatAttachment < 0 || int(seatAttachment) >= len(SeatAttachments) {
		return 0, false
	}
	return SeatAttachments[seatAttachment], true
}

// SeatRequest describes one passenger placement query.
type SeatRequest struct {
	// AttachmentID is the seat's attachment id, before translation.
	AttachmentID int32
	Offset       mgl32.Vec3
	ModelScale   float32
	DisplayScale float32
	// Pivot is subtracted from Offset before it is transformed.
	Pivot mgl32.Vec3
}

// Scale is the model's true scale. Unset factors count as 1.
func (r SeatRequest) Scale() float32 {
	ms, ds := r.ModelScale, r.DisplayScale
	if ms == 0 {
		ms = 1
	}
	if ds == 0 {
		ds = 1
	}
	return ms * ds
}

type SeatPosition struct {
	Position mgl32.Vec3
	// Fallback is set when the model has no matching attachment and
	// Position is the scaled raw offset.
	Fallback        bool
	ModelAttachment m2.AttachmentID
}

// SeatPosition places a passenger. Without a matching attachment the
// scaled offset is returned with Fallback set.
func (e *Evaluator) SeatPosition(req SeatRequest) (SeatPosition, error) {
	scale := req.Scale()
	fallback := SeatPosition{Position: req.Offset.Mul(scale), Fallback: true}

	id, ok := ModelAttachment(req.AttachmentID)
	if !ok {
		return fallback, nil
	}
	fallback.ModelAttachment = id

	m, ok, err := e.AttachmentTransform(id)
	if err != nil {
		return SeatPosition{}, err
	}
	if !ok {
		return fallback, nil
	}

	m = geo.ScaleUniform(m, geo.UniformScaleTo(m, scale))
	return SeatPosition{
		Position:        geo.TransformPoint(m, req.Offset.Sub(req.Pivot)),
		ModelAttachment: id,
	}, nil
}

// ComputeSeatPosition evaluates a single seat on a fresh evaluator.
func ComputeSeatPosition(model *m2.Model, req SeatRequest, opts ...Option) (SeatPosition, error) {
	e, err := NewEvaluator(model, opts...)
	if err != nil {
		return SeatPosition{}, err
	}
	return e.SeatPosition(req)
}
