package m2

import "github.com/go-gl/mathgl/mgl32"

type Loop struct {
	Timestamp uint32
}

type Range struct {
	Minimum uint32
	Maximum uint32
}

type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

type Bounds struct {
	Extent Box
	Radius float32
}

// TrackBase holds per-sequence keyframe timestamps.
type TrackBase struct {
	InterpolationType uint16
	GlobalSequence    uint16
	Timestamps        Array[Array[uint32]]
}

// Track is an animated value: one key array per animation sequence.
type Track[T any] struct {
	TrackBase
	Values Array[Array[T]]
}

type SplineKey[T any] struct {
	Value  T
	InTan  T
	OutTan T
}

// Fixed16 is a signed 0.15 fixed point value.
type Fixed16 uint16

func (f Fixed16) Float() float32 {
	v := float32(f&0x7FFF) / 0x7FFF
	if f&0x8000 != 0 {
		return -v
	}
	return v
}

// CompQuat is a rotation packed into four signed 16-bit components.
type CompQuat [4]int16

func unpackComponent(v int16) float32 {
	if v < 0 {
		return float32(int32(v)+32768) / 32767
	}
	return float32(int32(v)-32767) / 32767
}

// Quat expands the packed rotation. Component order on disk is x, y, z, w.
func (q CompQuat) Quat() mgl32.Quat {
	return mgl32.Quat{
		W: unpackComponent(q[3]),
		V: mgl32.Vec3{unpackComponent(q[0]), unpackComponent(q[1]), unpackComponent(q[2])},
	}
}

type Sequence struct {
	ID             uint16
	VariationIndex uint16
	Duration       uint32
	MoveSpeed      float32
	Flags          uint32
	Frequency      int16
	_              uint16
	Replay         Range
	BlendTime      uint32
	Bounds         Bounds
	VariationNext  int16
	AliasNext      uint16
}

type Vertex struct {
	Pos         mgl32.Vec3
	BoneWeights [4]uint8
	BoneIndices [4]uint8
	Normal      mgl32.Vec3
	TexCoords   [2]mgl32.Vec2
}

type Color struct {
	Color Track[mgl32.Vec3]
	Alpha Track[Fixed16]
}

type Texture struct {
	Type     uint32
	Flags    uint32
	Filename Array[byte]
}

type TextureWeight struct {
	Weight Track[Fixed16]
}

type TextureTransform struct {
	Translation Track[mgl32.Vec3]
	Rotation    Track[mgl32.Vec4]
	Scaling     Track[mgl32.Vec3]
}

type Material struct {
	Flags        uint16
	BlendingMode uint16
}

type Event struct {
	Identifier uint32
	Data       uint32
	Bone       uint32
	Position   mgl32.Vec3
	Enabled    TrackBase
}

type Light struct {
	Type             uint16
	Bone             int16
	Position         mgl32.Vec3
	AmbientColor     Track[mgl32.Vec3]
	AmbientIntensity Track[float32]
	DiffuseColor     Track[mgl32.Vec3]
	DiffuseIntensity Track[float32]
	AttenuationStart Track[float32]
	AttenuationEnd   Track[float32]
	Visibility       Track[uint8]
}

type Camera struct {
	Type               uint32
	FarClip            float32
	NearClip           float32
	Positions          Track[SplineKey[mgl32.Vec3]]
	PositionBase       mgl32.Vec3
	TargetPositions    Track[SplineKey[mgl32.Vec3]]
	TargetPositionBase mgl32.Vec3
	Roll               Track[SplineKey[float32]]
	FoV                Track[SplineKey[float32]]
}

type Ribbon struct {
	RibbonID        uint32
	BoneIndex       uint32
	Position        mgl32.Vec3
	TextureIndices  Array[uint16]
	MaterialIndices Array[uint16]
	ColorTrack      Track[mgl32.Vec3]
	AlphaTrack      Track[Fixed16]
	HeightAbove     Track[float32]
	HeightBelow     Track[float32]
	EdgesPerSecond  float32
	EdgeLifetime    float32
	Gravity         float32
	TextureRows     uint16
	TextureCols     uint16
	TexSlotTrack    Track[uint16]
	VisibilityTrack Track[uint8]
	PriorityPlane   int16
	_               uint16
}
