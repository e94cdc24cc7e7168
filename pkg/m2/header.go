package m2

import "github.com/go-gl/mathgl/mgl32"

const (
	MagicMD20 = "MD20"
	MagicMD21 = "MD21"

	// MinVersion and MaxVersion bound the header layout this package reads.
	MinVersion = 264
	MaxVersion = 272
)

// HeaderSize is the encoded size of Header.
const HeaderSize = 296

// Header is the fixed MD20 header at offset 0 of the model buffer.
type Header struct {
	Magic                    [4]byte
	Version                  uint32
	Name                     Array[byte]
	GlobalFlags              uint32
	GlobalLoops              Array[Loop]
	Sequences                Array[Sequence]
	SequenceLookup           Array[uint16]
	Bones                    Array[Bone]
	KeyBoneLookup            Array[uint16]
	Vertices                 Array[Vertex]
	NumSkinProfiles          uint32
	Colors                   Array[Color]
	Textures                 Array[Texture]
	TextureWeights           Array[TextureWeight]
	TextureTransforms        Array[TextureTransform]
	ReplaceableTextureLookup Array[uint16]
	Materials                Array[Material]
	BoneLookup               Array[uint16]
	TextureLookup            Array[uint16]
	TextureUnitLookup        Array[uint16]
	TransparencyLookup       Array[uint16]
	TextureTransformLookup   Array[uint16]
	BoundingBox              Box
	BoundingSphereRadius     float32
	CollisionBox             Box
	CollisionSphereRadius    float32
	CollisionIndices         Array[uint16]
	CollisionPositions       Array[mgl32.Vec3]
	CollisionNormals         Array[mgl32.Vec3]
	Attachments              Array[Attachment]
	AttachmentLookup         Array[uint16]
	Events                   Array[Event]
	Lights                   Array[Light]
	Cameras                  Array[Camera]
	CameraLookup             Array[uint16]
	RibbonEmitters           Array[Ribbon]
}
