package m2

import "github.com/go-gl/mathgl/mgl32"

// BoneFlags is the bone flag word.
type BoneFlags uint32

const (
	BoneIgnoreParentTranslate BoneFlags = 0x1
	BoneIgnoreParentScale     BoneFlags = 0x2
	BoneIgnoreParentRotate    BoneFlags = 0x4
	BoneSphericalBillboard    BoneFlags = 0x8
	BoneCylindricalLockX      BoneFlags = 0x10
	BoneCylindricalLockY      BoneFlags = 0x20
	BoneCylindricalLockZ      BoneFlags = 0x40
	BoneTransformed           BoneFlags = 0x200
	BoneKinematic             BoneFlags = 0x400
	BoneHelmetAnimScaled      BoneFlags = 0x1000

	// BoneRebaseMask selects the flags that re-base the parent transform
	// on the bone's pivot.
	BoneRebaseMask = BoneIgnoreParentTranslate | BoneIgnoreParentScale | BoneIgnoreParentRotate
	// BoneBillboardMask selects the billboard mode bits.
	BoneBillboardMask = BoneSphericalBillboard | BoneCylindricalLockX | BoneCylindricalLockY | BoneCylindricalLockZ
)

func (f BoneFlags) Has(flag BoneFlags) bool { return f&flag != 0 }

// Billboard returns only the billboard mode bits.
func (f BoneFlags) Billboard() BoneFlags { return f & BoneBillboardMask }

// Bone is M2CompBone. ParentBone is -1 for roots.
type Bone struct {
	KeyBoneID   int32
	Flags       BoneFlags
	ParentBone  int16
	SubmeshID   uint16
	BoneNameCRC uint32
	Translation Track[mgl32.Vec3]
	Rotation    Track[CompQuat]
	Scale       Track[mgl32.Vec3]
	Pivot       mgl32.Vec3
}

// Attachment is a named point relative to a bone.
type Attachment struct {
	ID              uint32
	Bone            int16
	Unknown         uint16
	Position        mgl32.Vec3
	AnimateAttached Track[uint8]
}
