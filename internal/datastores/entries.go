package datastores

import "github.com/samcharles93/seatmap/pkg/dbc"

type CreatureDisplayInfoEntry struct {
	ID                    uint32
	ModelID               uint32
	SoundID               uint32
	ExtendedDisplayInfoID uint32
	CreatureModelScale    float32
	CreatureModelAlpha    uint32
	TextureVariation      [3]dbc.StringRef
	PortraitTextureName   dbc.StringRef
	SizeClass             uint32
	BloodID               uint32
	NPCSoundID            uint32
	ParticleColorID       uint32
	CreatureGeosetData    uint32
	ObjectEffectPackageID uint32
}

func (*CreatureDisplayInfoEntry) TableName() string { return CreatureDisplayInfoFile }

func (e *CreatureDisplayInfoEntry) ScanRecord(c *dbc.Cursor) error {
	e.ID = c.Uint32()
	e.ModelID = c.Uint32()
	e.SoundID = c.Uint32()
	e.ExtendedDisplayInfoID = c.Uint32()
	e.CreatureModelScale = c.Float32()
	e.CreatureModelAlpha = c.Uint32()
	c.StringRefs(e.TextureVariation[:])
	e.PortraitTextureName = c.StringRef()
	e.SizeClass = c.Uint32()
	e.BloodID = c.Uint32()
	e.NPCSoundID = c.Uint32()
	e.ParticleColorID = c.Uint32()
	e.CreatureGeosetData = c.Uint32()
	e.ObjectEffectPackageID = c.Uint32()
	return c.Err()
}

type CreatureModelDataEntry struct {
	ID                     uint32
	Flags                  uint32
	ModelName              dbc.StringRef
	SizeClass              uint32
	ModelScale             float32
	BloodID                uint32
	FootprintTextureID     uint32
	FootprintTextureLength float32
	FootprintTextureWidth  float32
	FootprintParticleScale float32
	FoleyMaterialID        uint32
	FootstepShakeSize      uint32
	DeathThudShakeSize     uint32
	SoundID                uint32
	CollisionWidth         float32
	CollisionHeight        float32
	MountHeight            float32
	GeoBoxMin              [3]float32
	GeoBoxMax              [3]float32
	WorldEffectScale       float32
	AttachedEffectScale    float32
	MissileCollisionRadius float32
	MissileCollisionPush   float32
	MissileCollisionRaise  float32
}

func (*CreatureModelDataEntry) TableName() string { return CreatureModelDataFile }

func (e *CreatureModelDataEntry) ScanRecord(c *dbc.Cursor) error {
	e.ID = c.Uint32()
	e.Flags = c.Uint32()
	e.ModelName = c.StringRef()
	e.SizeClass = c.Uint32()
	e.ModelScale = c.Float32()
	e.BloodID = c.Uint32()
	e.FootprintTextureID = c.Uint32()
	e.FootprintTextureLength = c.Float32()
	e.FootprintTextureWidth = c.Float32()
	e.FootprintParticleScale = c.Float32()
	e.FoleyMaterialID = c.Uint32()
	e.FootstepShakeSize = c.Uint32()
	e.DeathThudShakeSize = c.Uint32()
	e.SoundID = c.Uint32()
	e.CollisionWidth = c.Float32()
	e.CollisionHeight = c.Float32()
	e.MountHeight = c.Float32()
	c.Float32s(e.GeoBoxMin[:])
	c.Float32s(e.GeoBoxMax[:])
	e.WorldEffectScale = c.Float32()
	e.AttachedEffectScale = c.Float32()
	e.MissileCollisionRadius = c.Float32()
	e.MissileCollisionPush = c.Float32()
	e.MissileCollisionRaise = c.Float32()
	return c.Err()
}

// ModelPath is the archive path of the model file.
func (e *CreatureModelDataEntry) ModelPath() string {
	return ModelPath(e.ModelName.String())
}

// VehicleEntry keeps the seat slots and leaves the camera and targeting
// columns unread.
type VehicleEntry struct {
	ID         uint32
	Flags      uint32
	TurnSpeed  float32
	PitchSpeed float32
	PitchMin   float32
	PitchMax   float32
	SeatID     [MaxVehicleSeats]uint32
}

func (*VehicleEntry) TableName() string { return VehicleFile }

func (e *VehicleEntry) ScanRecord(c *dbc.Cursor) error {
	e.ID = c.Uint32()
	e.Flags = c.Uint32()
	e.TurnSpeed = c.Float32()
	e.PitchSpeed = c.Float32()
	e.PitchMin = c.Float32()
	e.PitchMax = c.Float32()
	c.Uint32s(e.SeatID[:])
	return c.Err()
}

// VehicleSeatEntry keeps the placement columns of a seat.
type VehicleSeatEntry struct {
	ID                    uint32
	Flags                 uint32
	AttachmentID          int32
	AttachmentOffset      [3]float32
	PassengerYaw          float32
	PassengerPitch        float32
	PassengerRoll         float32
	PassengerAttachmentID int32
	FlagsB                uint32
}

func (*VehicleSeatEntry) TableName() string { return VehicleSeatFile }

func (e *VehicleSeatEntry) ScanRecord(c *dbc.Cursor) error {
	e.ID = c.Uint32()
	e.Flags = c.Uint32()
	e.AttachmentID = c.Int32()
	c.Float32s(e.AttachmentOffset[:])
	c.Skip(23)
	e.PassengerYaw = c.Float32()
	e.PassengerPitch = c.Float32()
	e.PassengerRoll = c.Float32()
	e.PassengerAttachmentID = c.Int32()
	c.Skip(12)
	e.FlagsB = c.Uint32()
	return c.Err()
}

type ItemEntry struct {
	ID                      uint32
	ClassID                 uint32
	SubclassID              uint32
	SoundOverrideSubclassID int32
	Material                uint32
	DisplayInfoID           uint32
	InventoryType           uint32
	SheatheType             uint32
}

func (*ItemEntry) TableName() string { return ItemFile }

func (e *ItemEntry) ScanRecord(c *dbc.Cursor) error {
	e.ID = c.Uint32()
	e.ClassID = c.Uint32()
	e.SubclassID = c.Uint32()
	e.SoundOverrideSubclassID = c.Int32()
	e.Material = c.Uint32()
	e.DisplayInfoID = c.Uint32()
	e.InventoryType = c.Uint32()
	e.SheatheType = c.Uint32()
	return c.Err()
}
