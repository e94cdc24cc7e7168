// Package datastores registers the client tables the seat pipeline reads
// and provides a typed entry for each.
package datastores

import (
	"strings"

	"github.com/samcharles93/seatmap/pkg/dbc"
)

const (
	CreatureDisplayInfoFile = `DBFilesClient\CreatureDisplayInfo.dbc`
	CreatureModelDataFile   = `DBFilesClient\CreatureModelData.dbc`
	VehicleFile             = `DBFilesClient\Vehicle.dbc`
	VehicleSeatFile         = `DBFilesClient\VehicleSeat.dbc`
	ItemFile                = `DBFilesClient\Item.db2`
)

// MaxVehicleSeats is the number of seat slots in a Vehicle record.
const MaxVehicleSeats = 8

func init() {
	dbc.Register(dbc.NewMeta(CreatureDisplayInfoFile, false,
		dbc.Uint("ID"),
		dbc.Uint("ModelID"),
		dbc.Uint("SoundID"),
		dbc.Uint("ExtendedDisplayInfoID"),
		dbc.Float("CreatureModelScale"),
		dbc.Uint("CreatureModelAlpha"),
		dbc.Array(dbc.String("TextureVariation"), 3),
		dbc.String("PortraitTextureName"),
		dbc.Uint("SizeClass"),
		dbc.Uint("BloodID"),
		dbc.Uint("NPCSoundID"),
		dbc.Uint("ParticleColorID"),
		dbc.Uint("CreatureGeosetData"),
		dbc.Uint("ObjectEffectPackageID"),
	))

	dbc.Register(dbc.NewMeta(CreatureModelDataFile, false,
		dbc.Uint("ID"),
		dbc.Uint("Flags"),
		dbc.String("ModelName"),
		dbc.Uint("SizeClass"),
		dbc.Float("ModelScale"),
		dbc.Uint("BloodID"),
		dbc.Uint("FootprintTextureID"),
		dbc.Float("FootprintTextureLength"),
		dbc.Float("FootprintTextureWidth"),
		dbc.Float("FootprintParticleScale"),
		dbc.Uint("FoleyMaterialID"),
		dbc.Uint("FootstepShakeSize"),
		dbc.Uint("DeathThudShakeSize"),
		dbc.Uint("SoundID"),
		dbc.Float("CollisionWidth"),
		dbc.Float("CollisionHeight"),
		dbc.Float("MountHeight"),
		dbc.Array(dbc.Float("GeoBoxMin"), 3),
		dbc.Array(dbc.Float("GeoBoxMax"), 3),
		dbc.Float("WorldEffectScale"),
		dbc.Float("AttachedEffectScale"),
		dbc.Float("MissileCollisionRadius"),
		dbc.Float("MissileCollisionPush"),
		dbc.Float("MissileCollisionRaise"),
	))

	dbc.Register(dbc.NewMeta(VehicleFile, false,
		dbc.Uint("ID"),
		dbc.Uint("Flags"),
		dbc.Float("TurnSpeed"),
		dbc.Float("PitchSpeed"),
		dbc.Float("PitchMin"),
		dbc.Float("PitchMax"),
		dbc.Array(dbc.Uint("SeatID"), MaxVehicleSeats),
		dbc.Float("MouseLookOffsetPitch"),
		dbc.Float("CameraFadeDistScalarMin"),
		dbc.Float("CameraFadeDistScalarMax"),
		dbc.Float("CameraPitchOffset"),
		dbc.Float("FacingLimitRight"),
		dbc.Float("FacingLimitLeft"),
		dbc.Float("MsslTrgtTurnLingering"),
		dbc.Float("MsslTrgtPitchLingering"),
		dbc.Float("MsslTrgtMouseLingering"),
		dbc.Float("MsslTrgtEndOpacity"),
		dbc.Float("MsslTrgtArcSpeed"),
		dbc.Float("MsslTrgtArcRepeat"),
		dbc.Float("MsslTrgtArcWidth"),
		dbc.Array(dbc.Float("MsslTrgtImpactRadius"), 2),
		dbc.String("MsslTrgtArcTexture"),
		dbc.String("MsslTrgtImpactTexture"),
		dbc.Array(dbc.String("MsslTrgtImpactModel"), 2),
		dbc.Float("CameraYawOffset"),
		dbc.Uint("UILocomotionType"),
		dbc.Float("MsslTrgtImpactTexRadius"),
		dbc.Uint("VehicleUIIndicatorID"),
		dbc.Array(dbc.Uint("PowerDisplayID"), 3),
	))

	dbc.Register(dbc.NewMeta(VehicleSeatFile, false,
		dbc.Uint("ID"),
		dbc.Uint("Flags"),
		dbc.Int("AttachmentID"),
		dbc.Array(dbc.Float("AttachmentOffset"), 3),
		dbc.Float("EnterPreDelay"),
		dbc.Float("EnterSpeed"),
		dbc.Float("EnterGravity"),
		dbc.Float("EnterMinDuration"),
		dbc.Float("EnterMaxDuration"),
		dbc.Float("EnterMinArcHeight"),
		dbc.Float("EnterMaxArcHeight"),
		dbc.Uint("EnterAnimStart"),
		dbc.Uint("EnterAnimLoop"),
		dbc.Uint("RideAnimStart"),
		dbc.Uint("RideAnimLoop"),
		dbc.Uint("RideUpperAnimStart"),
		dbc.Uint("RideUpperAnimLoop"),
		dbc.Float("ExitPreDelay"),
		dbc.Float("ExitSpeed"),
		dbc.Float("ExitGravity"),
		dbc.Float("ExitMinDuration"),
		dbc.Float("ExitMaxDuration"),
		dbc.Float("ExitMinArcHeight"),
		dbc.Float("ExitMaxArcHeight"),
		dbc.Uint("ExitAnimStart"),
		dbc.Uint("ExitAnimLoop"),
		dbc.Uint("ExitAnimEnd"),
		dbc.Float("PassengerYaw"),
		dbc.Float("PassengerPitch"),
		dbc.Float("PassengerRoll"),
		dbc.Int("PassengerAttachmentID"),
		dbc.Uint("VehicleEnterAnim"),
		dbc.Uint("VehicleExitAnim"),
		dbc.Uint("VehicleRideAnimLoop"),
		dbc.Uint("VehicleEnterAnimBone"),
		dbc.Uint("VehicleExitAnimBone"),
		dbc.Uint("VehicleRideAnimLoopBone"),
		dbc.Float("VehicleEnterAnimDelay"),
		dbc.Float("VehicleExitAnimDelay"),
		dbc.Uint("VehicleAbilityDisplay"),
		dbc.Uint("EnterUISoundID"),
		dbc.Uint("ExitUISoundID"),
		dbc.Uint("UISkin"),
		dbc.Uint("FlagsB"),
		dbc.Float("CameraEnteringDelay"),
		dbc.Float("CameraEnteringDuration"),
		dbc.Float("CameraExitingDelay"),
		dbc.Float("CameraExitingDuration"),
		dbc.Array(dbc.Float("CameraOffset"), 3),
		dbc.Float("CameraPosChaseRate"),
		dbc.Float("CameraFacingChaseRate"),
		dbc.Float("CameraEnteringZoom"),
		dbc.Float("CameraSeatZoomMin"),
		dbc.Float("CameraSeatZoomMax"),
	))

	dbc.Register(dbc.NewMeta(ItemFile, true,
		dbc.Uint("ID"),
		dbc.Uint("ClassID"),
		dbc.Uint("SubclassID"),
		dbc.Int("SoundOverrideSubclassID"),
		dbc.Uint("Material"),
		dbc.Uint("DisplayInfoID"),
		dbc.Uint("InventoryType"),
		dbc.Uint("SheatheType"),
	))
}

// ModelPath maps a model name stored in CreatureModelData to the archive
// path of the file the client actually loads.
func ModelPath(name string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	for _, ext := range []string{".mdx", ".mdl"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)] + ".m2"
		}
	}
	return name
}
