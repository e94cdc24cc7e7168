package m2

import "strconv"

// AttachmentID names a slot of the attachment lookup table.
type AttachmentID uint32

const (
	AttachShield AttachmentID = iota
	AttachHandRight
	AttachHandLeft
	AttachElbowRight
	AttachElbowLeft
	AttachShoulderRight
	AttachShoulderLeft
	AttachKneeRight
	AttachKneeLeft
	AttachHipRight
	AttachHipLeft
	AttachHelm
	AttachBack
	AttachShoulderFlapRight
	AttachShoulderFlapLeft
	AttachChestBloodFront
	AttachChestBloodBack
	AttachBreath
	AttachPlayerName
	AttachBase
	AttachHead
	AttachSpellLeftHand
	AttachSpellRightHand
	AttachSpecial1
	AttachSpecial2
	AttachSpecial3
	AttachSheathMainHand
	AttachSheathOffHand
	AttachSheathShield
	AttachPlayerNameMounted
	AttachLargeWeaponLeft
	AttachLargeWeaponRight
	AttachHipWeaponLeft
	AttachHipWeaponRight
	AttachChest
	AttachHandArrow
	AttachBullet
	AttachSpellHandOmni
	AttachSpellHandDirected
	AttachVehicleSeat1
	AttachVehicleSeat2
	AttachVehicleSeat3
	AttachVehicleSeat4
	AttachVehicleSeat5
	AttachVehicleSeat6
	AttachVehicleSeat7
	AttachVehicleSeat8
	AttachLeftFoot
	AttachRightFoot
	AttachShieldNoGlove
	AttachSpineLow
	AttachAlteredShoulderRight
	AttachAlteredShoulderLeft
	AttachBeltBuckle
	AttachSheathCrossbow
	AttachHeadTop

	// AttachmentIDCount is the number of known attachment slots.
	AttachmentIDCount = iota
)

var attachmentNames = [AttachmentIDCount]string{
	"shield", "hand_right", "hand_left", "elbow_right", "elbow_left",
	"shoulder_right", "shoulder_left", "knee_right", "knee_left",
	"hip_right", "hip_left", "helm", "back", "shoulder_flap_right",
	"shoulder_flap_left", "chest_blood_front", "chest_blood_back", "breath",
	"player_name", "base", "head", "spell_left_hand", "spell_right_hand",
	"special_1", "special_2", "special_3", "sheath_main_hand",
	"sheath_off_hand", "sheath_shield", "player_name_mounted",
	"large_weapon_left", "large_weapon_right", "hip_weapon_left",
	"hip_weapon_right", "chest", "hand_arrow", "bullet", "spell_hand_omni",
	"spell_hand_directed", "vehicle_seat_1", "vehicle_seat_2",
	"vehicle_seat_3", "vehicle_seat_4", "vehicle_seat_5", "vehicle_seat_6",
	"vehicle_seat_7", "vehicle_seat_8", "left_foot", "right_foot",
	"shield_no_glove", "spine_low", "altered_shoulder_r",
	"altered_shoulder_l", "belt_buckle", "sheath_crossbow", "head_top",
}

func (id AttachmentID) String() string {
	if id < AttachmentIDCount {
		return attachmentNames[id]
	}
	return "attachment_" + strconv.FormatUint(uint64(id), 10)
}
