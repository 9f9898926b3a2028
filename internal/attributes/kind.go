package attributes

// Kind вид реплицируемого атрибута; определяет формат значения в потоке
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBoolean
	KindByte
	KindInt
	KindInt64
	KindQWord
	KindFloat
	KindString
	KindEnum
	KindFlaggedInt
	KindFlaggedByte
	KindActiveActor
	KindLocation
	KindRotation
	KindRigidBody
	KindUniqueID
	KindReservation
	KindPartyLeader
	KindCamSettings
	KindLoadout
	KindTeamLoadout
	KindTeamPaint
	KindMusicStinger
	KindPickup
	KindPickupNew
	KindExplosion
	KindExtendedExplosion
	KindDemolish
	KindGameMode
	KindAppliedDamage
	KindDamageState
	KindWelded
	KindTitle
	KindStatEvent
	KindRepStatTitle
	KindPrivateMatchSettings
	KindClubColors
	KindReplicatedBoost
)

var kindNames = map[Kind]string{
	KindUnknown:              "Unknown",
	KindBoolean:              "Boolean",
	KindByte:                 "Byte",
	KindInt:                  "Int",
	KindInt64:                "Int64",
	KindQWord:                "QWord",
	KindFloat:                "Float",
	KindString:               "String",
	KindEnum:                 "Enum",
	KindFlaggedInt:           "FlaggedInt",
	KindFlaggedByte:          "FlaggedByte",
	KindActiveActor:          "ActiveActor",
	KindLocation:             "Location",
	KindRotation:             "Rotation",
	KindRigidBody:            "RigidBody",
	KindUniqueID:             "UniqueId",
	KindReservation:          "Reservation",
	KindPartyLeader:          "PartyLeader",
	KindCamSettings:          "CamSettings",
	KindLoadout:              "Loadout",
	KindTeamLoadout:          "TeamLoadout",
	KindTeamPaint:            "TeamPaint",
	KindMusicStinger:         "MusicStinger",
	KindPickup:               "Pickup",
	KindPickupNew:            "PickupNew",
	KindExplosion:            "Explosion",
	KindExtendedExplosion:    "ExtendedExplosion",
	KindDemolish:             "Demolish",
	KindGameMode:             "GameMode",
	KindAppliedDamage:        "AppliedDamage",
	KindDamageState:          "DamageState",
	KindWelded:               "Welded",
	KindTitle:                "Title",
	KindStatEvent:            "StatEvent",
	KindRepStatTitle:         "RepStatTitle",
	KindPrivateMatchSettings: "PrivateMatchSettings",
	KindClubColors:           "ClubColors",
	KindReplicatedBoost:      "ReplicatedBoost",
}

// String возвращает имя вида атрибута
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind находит вид по имени
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}
