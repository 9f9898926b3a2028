package attributes

// Value декодированное значение атрибута. Конкретный тип однозначно
// определяется видом, который возвращает Kind.
type Value interface {
	Kind() Kind
}

// Простые значения
type (
	Boolean bool
	Byte    uint8
	Int     int32
	Int64   int64
	QWord   uint64
	Float   float32
	String  string
	Enum    uint16
)

// FlaggedInt целое с признаком
type FlaggedInt struct {
	Flag  bool
	Value int32
}

// FlaggedByte байт с признаком
type FlaggedByte struct {
	Flag  bool
	Value uint8
}

// ActiveActor ссылка на актор; Actor = -1 означает отсутствие
type ActiveActor struct {
	Active bool
	Actor  int32
}

// Vector3i целочисленный вектор в сжатом представлении Unreal. Если на
// проводе ширина компоненты отличалась от минимальной, она запоминается и
// используется при повторном кодировании.
type Vector3i struct {
	X, Y, Z int32
	width   uint8 // ширина компоненты + 1; 0 означает минимальную
}

// Vector3f вещественный вектор
type Vector3f struct {
	X, Y, Z float32
	width   uint8
}

// Location позиция актора
type Location Vector3i

// Rotation углы поворота; nil означает, что компонента не передавалась
type Rotation struct {
	Yaw   *int8
	Pitch *int8
	Roll  *int8
}

// Quaternion поворот в виде кватерниона
type Quaternion struct {
	X, Y, Z, W float32
	largest    uint8 // индекс восстановленной компоненты + 1, если он не наибольший по модулю
}

// RigidBody физическое состояние тела. Скорости передаются только для
// не спящего тела.
type RigidBody struct {
	Sleeping        bool
	Location        Vector3f
	Rotation        Quaternion
	LinearVelocity  *Vector3f
	AngularVelocity *Vector3f
}

// UniqueID идентификатор игрока на платформе
type UniqueID struct {
	System  Platform
	Remote  RemoteID
	LocalID uint8
}

// Reservation бронь слота игрока
type Reservation struct {
	Number   uint8
	UniqueID UniqueID
	Name     *string
	Unknown1 bool
	Unknown2 bool
	Unknown3 *uint8
}

// PartyLeader лидер группы; ID = nil, если лидера нет
type PartyLeader struct {
	ID *UniqueID
}

// CamSettings настройки камеры игрока
type CamSettings struct {
	FOV             float32
	Height          float32
	Angle           float32
	Distance        float32
	Stiffness       float32
	Swivel          float32
	TransitionSpeed *float32
}

// Loadout набор предметов машины. Часть полей появилась в поздних
// версиях набора и присутствует в зависимости от Version.
type Loadout struct {
	Version       uint8
	Body          uint32
	Decal         uint32
	Wheels        uint32
	RocketTrail   uint32
	Antenna       uint32
	Topper        uint32
	Unknown1      uint32
	Unknown2      *uint32
	EngineAudio   *uint32
	Trail         *uint32
	GoalExplosion *uint32
	Banner        *uint32
	ProductID     *uint32
	Unknown4      *uint32
	Unknown5      *uint32
	Unknown6      *uint32
}

// TeamLoadout наборы для обеих команд
type TeamLoadout struct {
	Blue   Loadout
	Orange Loadout
}

// TeamPaint окраска команды
type TeamPaint struct {
	Team          uint8
	PrimaryColor  uint8
	AccentColor   uint8
	PrimaryFinish uint32
	AccentFinish  uint32
}

// MusicStinger музыкальная вставка
type MusicStinger struct {
	Flag    bool
	Cue     uint32
	Trigger uint8
}

// Pickup подбор бонуса; Instigator = nil, если подобравший неизвестен
type Pickup struct {
	Instigator *int32
	PickedUp   bool
}

// PickupNew подбор бонуса в новом формате
type PickupNew struct {
	Instigator *int32
	PickedUp   uint8
}

// Explosion взрыв
type Explosion struct {
	Flag     bool
	Actor    int32
	Location Vector3i
}

// ExtendedExplosion взрыв с дополнительным актором
type ExtendedExplosion struct {
	Explosion      Explosion
	SecondaryFlag  bool
	SecondaryActor int32
}

// Demolish уничтожение машины
type Demolish struct {
	AttackerFlag   bool
	Attacker       int32
	VictimFlag     bool
	Victim         int32
	AttackVelocity Vector3i
	VictimVelocity Vector3i
}

// GameMode режим игры
type GameMode uint8

// AppliedDamage нанесённый урон
type AppliedDamage struct {
	ID          uint8
	Position    Vector3i
	DamageIndex int32
	TotalDamage int32
}

// DamageState состояние урона плитки
type DamageState struct {
	TileState    uint8
	Damaged      bool
	Offender     int32
	BallPosition Vector3i
	DirectHit    bool
	Unknown      bool
}

// Welded сцепка с другим актором
type Welded struct {
	Active   bool
	Actor    int32
	Offset   Vector3f
	Mass     float32
	Rotation Rotation
}

// Title титул игрока
type Title struct {
	Unknown1 bool
	Unknown2 bool
	Unknown3 uint32
	Unknown4 uint32
	Unknown5 uint32
	Unknown6 uint32
	Unknown7 uint32
	Unknown8 bool
}

// StatEvent событие статистики
type StatEvent struct {
	Unknown  bool
	ObjectID int32
}

// RepStatTitle реплицируемый титул статистики
type RepStatTitle struct {
	Unknown bool
	Name    string
	Target  FlaggedInt
	Value   uint32
}

// PrivateMatchSettings настройки приватного матча
type PrivateMatchSettings struct {
	Mutators   string
	JoinableBy uint32
	MaxPlayers uint32
	GameName   string
	Password   string
	Flag       bool
}

// ClubColors цвета клубов
type ClubColors struct {
	BlueFlag    bool
	BlueColor   uint8
	OrangeFlag  bool
	OrangeColor uint8
}

// ReplicatedBoost состояние буста
type ReplicatedBoost struct {
	GrantCount  uint8
	BoostAmount uint8
	Unused1     uint8
	Unused2     uint8
}

func (Boolean) Kind() Kind { return KindBoolean }
func (Byte) Kind() Kind { return KindByte }
func (Int) Kind() Kind { return KindInt }
func (Int64) Kind() Kind { return KindInt64 }
func (QWord) Kind() Kind { return KindQWord }
func (Float) Kind() Kind { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Enum) Kind() Kind { return KindEnum }
func (FlaggedInt) Kind() Kind { return KindFlaggedInt }
func (FlaggedByte) Kind() Kind { return KindFlaggedByte }
func (ActiveActor) Kind() Kind { return KindActiveActor }
func (Location) Kind() Kind { return KindLocation }
func (Rotation) Kind() Kind { return KindRotation }
func (RigidBody) Kind() Kind { return KindRigidBody }
func (UniqueID) Kind() Kind { return KindUniqueID }
func (Reservation) Kind() Kind { return KindReservation }
func (PartyLeader) Kind() Kind { return KindPartyLeader }
func (CamSettings) Kind() Kind { return KindCamSettings }
func (Loadout) Kind() Kind { return KindLoadout }
func (TeamLoadout) Kind() Kind { return KindTeamLoadout }
func (TeamPaint) Kind() Kind { return KindTeamPaint }
func (MusicStinger) Kind() Kind { return KindMusicStinger }
func (Pickup) Kind() Kind { return KindPickup }
func (PickupNew) Kind() Kind { return KindPickupNew }
func (Explosion) Kind() Kind { return KindExplosion }
func (ExtendedExplosion) Kind() Kind { return KindExtendedExplosion }
func (Demolish) Kind() Kind { return KindDemolish }
func (GameMode) Kind() Kind { return KindGameMode }
func (AppliedDamage) Kind() Kind { return KindAppliedDamage }
func (DamageState) Kind() Kind { return KindDamageState }
func (Welded) Kind() Kind { return KindWelded }
func (Title) Kind() Kind { return KindTitle }
func (StatEvent) Kind() Kind { return KindStatEvent }
func (RepStatTitle) Kind() Kind { return KindRepStatTitle }
func (PrivateMatchSettings) Kind() Kind { return KindPrivateMatchSettings }
func (ClubColors) Kind() Kind { return KindClubColors }
func (ReplicatedBoost) Kind() Kind { return KindReplicatedBoost }
