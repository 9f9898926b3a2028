package attributes

import (
	"github.com/levelonedev/boxcars/internal/version"
)

// Версии, начиная с которых меняется формат отдельных атрибутов
var (
	sinceReservationExtra = version.New(868, 12, 0)
	sinceGameModeByte     = version.New(868, 12, 0)
	sinceCamTransition    = version.New(868, 20, 0)
	sinceTeamLoadout      = version.New(868, 12, 0)
	sinceTitle            = version.New(868, 18, 0)
	sinceClubColors       = version.New(868, 20, 0)
	sinceReplicatedBoost  = version.New(868, 20, 0)
	sinceExtendedExplode  = version.New(868, 22, 0)
	sinceRepStatTitle     = version.New(868, 22, 0)
	sincePickupNew        = version.New(868, 23, 0)
)

func decodeBoolean(f *fields) Boolean { return Boolean(f.bit()) }
func encodeBoolean(o *out, v Boolean) { o.bit(bool(v)) }

func decodeByte(f *fields) Byte { return Byte(f.u8()) }
func encodeByte(o *out, v Byte) { o.u8(uint8(v)) }

func decodeInt(f *fields) Int { return Int(f.i32()) }
func encodeInt(o *out, v Int) { o.i32(int32(v)) }

func decodeInt64(f *fields) Int64 { return Int64(f.u64()) }
func encodeInt64(o *out, v Int64) { o.u64(uint64(v)) }

func decodeQWord(f *fields) QWord { return QWord(f.u64()) }
func encodeQWord(o *out, v QWord) { o.u64(uint64(v)) }

func decodeFloat(f *fields) Float { return Float(f.f32()) }
func encodeFloat(o *out, v Float) { o.f32(float32(v)) }

func decodeString(f *fields) String { return String(f.str()) }
func encodeString(o *out, v String) { o.str(string(v)) }

const enumBits = 11

func decodeEnum(f *fields) Enum { return Enum(f.bits(enumBits)) }

func encodeEnum(o *out, v Enum) {
	if v >= 1<<enumBits {
		o.fail("enum value %d does not fit in %d bits", v, enumBits)
		return
	}
	o.bits(uint64(v), enumBits)
}

func decodeFlaggedInt(f *fields) FlaggedInt {
	return FlaggedInt{Flag: f.bit(), Value: f.i32()}
}

func encodeFlaggedInt(o *out, v FlaggedInt) {
	o.bit(v.Flag)
	o.i32(v.Value)
}

func decodeFlaggedByte(f *fields) FlaggedByte {
	return FlaggedByte{Flag: f.bit(), Value: f.u8()}
}

func encodeFlaggedByte(o *out, v FlaggedByte) {
	o.bit(v.Flag)
	o.u8(v.Value)
}

func decodeActiveActor(f *fields) ActiveActor {
	return ActiveActor{Active: f.bit(), Actor: f.i32()}
}

func encodeActiveActor(o *out, v ActiveActor) {
	o.bit(v.Active)
	o.i32(v.Actor)
}

func decodeLocation(f *fields) Location { return Location(f.vector3i()) }
func encodeLocation(o *out, v Location) { o.vector3i(Vector3i(v)) }

func decodeRotation(f *fields) Rotation { return f.rotation() }
func encodeRotation(o *out, v Rotation) { o.rotation(v) }

// Начиная с сетевой версии 7 поворот тела передаётся сжатым кватернионом
const netCompressedRotation = 7

func (f *fields) rigidBody(rotation func() Quaternion) RigidBody {
	rb := RigidBody{Sleeping: f.bit(), Location: f.vector3f()}
	rb.Rotation = rotation()
	if !rb.Sleeping {
		linear := f.vector3f()
		angular := f.vector3f()
		rb.LinearVelocity = &linear
		rb.AngularVelocity = &angular
	}
	return rb
}

func (o *out) rigidBody(v RigidBody, rotation func(Quaternion)) {
	o.bit(v.Sleeping)
	o.vector3f(v.Location)
	rotation(v.Rotation)
	if v.Sleeping {
		return
	}
	if v.LinearVelocity == nil || v.AngularVelocity == nil {
		o.fail("moving rigid body requires both velocities")
		return
	}
	o.vector3f(*v.LinearVelocity)
	o.vector3f(*v.AngularVelocity)
}

func decodeRigidBody(f *fields) RigidBody { return f.rigidBody(f.quaternion) }
func encodeRigidBody(o *out, v RigidBody) { o.rigidBody(v, o.quaternion) }

func decodeRigidBodyFixed(f *fields) RigidBody { return f.rigidBody(f.fixedRotation) }
func encodeRigidBodyFixed(o *out, v RigidBody) { o.rigidBody(v, o.fixedRotation) }

func decodeUniqueID(f *fields) UniqueID { return f.uniqueID() }
func encodeUniqueID(o *out, v UniqueID) { o.uniqueID(v) }

func (f *fields) reservation(extra bool) Reservation {
	res := Reservation{Number: uint8(f.bits(3)), UniqueID: f.uniqueID()}
	if res.UniqueID.System != PlatformSplitscreen {
		name := f.str()
		res.Name = &name
	}
	res.Unknown1 = f.bit()
	res.Unknown2 = f.bit()
	if extra {
		u := uint8(f.bits(6))
		res.Unknown3 = &u
	}
	return res
}

func (o *out) reservation(v Reservation, extra bool) {
	if v.Number >= 1<<3 {
		o.fail("reservation number %d does not fit in 3 bits", v.Number)
		return
	}
	o.bits(uint64(v.Number), 3)
	o.uniqueID(v.UniqueID)
	if v.UniqueID.System != PlatformSplitscreen {
		name := ""
		if v.Name != nil {
			name = *v.Name
		}
		o.str(name)
	}
	o.bit(v.Unknown1)
	o.bit(v.Unknown2)
	if extra {
		var u uint8
		if v.Unknown3 != nil {
			u = *v.Unknown3
		}
		o.bits(uint64(u), 6)
	}
}

func decodeReservationLegacy(f *fields) Reservation { return f.reservation(false) }
func encodeReservationLegacy(o *out, v Reservation) { o.reservation(v, false) }

func decodeReservation(f *fields) Reservation { return f.reservation(true) }
func encodeReservation(o *out, v Reservation) { o.reservation(v, true) }

func decodePartyLeader(f *fields) PartyLeader {
	system := Platform(f.u8())
	if system == PlatformSplitscreen {
		return PartyLeader{}
	}
	remote := f.remoteID(system)
	return PartyLeader{ID: &UniqueID{System: system, Remote: remote, LocalID: f.u8()}}
}

func encodePartyLeader(o *out, v PartyLeader) {
	if v.ID == nil {
		o.u8(uint8(PlatformSplitscreen))
		return
	}
	if v.ID.System == PlatformSplitscreen {
		o.fail("party leader cannot be a splitscreen player")
		return
	}
	o.uniqueID(*v.ID)
}

func (f *fields) camSettings(transition bool) CamSettings {
	cam := CamSettings{
		FOV:       f.f32(),
		Height:    f.f32(),
		Angle:     f.f32(),
		Distance:  f.f32(),
		Stiffness: f.f32(),
		Swivel:    f.f32(),
	}
	if transition {
		speed := f.f32()
		cam.TransitionSpeed = &speed
	}
	return cam
}

func (o *out) camSettings(v CamSettings, transition bool) {
	o.f32(v.FOV)
	o.f32(v.Height)
	o.f32(v.Angle)
	o.f32(v.Distance)
	o.f32(v.Stiffness)
	o.f32(v.Swivel)
	if transition {
		var speed float32
		if v.TransitionSpeed != nil {
			speed = *v.TransitionSpeed
		}
		o.f32(speed)
	}
}

func decodeCamSettingsLegacy(f *fields) CamSettings { return f.camSettings(false) }
func encodeCamSettingsLegacy(o *out, v CamSettings) { o.camSettings(v, false) }

func decodeCamSettings(f *fields) CamSettings { return f.camSettings(true) }
func encodeCamSettings(o *out, v CamSettings) { o.camSettings(v, true) }

func (f *fields) loadout() Loadout {
	l := Loadout{
		Version:     f.u8(),
		Body:        f.u32(),
		Decal:       f.u32(),
		Wheels:      f.u32(),
		RocketTrail: f.u32(),
		Antenna:     f.u32(),
		Topper:      f.u32(),
		Unknown1:    f.u32(),
	}
	l.Unknown2 = f.optU32(l.Version > 10)
	if l.Version >= 16 {
		l.EngineAudio = f.optU32(true)
		l.Trail = f.optU32(true)
		l.GoalExplosion = f.optU32(true)
	}
	l.Banner = f.optU32(l.Version >= 17)
	l.ProductID = f.optU32(l.Version >= 19)
	if l.Version >= 22 {
		l.Unknown4 = f.optU32(true)
		l.Unknown5 = f.optU32(true)
		l.Unknown6 = f.optU32(true)
	}
	return l
}

func (o *out) loadout(l Loadout) {
	o.u8(l.Version)
	o.u32(l.Body)
	o.u32(l.Decal)
	o.u32(l.Wheels)
	o.u32(l.RocketTrail)
	o.u32(l.Antenna)
	o.u32(l.Topper)
	o.u32(l.Unknown1)
	o.optU32(l.Version > 10, l.Unknown2, "Unknown2")
	o.optU32(l.Version >= 16, l.EngineAudio, "EngineAudio")
	o.optU32(l.Version >= 16, l.Trail, "Trail")
	o.optU32(l.Version >= 16, l.GoalExplosion, "GoalExplosion")
	o.optU32(l.Version >= 17, l.Banner, "Banner")
	o.optU32(l.Version >= 19, l.ProductID, "ProductID")
	o.optU32(l.Version >= 22, l.Unknown4, "Unknown4")
	o.optU32(l.Version >= 22, l.Unknown5, "Unknown5")
	o.optU32(l.Version >= 22, l.Unknown6, "Unknown6")
}

func decodeLoadout(f *fields) Loadout { return f.loadout() }
func encodeLoadout(o *out, v Loadout) { o.loadout(v) }

func decodeTeamLoadout(f *fields) TeamLoadout {
	return TeamLoadout{Blue: f.loadout(), Orange: f.loadout()}
}

func encodeTeamLoadout(o *out, v TeamLoadout) {
	o.loadout(v.Blue)
	o.loadout(v.Orange)
}

func decodeTeamPaint(f *fields) TeamPaint {
	return TeamPaint{
		Team:          f.u8(),
		PrimaryColor:  f.u8(),
		AccentColor:   f.u8(),
		PrimaryFinish: f.u32(),
		AccentFinish:  f.u32(),
	}
}

func encodeTeamPaint(o *out, v TeamPaint) {
	o.u8(v.Team)
	o.u8(v.PrimaryColor)
	o.u8(v.AccentColor)
	o.u32(v.PrimaryFinish)
	o.u32(v.AccentFinish)
}

func decodeMusicStinger(f *fields) MusicStinger {
	return MusicStinger{Flag: f.bit(), Cue: f.u32(), Trigger: f.u8()}
}

func encodeMusicStinger(o *out, v MusicStinger) {
	o.bit(v.Flag)
	o.u32(v.Cue)
	o.u8(v.Trigger)
}

func (f *fields) instigator() *int32 {
	if !f.bit() {
		return nil
	}
	id := f.i32()
	return &id
}

func (o *out) instigator(p *int32) {
	o.bit(p != nil)
	if p != nil {
		o.i32(*p)
	}
}

func decodePickup(f *fields) Pickup {
	return Pickup{Instigator: f.instigator(), PickedUp: f.bit()}
}

func encodePickup(o *out, v Pickup) {
	o.instigator(v.Instigator)
	o.bit(v.PickedUp)
}

func decodePickupNew(f *fields) PickupNew {
	return PickupNew{Instigator: f.instigator(), PickedUp: f.u8()}
}

func encodePickupNew(o *out, v PickupNew) {
	o.instigator(v.Instigator)
	o.u8(v.PickedUp)
}

func (f *fields) explosion() Explosion {
	return Explosion{Flag: f.bit(), Actor: f.i32(), Location: f.vector3i()}
}

func (o *out) explosion(v Explosion) {
	o.bit(v.Flag)
	o.i32(v.Actor)
	o.vector3i(v.Location)
}

func decodeExplosion(f *fields) Explosion { return f.explosion() }
func encodeExplosion(o *out, v Explosion) { o.explosion(v) }

func decodeExtendedExplosion(f *fields) ExtendedExplosion {
	return ExtendedExplosion{Explosion: f.explosion(), SecondaryFlag: f.bit(), SecondaryActor: f.i32()}
}

func encodeExtendedExplosion(o *out, v ExtendedExplosion) {
	o.explosion(v.Explosion)
	o.bit(v.SecondaryFlag)
	o.i32(v.SecondaryActor)
}

func decodeDemolish(f *fields) Demolish {
	return Demolish{
		AttackerFlag:   f.bit(),
		Attacker:       f.i32(),
		VictimFlag:     f.bit(),
		Victim:         f.i32(),
		AttackVelocity: f.vector3i(),
		VictimVelocity: f.vector3i(),
	}
}

func encodeDemolish(o *out, v Demolish) {
	o.bit(v.AttackerFlag)
	o.i32(v.Attacker)
	o.bit(v.VictimFlag)
	o.i32(v.Victim)
	o.vector3i(v.AttackVelocity)
	o.vector3i(v.VictimVelocity)
}

// GameMode до 868.12 занимал 2 бита, позже байт
func decodeGameModeLegacy(f *fields) GameMode { return GameMode(f.bits(2)) }

func encodeGameModeLegacy(o *out, v GameMode) {
	if v >= 4 {
		o.fail("game mode %d does not fit in 2 bits", v)
		return
	}
	o.bits(uint64(v), 2)
}

func decodeGameMode(f *fields) GameMode { return GameMode(f.u8()) }
func encodeGameMode(o *out, v GameMode) { o.u8(uint8(v)) }

func decodeAppliedDamage(f *fields) AppliedDamage {
	return AppliedDamage{ID: f.u8(), Position: f.vector3i(), DamageIndex: f.i32(), TotalDamage: f.i32()}
}

func encodeAppliedDamage(o *out, v AppliedDamage) {
	o.u8(v.ID)
	o.vector3i(v.Position)
	o.i32(v.DamageIndex)
	o.i32(v.TotalDamage)
}

func decodeDamageState(f *fields) DamageState {
	return DamageState{
		TileState:    f.u8(),
		Damaged:      f.bit(),
		Offender:     f.i32(),
		BallPosition: f.vector3i(),
		DirectHit:    f.bit(),
		Unknown:      f.bit(),
	}
}

func encodeDamageState(o *out, v DamageState) {
	o.u8(v.TileState)
	o.bit(v.Damaged)
	o.i32(v.Offender)
	o.vector3i(v.BallPosition)
	o.bit(v.DirectHit)
	o.bit(v.Unknown)
}

func decodeWelded(f *fields) Welded {
	return Welded{
		Active:   f.bit(),
		Actor:    f.i32(),
		Offset:   f.vector3f(),
		Mass:     f.f32(),
		Rotation: f.rotation(),
	}
}

func encodeWelded(o *out, v Welded) {
	o.bit(v.Active)
	o.i32(v.Actor)
	o.vector3f(v.Offset)
	o.f32(v.Mass)
	o.rotation(v.Rotation)
}

func decodeTitle(f *fields) Title {
	return Title{
		Unknown1: f.bit(),
		Unknown2: f.bit(),
		Unknown3: f.u32(),
		Unknown4: f.u32(),
		Unknown5: f.u32(),
		Unknown6: f.u32(),
		Unknown7: f.u32(),
		Unknown8: f.bit(),
	}
}

func encodeTitle(o *out, v Title) {
	o.bit(v.Unknown1)
	o.bit(v.Unknown2)
	o.u32(v.Unknown3)
	o.u32(v.Unknown4)
	o.u32(v.Unknown5)
	o.u32(v.Unknown6)
	o.u32(v.Unknown7)
	o.bit(v.Unknown8)
}

func decodeStatEvent(f *fields) StatEvent {
	return StatEvent{Unknown: f.bit(), ObjectID: f.i32()}
}

func encodeStatEvent(o *out, v StatEvent) {
	o.bit(v.Unknown)
	o.i32(v.ObjectID)
}

func decodeRepStatTitle(f *fields) RepStatTitle {
	return RepStatTitle{
		Unknown: f.bit(),
		Name:    f.str(),
		Target:  decodeFlaggedInt(f),
		Value:   f.u32(),
	}
}

func encodeRepStatTitle(o *out, v RepStatTitle) {
	o.bit(v.Unknown)
	o.str(v.Name)
	encodeFlaggedInt(o, v.Target)
	o.u32(v.Value)
}

func decodePrivateMatchSettings(f *fields) PrivateMatchSettings {
	return PrivateMatchSettings{
		Mutators:   f.str(),
		JoinableBy: f.u32(),
		MaxPlayers: f.u32(),
		GameName:   f.str(),
		Password:   f.str(),
		Flag:       f.bit(),
	}
}

func encodePrivateMatchSettings(o *out, v PrivateMatchSettings) {
	o.str(v.Mutators)
	o.u32(v.JoinableBy)
	o.u32(v.MaxPlayers)
	o.str(v.GameName)
	o.str(v.Password)
	o.bit(v.Flag)
}

func decodeClubColors(f *fields) ClubColors {
	return ClubColors{BlueFlag: f.bit(), BlueColor: f.u8(), OrangeFlag: f.bit(), OrangeColor: f.u8()}
}

func encodeClubColors(o *out, v ClubColors) {
	o.bit(v.BlueFlag)
	o.u8(v.BlueColor)
	o.bit(v.OrangeFlag)
	o.u8(v.OrangeColor)
}

func decodeReplicatedBoost(f *fields) ReplicatedBoost {
	return ReplicatedBoost{GrantCount: f.u8(), BoostAmount: f.u8(), Unused1: f.u8(), Unused2: f.u8()}
}

func encodeReplicatedBoost(o *out, v ReplicatedBoost) {
	o.u8(v.GrantCount)
	o.u8(v.BoostAmount)
	o.u8(v.Unused1)
	o.u8(v.Unused2)
}

// builtinCodecs перечисляет встроенные кодеки
func builtinCodecs() []Codec {
	zero := version.Version{}
	return []Codec{
		codec(KindBoolean, zero, decodeBoolean, encodeBoolean),
		codec(KindByte, zero, decodeByte, encodeByte),
		codec(KindInt, zero, decodeInt, encodeInt),
		codec(KindInt64, zero, decodeInt64, encodeInt64),
		codec(KindQWord, zero, decodeQWord, encodeQWord),
		codec(KindFloat, zero, decodeFloat, encodeFloat),
		codec(KindString, zero, decodeString, encodeString),
		codec(KindEnum, zero, decodeEnum, encodeEnum),
		codec(KindFlaggedInt, zero, decodeFlaggedInt, encodeFlaggedInt),
		codec(KindFlaggedByte, zero, decodeFlaggedByte, encodeFlaggedByte),
		codec(KindActiveActor, zero, decodeActiveActor, encodeActiveActor),
		codec(KindLocation, zero, decodeLocation, encodeLocation),
		codec(KindRotation, zero, decodeRotation, encodeRotation),
		codec(KindRigidBody, zero, decodeRigidBodyFixed, encodeRigidBodyFixed),
		netCodec(KindRigidBody, netCompressedRotation, decodeRigidBody, encodeRigidBody),
		codec(KindUniqueID, zero, decodeUniqueID, encodeUniqueID),
		codec(KindReservation, zero, decodeReservationLegacy, encodeReservationLegacy),
		codec(KindReservation, sinceReservationExtra, decodeReservation, encodeReservation),
		codec(KindPartyLeader, zero, decodePartyLeader, encodePartyLeader),
		codec(KindCamSettings, zero, decodeCamSettingsLegacy, encodeCamSettingsLegacy),
		codec(KindCamSettings, sinceCamTransition, decodeCamSettings, encodeCamSettings),
		codec(KindLoadout, zero, decodeLoadout, encodeLoadout),
		codec(KindTeamLoadout, sinceTeamLoadout, decodeTeamLoadout, encodeTeamLoadout),
		codec(KindTeamPaint, zero, decodeTeamPaint, encodeTeamPaint),
		codec(KindMusicStinger, zero, decodeMusicStinger, encodeMusicStinger),
		codec(KindPickup, zero, decodePickup, encodePickup),
		codec(KindPickupNew, sincePickupNew, decodePickupNew, encodePickupNew),
		codec(KindExplosion, zero, decodeExplosion, encodeExplosion),
		codec(KindExtendedExplosion, sinceExtendedExplode, decodeExtendedExplosion, encodeExtendedExplosion),
		codec(KindDemolish, zero, decodeDemolish, encodeDemolish),
		codec(KindGameMode, zero, decodeGameModeLegacy, encodeGameModeLegacy),
		codec(KindGameMode, sinceGameModeByte, decodeGameMode, encodeGameMode),
		codec(KindAppliedDamage, zero, decodeAppliedDamage, encodeAppliedDamage),
		codec(KindDamageState, zero, decodeDamageState, encodeDamageState),
		codec(KindWelded, zero, decodeWelded, encodeWelded),
		codec(KindTitle, sinceTitle, decodeTitle, encodeTitle),
		codec(KindStatEvent, zero, decodeStatEvent, encodeStatEvent),
		codec(KindRepStatTitle, sinceRepStatTitle, decodeRepStatTitle, encodeRepStatTitle),
		codec(KindPrivateMatchSettings, zero, decodePrivateMatchSettings, encodePrivateMatchSettings),
		codec(KindClubColors, sinceClubColors, decodeClubColors, encodeClubColors),
		codec(KindReplicatedBoost, sinceReplicatedBoost, decodeReplicatedBoost, encodeReplicatedBoost),
	}
}
