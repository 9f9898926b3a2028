package attributes

// defaultNames виды известных свойств Rocket League по полному имени объекта
var defaultNames = map[string]Kind{
	"Engine.Actor:bBlockActors":                           KindBoolean,
	"Engine.Actor:bCollideActors":                         KindBoolean,
	"Engine.Actor:bHidden":                                KindBoolean,
	"Engine.Actor:bTearOff":                               KindBoolean,
	"Engine.GameReplicationInfo:bMatchIsOver":             KindBoolean,
	"Engine.PlayerReplicationInfo:bBot":                   KindBoolean,
	"Engine.PlayerReplicationInfo:bIsSpectator":           KindBoolean,
	"Engine.PlayerReplicationInfo:bReadyToPlay":           KindBoolean,
	"Engine.PlayerReplicationInfo:bTimedOut":              KindBoolean,
	"Engine.PlayerReplicationInfo:bWaitingPlayer":         KindBoolean,
	"TAGame.CameraSettingsActor_TA:bUsingBehindView":      KindBoolean,
	"TAGame.CameraSettingsActor_TA:bUsingSecondaryCamera": KindBoolean,
	"TAGame.CarComponent_Boost_TA:bNoBoost":               KindBoolean,
	"TAGame.CarComponent_Boost_TA:bUnlimitedBoost":        KindBoolean,
	"TAGame.GameEvent_Soccar_TA:bBallHasBeenHit":          KindBoolean,
	"TAGame.GameEvent_Soccar_TA:bMatchEnded":              KindBoolean,
	"TAGame.GameEvent_Soccar_TA:bOverTime":                KindBoolean,
	"TAGame.GameEvent_TA:bHasLeaveMatchPenalty":           KindBoolean,
	"TAGame.GameEvent_Team_TA:bForfeit":                   KindBoolean,
	"TAGame.PRI_TA:bIsInSplitScreen":                      KindBoolean,
	"TAGame.PRI_TA:bMatchMVP":                             KindBoolean,
	"TAGame.PRI_TA:bOnlineLoadoutSet":                     KindBoolean,
	"TAGame.PRI_TA:bReady":                                KindBoolean,
	"TAGame.PRI_TA:bUsingBehindView":                      KindBoolean,
	"TAGame.PRI_TA:bUsingSecondaryCamera":                 KindBoolean,
	"TAGame.RBActor_TA:bFrozen":                           KindBoolean,
	"TAGame.RBActor_TA:bReplayActor":                      KindBoolean,
	"TAGame.Vehicle_TA:bDriving":                          KindBoolean,
	"TAGame.Vehicle_TA:bReplicatedHandbrake":              KindBoolean,

	"Engine.PlayerReplicationInfo:Ping":                           KindByte,
	"TAGame.Ball_Breakout_TA:LastTeamTouch":                       KindByte,
	"TAGame.Ball_TA:HitTeamNum":                                   KindByte,
	"TAGame.CameraSettingsActor_TA:CameraPitch":                   KindByte,
	"TAGame.CameraSettingsActor_TA:CameraYaw":                     KindByte,
	"TAGame.CarComponent_Boost_TA:ReplicatedBoostAmount":          KindByte,
	"TAGame.CarComponent_TA:ReplicatedActive":                     KindByte,
	"TAGame.GameEvent_Soccar_TA:ReplicatedScoredOnTeam":           KindByte,
	"TAGame.GameEvent_Soccar_TA:ReplicatedServerPerformanceState": KindByte,
	"TAGame.GameEvent_TA:ReplicatedStateIndex":                    KindByte,
	"TAGame.PRI_TA:CameraPitch":                                   KindByte,
	"TAGame.PRI_TA:CameraYaw":                                     KindByte,
	"TAGame.PRI_TA:PawnType":                                      KindByte,
	"TAGame.Vehicle_TA:ReplicatedSteer":                           KindByte,
	"TAGame.Vehicle_TA:ReplicatedThrottle":                        KindByte,

	"Engine.PlayerReplicationInfo:PlayerID":              KindInt,
	"Engine.PlayerReplicationInfo:Score":                 KindInt,
	"Engine.TeamInfo:Score":                              KindInt,
	"ProjectX.GRI_X:ReplicatedGamePlaylist":              KindInt,
	"ProjectX.GRI_X:ReplicatedGameMutatorIndex":          KindInt,
	"TAGame.GameEvent_Soccar_TA:RoundNum":                KindInt,
	"TAGame.GameEvent_Soccar_TA:SecondsRemaining":        KindInt,
	"TAGame.GameEvent_TA:BotSkill":                       KindInt,
	"TAGame.GameEvent_TA:ReplicatedRoundCountDownNumber": KindInt,
	"TAGame.GameEvent_Team_TA:MaxTeamSize":               KindInt,
	"TAGame.PRI_TA:MatchAssists":                         KindInt,
	"TAGame.PRI_TA:MatchGoals":                           KindInt,
	"TAGame.PRI_TA:MatchSaves":                           KindInt,
	"TAGame.PRI_TA:MatchScore":                           KindInt,
	"TAGame.PRI_TA:MatchShots":                           KindInt,
	"TAGame.PRI_TA:MaxTimeTillItem":                      KindInt,
	"TAGame.PRI_TA:TimeTillItem":                         KindInt,
	"TAGame.PRI_TA:Title":                                KindInt,
	"TAGame.PRI_TA:TotalXP":                              KindInt,

	"TAGame.PRI_TA:ClubID":  KindInt64,
	"TAGame.Team_TA:ClubID": KindInt64,

	"ProjectX.GRI_X:GameServerID": KindQWord,

	"Engine.Actor:DrawScale":                           KindFloat,
	"Engine.WorldInfo:TimeDilation":                    KindFloat,
	"Engine.WorldInfo:WorldGravityZ":                   KindFloat,
	"TAGame.Ball_TA:ReplicatedAddedCarBounceScale":     KindFloat,
	"TAGame.Ball_TA:ReplicatedBallGravityScale":        KindFloat,
	"TAGame.Ball_TA:ReplicatedBallMaxLinearSpeedScale": KindFloat,
	"TAGame.Ball_TA:ReplicatedBallScale":               KindFloat,
	"TAGame.Ball_TA:ReplicatedWorldBounceScale":        KindFloat,
	"TAGame.CarComponent_Boost_TA:BoostModifier":       KindFloat,
	"TAGame.CarComponent_Boost_TA:RechargeDelay":       KindFloat,
	"TAGame.CarComponent_Boost_TA:RechargeRate":        KindFloat,
	"TAGame.CarComponent_FlipCar_TA:FlipCarTime":       KindFloat,
	"TAGame.CarComponent_TA:ReplicatedActivityTime":    KindFloat,
	"TAGame.Car_TA:AddedBallForceMultiplier":           KindFloat,
	"TAGame.Car_TA:AddedCarForceMultiplier":            KindFloat,
	"TAGame.PRI_TA:SteeringSensitivity":                KindFloat,

	"Engine.GameReplicationInfo:ServerName":       KindString,
	"Engine.PlayerReplicationInfo:PlayerName":     KindString,
	"Engine.PlayerReplicationInfo:RemoteUserData": KindString,
	"ProjectX.GRI_X:MatchGUID":                    KindString,
	"ProjectX.GRI_X:ReplicatedServerRegion":       KindString,
	"TAGame.GRI_TA:NewDedicatedServerIP":          KindString,
	"TAGame.Team_TA:CustomTeamName":               KindString,

	"Engine.Actor:RemoteRole": KindEnum,
	"Engine.Actor:Role":       KindEnum,

	"TAGame.CrowdActor_TA:ReplicatedOneShotSound":         KindFlaggedInt,
	"TAGame.CrowdManager_TA:ReplicatedGlobalOneShotSound": KindFlaggedInt,

	"TAGame.PRI_TA:ReplicatedWorstNetQualityBeyondLatency": KindFlaggedByte,

	"Engine.GameReplicationInfo:GameClass":      KindActiveActor,
	"Engine.Pawn:PlayerReplicationInfo":         KindActiveActor,
	"Engine.PlayerReplicationInfo:Team":         KindActiveActor,
	"TAGame.Ball_TA:GameEvent":                  KindActiveActor,
	"TAGame.Ball_TA:ReplicatedPhysMatOverride":  KindActiveActor,
	"TAGame.CameraSettingsActor_TA:PRI":         KindActiveActor,
	"TAGame.CarComponent_TA:Vehicle":            KindActiveActor,
	"TAGame.Car_TA:AttachedPickup":              KindActiveActor,
	"TAGame.CrowdActor_TA:GameEvent":            KindActiveActor,
	"TAGame.CrowdManager_TA:GameEvent":          KindActiveActor,
	"TAGame.GameEvent_Soccar_TA:GameWinner":     KindActiveActor,
	"TAGame.GameEvent_Soccar_TA:MVP":            KindActiveActor,
	"TAGame.GameEvent_Soccar_TA:MatchWinner":    KindActiveActor,
	"TAGame.GameEvent_TA:MatchTypeClass":        KindActiveActor,
	"TAGame.PRI_TA:PersistentCamera":            KindActiveActor,
	"TAGame.PRI_TA:ReplicatedGameEvent":         KindActiveActor,
	"TAGame.SpecialPickup_Targeted_TA:Targeted": KindActiveActor,
	"TAGame.Team_TA:GameEvent":                  KindActiveActor,
	"TAGame.Team_TA:LogoData":                   KindActiveActor,

	"TAGame.CarComponent_Dodge_TA:DodgeImpulse": KindLocation,
	"TAGame.CarComponent_Dodge_TA:DodgeTorque":  KindLocation,

	"Engine.Actor:Rotation": KindRotation,

	"TAGame.RBActor_TA:ReplicatedRBState": KindRigidBody,

	"Engine.PlayerReplicationInfo:UniqueId": KindUniqueID,

	"ProjectX.GRI_X:Reservations": KindReservation,

	"TAGame.PRI_TA:PartyLeader": KindPartyLeader,

	"TAGame.CameraSettingsActor_TA:ProfileSettings": KindCamSettings,
	"TAGame.PRI_TA:CameraSettings":                  KindCamSettings,

	"TAGame.PRI_TA:ClientLoadout":  KindLoadout,
	"TAGame.PRI_TA:ClientLoadouts": KindTeamLoadout,

	"TAGame.Car_TA:TeamPaint": KindTeamPaint,

	"TAGame.GameEvent_Soccar_TA:ReplicatedMusicStinger": KindMusicStinger,

	"TAGame.VehiclePickup_TA:ReplicatedPickupData":    KindPickup,
	"TAGame.VehiclePickup_TA:NewReplicatedPickupData": KindPickupNew,

	"TAGame.Ball_TA:ReplicatedExplosionData":         KindExplosion,
	"TAGame.Ball_TA:ReplicatedExplosionDataExtended": KindExtendedExplosion,

	"TAGame.Car_TA:ReplicatedDemolish": KindDemolish,

	"TAGame.GameEvent_TA:GameMode": KindGameMode,

	"TAGame.Ball_Breakout_TA:AppliedDamage":        KindAppliedDamage,
	"TAGame.BreakOutActor_Platform_TA:DamageState": KindDamageState,

	"TAGame.RBActor_TA:WeldedInfo": KindWelded,

	"TAGame.PRI_TA:PrimaryTitle":   KindTitle,
	"TAGame.PRI_TA:SecondaryTitle": KindTitle,

	"TAGame.GameEvent_Soccar_TA:ReplicatedStatEvent": KindStatEvent,

	"TAGame.PRI_TA:RepStatTitles": KindRepStatTitle,

	"TAGame.GameEvent_SoccarPrivate_TA:MatchSettings": KindPrivateMatchSettings,

	"TAGame.Car_TA:ClubColors": KindClubColors,

	"TAGame.CarComponent_Boost_TA:ReplicatedBoost": KindReplicatedBoost,
}

// Names сопоставление полного имени свойства с видом атрибута
type Names map[string]Kind

// DefaultNames возвращает копию встроенной таблицы, которую можно дополнять
func DefaultNames() Names {
	out := make(Names, len(defaultNames))
	for k, v := range defaultNames {
		out[k] = v
	}
	return out
}

// KindOf возвращает вид свойства или KindUnknown
func (n Names) KindOf(name string) Kind {
	if k, ok := n[name]; ok {
		return k
	}
	return KindUnknown
}

// KindOf ищет вид свойства во встроенной таблице
func KindOf(name string) Kind {
	if k, ok := defaultNames[name]; ok {
		return k
	}
	return KindUnknown
}
