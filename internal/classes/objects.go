package classes

import (
	"strings"

	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// archetypes объекты-архетипы, у которых имя не совпадает с именем класса
var archetypes = map[string]string{
	"Archetypes.Ball.Ball_Basketball":                                               "TAGame.Ball_TA",
	"Archetypes.Ball.Ball_BasketBall_Mutator":                                       "TAGame.Ball_TA",
	"Archetypes.Ball.Ball_Beachball":                                                "TAGame.Ball_TA",
	"Archetypes.Ball.Ball_Breakout":                                                 "TAGame.Ball_Breakout_TA",
	"Archetypes.Ball.Ball_Default":                                                  "TAGame.Ball_TA",
	"Archetypes.Ball.Ball_Puck":                                                     "TAGame.Ball_TA",
	"Archetypes.Ball.CubeBall":                                                      "TAGame.Ball_TA",
	"Archetypes.Ball.Ball_Haunted":                                                  "TAGame.Ball_Haunted_TA",
	"Archetypes.Car.Car_Default":                                                    "TAGame.Car_TA",
	"Archetypes.CarComponents.CarComponent_Boost":                                   "TAGame.CarComponent_Boost_TA",
	"Archetypes.CarComponents.CarComponent_Dodge":                                   "TAGame.CarComponent_Dodge_TA",
	"Archetypes.CarComponents.CarComponent_DoubleJump":                              "TAGame.CarComponent_DoubleJump_TA",
	"Archetypes.CarComponents.CarComponent_FlipCar":                                 "TAGame.CarComponent_FlipCar_TA",
	"Archetypes.CarComponents.CarComponent_Jump":                                    "TAGame.CarComponent_Jump_TA",
	"Archetypes.GameEvent.GameEvent_Basketball":                                     "TAGame.GameEvent_Soccar_TA",
	"Archetypes.GameEvent.GameEvent_BasketballPrivate":                              "TAGame.GameEvent_SoccarPrivate_TA",
	"Archetypes.GameEvent.GameEvent_Breakout":                                       "TAGame.GameEvent_Soccar_TA",
	"Archetypes.GameEvent.GameEvent_Hockey":                                         "TAGame.GameEvent_Soccar_TA",
	"Archetypes.GameEvent.GameEvent_HockeyPrivate":                                  "TAGame.GameEvent_SoccarPrivate_TA",
	"Archetypes.GameEvent.GameEvent_Items":                                          "TAGame.GameEvent_Soccar_TA",
	"Archetypes.GameEvent.GameEvent_Season":                                         "TAGame.GameEvent_Season_TA",
	"Archetypes.GameEvent.GameEvent_Soccar":                                         "TAGame.GameEvent_Soccar_TA",
	"Archetypes.GameEvent.GameEvent_SoccarPrivate":                                  "TAGame.GameEvent_SoccarPrivate_TA",
	"Archetypes.GameEvent.GameEvent_SoccarSplitscreen":                              "TAGame.GameEvent_SoccarSplitscreen_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BallFreeze":                            "TAGame.SpecialPickup_BallFreeze_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BallGrapplingHook":                     "TAGame.SpecialPickup_GrapplingHook_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BallLasso":                             "TAGame.SpecialPickup_BallLasso_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BallSpring":                            "TAGame.SpecialPickup_BallCarSpring_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BallVelcro":                            "TAGame.SpecialPickup_BallVelcro_TA",
	"Archetypes.SpecialPickups.SpecialPickup_Batarang":                              "TAGame.SpecialPickup_Batarang_TA",
	"Archetypes.SpecialPickups.SpecialPickup_BoostOverride":                         "TAGame.SpecialPickup_BoostOverride_TA",
	"Archetypes.SpecialPickups.SpecialPickup_CarSpring":                             "TAGame.SpecialPickup_BallCarSpring_TA",
	"Archetypes.SpecialPickups.SpecialPickup_GravityWell":                           "TAGame.SpecialPickup_BallGravity_TA",
	"Archetypes.SpecialPickups.SpecialPickup_StrongHit":                             "TAGame.SpecialPickup_HitForce_TA",
	"Archetypes.SpecialPickups.SpecialPickup_Swapper":                               "TAGame.SpecialPickup_Swapper_TA",
	"Archetypes.SpecialPickups.SpecialPickup_Tornado":                               "TAGame.SpecialPickup_Tornado_TA",
	"Archetypes.Teams.Team0":                                                        "TAGame.Team_Soccar_TA",
	"Archetypes.Teams.Team1":                                                        "TAGame.Team_Soccar_TA",
	"GameInfo_Basketball.GameInfo.GameInfo_Basketball:GameReplicationInfoArchetype": "TAGame.GRI_TA",
	"GameInfo_Breakout.GameInfo.GameInfo_Breakout:GameReplicationInfoArchetype":     "TAGame.GRI_TA",
	"GameInfo_Hockey.GameInfo.GameInfo_Hockey:GameReplicationInfoArchetype":         "TAGame.GRI_TA",
	"GameInfo_Items.GameInfo.GameInfo_Items:GameReplicationInfoArchetype":           "TAGame.GRI_TA",
	"GameInfo_Season.GameInfo.GameInfo_Season:GameReplicationInfoArchetype":         "TAGame.GRI_TA",
	"GameInfo_Soccar.GameInfo.GameInfo_Soccar:GameReplicationInfoArchetype":         "TAGame.GRI_TA",
	"TAGame.Default__CameraSettingsActor_TA":                                        "TAGame.CameraSettingsActor_TA",
	"TAGame.Default__MaxTimeWarningData_TA":                                         "TAGame.MaxTimeWarningData_TA",
	"TAGame.Default__PRI_TA":                                                        "TAGame.PRI_TA",
	"TAGame.Default__RumblePickups_TA":                                              "TAGame.RumblePickups_TA",
}

const levelMarker = "PersistentLevel."

// ObjectResolver сопоставляет id объекта из потока с классом. Результаты
// кешируются в пределах сессии.
type ObjectResolver struct {
	objects []string
	h       *Hierarchy
	cache   map[int32]int32
}

// NewObjectResolver создаёт резолвер для таблицы объектов
func NewObjectResolver(objects []string, h *Hierarchy) *ObjectResolver {
	return &ObjectResolver{objects: objects, h: h, cache: make(map[int32]int32)}
}

// ClassOf возвращает id класса для объекта: по точному имени, по таблице
// архетипов или по нормализованному имени объекта уровня
func (r *ObjectResolver) ClassOf(objectID int32) (int32, error) {
	if id, ok := r.cache[objectID]; ok {
		return id, nil
	}
	if objectID < 0 || int(objectID) >= len(r.objects) {
		return 0, decodeerr.New(decodeerr.Unresolvable,
			"object id of %d exceeds range of %d objects", objectID, len(r.objects))
	}

	name := r.objects[objectID]
	for _, candidate := range classCandidates(name) {
		if id, ok := r.h.ClassByName(candidate); ok {
			r.cache[objectID] = id
			return id, nil
		}
	}
	return 0, decodeerr.New(decodeerr.Unresolvable, "object %d (%s) does not name a known class", objectID, name)
}

// ObjectName возвращает имя объекта, если id в пределах таблицы
func (r *ObjectResolver) ObjectName(objectID int32) (string, bool) {
	if objectID < 0 || int(objectID) >= len(r.objects) {
		return "", false
	}
	return r.objects[objectID], true
}

// classCandidates перечисляет имена классов, которые может означать объект
func classCandidates(name string) []string {
	candidates := []string{name}
	if class, ok := archetypes[name]; ok {
		candidates = append(candidates, class)
	}
	if normalized, ok := normalizeLevelObject(name); ok {
		candidates = append(candidates, normalized)
	}
	return candidates
}

// normalizeLevelObject превращает "Map.TheWorld:PersistentLevel.VehiclePickup_Boost_TA_30"
// в "TAGame.VehiclePickup_Boost_TA"
func normalizeLevelObject(name string) (string, bool) {
	i := strings.LastIndex(name, levelMarker)
	if i < 0 {
		return "", false
	}
	base := name[i+len(levelMarker):]
	if j := strings.LastIndexByte(base, '_'); j > 0 && isDigits(base[j+1:]) {
		base = base[:j]
	}
	if base == "" {
		return "", false
	}
	if !strings.HasPrefix(base, "TAGame.") {
		base = "TAGame." + base
	}
	return base, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
